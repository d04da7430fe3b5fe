package collision

import "errors"

var (
	ErrInvalidRadius   = errors.New("sphere radius must be positive")
	ErrInvalidNormal   = errors.New("plane normal must be non-zero")
	ErrInvalidFriction = errors.New("friction must be in [0, 1]")
)

func checkFriction(f float64) error {
	if !(f >= 0 && f <= 1) {
		return ErrInvalidFriction
	}
	return nil
}
