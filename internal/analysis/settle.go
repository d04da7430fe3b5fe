package analysis

import "math"

// SettleTime returns the earliest time after which every sample stays
// within tol of the final sample. ok is false for empty or mismatched input.
func SettleTime(series, times []float64, tol float64) (t float64, ok bool) {
	if len(series) == 0 || len(series) != len(times) {
		return 0, false
	}
	final := series[len(series)-1]
	i := len(series) - 1
	for i > 0 && math.Abs(series[i-1]-final) <= tol {
		i--
	}
	return times[i], true
}

type Summary struct {
	Min, Max, Mean, Final float64
}

func Summarize(series []float64) Summary {
	if len(series) == 0 {
		return Summary{}
	}
	s := Summary{Min: series[0], Max: series[0], Final: series[len(series)-1]}
	for _, v := range series {
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
		s.Mean += v
	}
	s.Mean /= float64(len(series))
	return s
}
