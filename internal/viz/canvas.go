package viz

import (
	"math"
	"strings"
)

// brailleBase is U+2800, the empty braille cell. Each cell is a 2x4 block
// of dots; dotBits gives the bit of dot (x%2, y%4).
const brailleBase = 0x2800

var dotBits = [4][2]uint8{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// Canvas is a braille raster with a depth buffer. Width and Height are in
// character cells; drawing happens in dots, two per cell across and four
// down. Depth grows toward the viewer, and a dot only takes a new depth
// when it is at least as near as what is already there.
type Canvas struct {
	Width, Height int

	cells []uint8
	depth []float64
}

func NewCanvas(w, h int) *Canvas {
	w, h = max(w, 0), max(h, 0)
	c := &Canvas{
		Width:  w,
		Height: h,
		cells:  make([]uint8, w*h),
		depth:  make([]float64, w*h*8),
	}
	c.Clear()
	return c
}

// Dots is the canvas size in sub-pixels.
func (c *Canvas) Dots() (w, h int) { return c.Width * 2, c.Height * 4 }

func (c *Canvas) Clear() {
	clear(c.cells)
	for i := range c.depth {
		c.depth[i] = math.Inf(-1)
	}
}

func (c *Canvas) inside(x, y int) bool {
	dw, dh := c.Dots()
	return x >= 0 && y >= 0 && x < dw && y < dh
}

// Plot lights the dot at (x, y) if depth is not behind what it already
// holds, and reports whether it did. Dots outside the canvas are ignored.
func (c *Canvas) Plot(x, y int, depth float64) bool {
	if !c.inside(x, y) {
		return false
	}
	di := y*c.Width*2 + x
	if depth < c.depth[di] {
		return false
	}
	c.depth[di] = depth
	c.cells[(y/4)*c.Width+x/2] |= dotBits[y%4][x%2]
	return true
}

// Pixel reports whether the dot at (x, y) is lit.
func (c *Canvas) Pixel(x, y int) bool {
	if !c.inside(x, y) {
		return false
	}
	return c.cells[(y/4)*c.Width+x/2]&dotBits[y%4][x%2] != 0
}

// Depth returns the depth held by a lit dot.
func (c *Canvas) Depth(x, y int) (float64, bool) {
	if !c.Pixel(x, y) {
		return 0, false
	}
	return c.depth[y*c.Width*2+x], true
}

// DepthRange is the nearest and farthest depth of any lit dot. ok is false
// on an empty canvas.
func (c *Canvas) DepthRange() (near, far float64, ok bool) {
	near, far = math.Inf(-1), math.Inf(1)
	for _, d := range c.depth {
		if math.IsInf(d, -1) {
			continue
		}
		near, far = max(near, d), min(far, d)
		ok = true
	}
	return near, far, ok
}

// Line draws from (x0, y0) to (x1, y1), interpolating depth between d0 and
// d1. The segment is clipped to the canvas first, so endpoints far off
// screen cost nothing.
func (c *Canvas) Line(x0, y0 int, d0 float64, x1, y1 int, d1 float64) {
	dw, dh := c.Dots()
	t0, t1, ok := clipSegment(float64(x0), float64(y0), float64(x1), float64(y1), float64(dw-1), float64(dh-1))
	if !ok {
		return
	}
	fx, fy := float64(x1-x0), float64(y1-y0)
	ax, ay := float64(x0)+t0*fx, float64(y0)+t0*fy
	bx, by := float64(x0)+t1*fx, float64(y0)+t1*fy
	da, db := d0+t0*(d1-d0), d0+t1*(d1-d0)

	n := int(math.Ceil(max(math.Abs(bx-ax), math.Abs(by-ay))))
	if n == 0 {
		c.Plot(int(math.Round(ax)), int(math.Round(ay)), max(da, db))
		return
	}
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		c.Plot(int(math.Round(ax+t*(bx-ax))), int(math.Round(ay+t*(by-ay))), da+t*(db-da))
	}
}

// clipSegment is Liang-Barsky against [0, maxX] x [0, maxY]. It returns the
// parameter range of the visible part of the segment.
func clipSegment(x0, y0, x1, y1, maxX, maxY float64) (t0, t1 float64, ok bool) {
	t0, t1 = 0, 1
	dx, dy := x1-x0, y1-y0
	for _, e := range [4][2]float64{
		{-dx, x0},
		{dx, maxX - x0},
		{-dy, y0},
		{dy, maxY - y0},
	} {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			t0 = max(t0, r)
		} else {
			t1 = min(t1, r)
		}
		if t0 > t1 {
			return 0, 0, false
		}
	}
	return t0, t1, true
}

// Rune is the braille character of cell (col, row).
func (c *Canvas) Rune(col, row int) rune {
	return brailleBase + rune(c.cells[row*c.Width+col])
}

func (c *Canvas) String() string {
	var b strings.Builder
	b.Grow((c.Width*3 + 1) * c.Height)
	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			b.WriteRune(c.Rune(col, row))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
