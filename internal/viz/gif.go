package viz

import (
	"image"
	"image/color"
	"image/gif"
	"io"
	"math"
)

const (
	cellW = 8
	cellH = 16
)

// gifPalette is the background followed by dot shades from far to near.
var gifPalette = color.Palette{
	color.Black,
	color.RGBA{0x00, 0x33, 0x44, 0xff},
	color.RGBA{0x00, 0x66, 0x88, 0xff},
	color.RGBA{0x00, 0x99, 0xcc, 0xff},
	color.RGBA{0x00, 0xcc, 0xff, 0xff},
}

// CanvasToImage rasterises each lit braille dot as a filled block, shaded
// by its depth so nearer parts of the cloth are brighter.
func CanvasToImage(c *Canvas) *image.Paletted {
	img := image.NewPaletted(image.Rect(0, 0, c.Width*cellW, c.Height*cellH), gifPalette)
	dotW, dotH := cellW/2, cellH/4
	nearest, farthest, _ := c.DepthRange()
	dw, dh := c.Dots()
	for y := 0; y < dh; y++ {
		for x := 0; x < dw; x++ {
			d, lit := c.Depth(x, y)
			if !lit {
				continue
			}
			idx := shade(d, nearest, farthest)
			for py := 0; py < dotH; py++ {
				for px := 0; px < dotW; px++ {
					img.SetColorIndex(x*dotW+px, y*dotH+py, idx)
				}
			}
		}
	}
	return img
}

func shade(d, nearest, farthest float64) uint8 {
	top := len(gifPalette) - 1
	span := nearest - farthest
	if !(span > 0) || math.IsInf(span, 0) {
		return uint8(top)
	}
	f := max(0, min(1, (d-farthest)/span))
	return uint8(1 + int(math.Round(f*float64(top-1))))
}

// Recorder collects canvas frames into an animated GIF.
type Recorder struct {
	frames []*image.Paletted
	delay  int
}

// NewRecorder uses delay hundredths of a second between frames.
func NewRecorder(delay int) *Recorder {
	return &Recorder{delay: delay}
}

func (r *Recorder) Capture(c *Canvas) { r.frames = append(r.frames, CanvasToImage(c)) }
func (r *Recorder) Len() int          { return len(r.frames) }
func (r *Recorder) Reset()            { r.frames = nil }

func (r *Recorder) Encode(w io.Writer) error {
	anim := gif.GIF{LoopCount: 0}
	for _, f := range r.frames {
		anim.Image = append(anim.Image, f)
		anim.Delay = append(anim.Delay, r.delay)
	}
	return gif.EncodeAll(w, &anim)
}
