package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/viz"
)

const (
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// Renderer redraws the cloth to a plain terminal as frames complete, at
// most frameRate times per second, with progress toward frames in total.
// It satisfies sim.Observer.
type Renderer struct {
	out       io.Writer
	name      string
	frameRate int
	frames    int
	lastFrame time.Time
	canvas    *viz.Canvas
	camera    *viz.Camera
	colliders []cloth.Collider
}

func NewRenderer(out io.Writer, name string, frameRate, frames int, colliders []cloth.Collider) *Renderer {
	return &Renderer{
		out:       out,
		name:      name,
		frameRate: max(frameRate, 1),
		frames:    frames,
		canvas:    viz.NewCanvas(canvasWidth, canvasHeight),
		colliders: colliders,
	}
}

func (r *Renderer) OnFrame(c *cloth.Cloth, frame int, t float64) {
	if time.Since(r.lastFrame) < time.Second/time.Duration(r.frameRate) {
		return
	}
	r.lastFrame = time.Now()

	if r.camera == nil {
		// frame the rest pose once so the view does not chase the cloth
		r.camera = viz.NewCamera()
		r.camera.Frame(c.Positions())
	}

	r.canvas.Clear()
	viz.Render3D(r.canvas, viz.SceneWireframe(c, r.colliders), r.camera)

	var b strings.Builder
	b.WriteString(clearScreen)
	cols, rows := c.Resolution()
	fmt.Fprintf(&b, "  %s  %dx%d  frame=%d  t=%.2fs\n", r.name, cols, rows, frame, t)
	b.WriteString("  " + strings.Repeat("-", canvasWidth) + "\n")
	for _, line := range strings.Split(strings.TrimSuffix(r.canvas.String(), "\n"), "\n") {
		b.WriteString("  " + line + "\n")
	}
	b.WriteString("  " + strings.Repeat("-", canvasWidth) + "\n")
	if r.frames > 0 {
		done := float64(frame+1) / float64(r.frames)
		fmt.Fprintf(&b, "  %s %3.0f%%\n", viz.ProgressBar(done, canvasWidth-5), done*100)
	}
	fmt.Fprint(r.out, b.String())
}

func (r *Renderer) Start() { fmt.Fprint(r.out, hideCursor) }
func (r *Renderer) Stop()  { fmt.Fprint(r.out, showCursor) }
