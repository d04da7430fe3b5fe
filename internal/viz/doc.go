// Package viz draws a cloth into the terminal.
//
// Rendering goes through a braille [Canvas] with 2x4 sub-pixels per cell.
// A [Camera] projects world points onto it and [Render3D] draws a
// [Wireframe] built from the cloth's springs and any rigid colliders.
//
// A canvas can be exported as an SVG snapshot ([CanvasToSVG]) or collected
// into an animated GIF ([Recorder]).
package viz
