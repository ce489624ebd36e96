package gui

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/birdsim/internal/surface"
)

type marker struct {
	token surface.Token
	pos   rl.Vector2
}

// Window is a retained marker list drawn into the current raylib frame.
// Placing and moving markers does not touch raylib; only Draw does.
type Window struct {
	width, height float32
	markers       []marker
}

func NewWindow(width, height int) *Window {
	return &Window{width: float32(width), height: float32(height)}
}

func (w *Window) Size() (float32, float32) { return w.width, w.height }
func (w *Window) Len() int                 { return len(w.markers) }

func (w *Window) Place(token surface.Token, x, y float32) surface.Handle {
	w.markers = append(w.markers, marker{token: token, pos: rl.NewVector2(x, y)})
	return surface.Handle(len(w.markers) - 1)
}

func (w *Window) Move(h surface.Handle, x, y float32) {
	if h < 0 || int(h) >= len(w.markers) {
		return
	}
	w.markers[h].pos = rl.NewVector2(x, y)
}

func (w *Window) RemoveLast() {
	if n := len(w.markers); n > 0 {
		w.markers = w.markers[:n-1]
	}
}

// Draw paints every marker. Call between rl.BeginDrawing and rl.EndDrawing.
func (w *Window) Draw() {
	for _, m := range w.markers {
		rl.DrawRectangleV(m.pos, rl.NewVector2(m.token.W, m.token.H), m.token.Color)
	}
}
