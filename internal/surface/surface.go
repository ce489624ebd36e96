package surface

import (
	"errors"
	"fmt"
	"image/color"
	"sort"
)

var ErrUnknownKind = errors.New("surface: unknown kind")

// Token describes what a marker looks like. Surfaces that cannot draw sizes
// or colours ignore them.
type Token struct {
	W, H  float32
	Color color.RGBA
}

// Dot is a solid square token, the default bird marker.
func Dot(size float32) Token {
	return Token{W: size, H: size, Color: color.RGBA{A: 255}}
}

// Handle identifies a placed marker. Handles are issued in order and removed
// last-in-first-out, mirroring particle ids.
type Handle int

// Surface places and repositions markers. Coordinates are in surface units
// with y growing downward.
type Surface interface {
	Place(token Token, x, y float32) Handle
	Move(h Handle, x, y float32)
	RemoveLast()
	Len() int
}

// Sizer is implemented by surfaces with a fixed drawing area.
type Sizer interface {
	Size() (w, h float32)
}

var kinds = map[string]func(w, h int) Surface{
	"canvas":  func(w, h int) Surface { return NewCanvas(w, h) },
	"discard": func(w, h int) Surface { return NewDiscard(float32(w), float32(h)) },
}

// Kinds lists the surfaces New can build.
func Kinds() []string {
	out := make([]string, 0, len(kinds))
	for k := range kinds {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// New builds a surface by kind. For "canvas" w and h are terminal cells.
func New(kind string, w, h int) (Surface, error) {
	build, ok := kinds[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownKind, kind, Kinds())
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("surface: invalid size %dx%d", w, h)
	}
	return build(w, h), nil
}
