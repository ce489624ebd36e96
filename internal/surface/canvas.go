package surface

import (
	"math"
	"strings"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// Canvas is a braille terminal surface. Each cell holds 2x4 sub-pixels and
// the surface unit is one sub-pixel. Overlapping markers are counted per
// sub-pixel so moving one of them does not erase the other.
type Canvas struct {
	Width, Height int
	Grid          [][]rune

	counts  []uint32
	markers []int // sub-pixel index per handle, -1 when off the grid
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		counts: make([]uint32, w*2*h*4),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
	return c
}

func (c *Canvas) Size() (float32, float32) {
	return float32(c.Width * 2), float32(c.Height * 4)
}

func (c *Canvas) Len() int { return len(c.markers) }

func (c *Canvas) Place(_ Token, x, y float32) Handle {
	idx := c.index(x, y)
	c.markers = append(c.markers, idx)
	c.inc(idx)
	return Handle(len(c.markers) - 1)
}

func (c *Canvas) Move(h Handle, x, y float32) {
	if h < 0 || int(h) >= len(c.markers) {
		return
	}
	idx := c.index(x, y)
	old := c.markers[h]
	if idx == old {
		return
	}
	c.dec(old)
	c.inc(idx)
	c.markers[h] = idx
}

func (c *Canvas) RemoveLast() {
	n := len(c.markers)
	if n == 0 {
		return
	}
	c.dec(c.markers[n-1])
	c.markers = c.markers[:n-1]
}

// Occupied reports how many markers cover the sub-pixel at (x, y).
func (c *Canvas) Occupied(x, y int) int {
	idx := c.index(float32(x), float32(y))
	if idx < 0 {
		return 0
	}
	return int(c.counts[idx])
}

// Clear removes every marker.
func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
	clear(c.counts)
	c.markers = c.markers[:0]
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func (c *Canvas) index(x, y float32) int {
	pw := c.Width * 2
	if math.IsNaN(float64(x)) || math.IsNaN(float64(y)) ||
		x < 0 || y < 0 || x >= float32(pw) || y >= float32(c.Height*4) {
		return -1
	}
	return int(y)*pw + int(x)
}

func (c *Canvas) inc(idx int) {
	if idx < 0 {
		return
	}
	c.counts[idx]++
	if c.counts[idx] == 1 {
		c.set(idx, true)
	}
}

func (c *Canvas) dec(idx int) {
	if idx < 0 || c.counts[idx] == 0 {
		return
	}
	c.counts[idx]--
	if c.counts[idx] == 0 {
		c.set(idx, false)
	}
}

func (c *Canvas) set(idx int, on bool) {
	pw := c.Width * 2
	x, y := idx%pw, idx/pw
	bit := pixelMap[y%4][x%2]
	cell := &c.Grid[y/4][x/2]
	if on {
		*cell |= bit
	} else {
		*cell &^= bit
	}
}
