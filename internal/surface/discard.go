package surface

// Discard tracks marker count only. It backs headless runs and benchmarks.
type Discard struct {
	w, h float32
	n    int
}

func NewDiscard(w, h float32) *Discard {
	return &Discard{w: w, h: h}
}

func (d *Discard) Place(Token, float32, float32) Handle {
	d.n++
	return Handle(d.n - 1)
}

func (d *Discard) Move(Handle, float32, float32) {}

func (d *Discard) RemoveLast() {
	if d.n > 0 {
		d.n--
	}
}

func (d *Discard) Len() int                 { return d.n }
func (d *Discard) Size() (float32, float32) { return d.w, d.h }
