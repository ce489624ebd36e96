package integrators

import (
	"github.com/san-kum/birdsim/internal/dynamo"
	"gonum.org/v1/gonum/blas/blas32"
)

// BLAS runs the sub-step loop outermost and updates the whole live population
// per sub-step with blas32 vector kernels. Particles are independent, so the
// reordering is equivalent to the scalar path.
type BLAS struct {
	params dynamo.Params
	accel  []float32
	ones   []float32
	step   []float32
	prev   []float32
}

func NewBLAS(p dynamo.Params) *BLAS {
	return &BLAS{params: p, accel: p.Profile.Samples()}
}

func (b *BLAS) Name() string { return "blas" }

// ensureScratch grows the scratch vectors once to the store's capacity.
func (b *BLAS) ensureScratch(n int) {
	if len(b.ones) >= n {
		return
	}
	b.ones = make([]float32, n)
	for i := range b.ones {
		b.ones[i] = 1
	}
	b.step = make([]float32, n)
	b.prev = make([]float32, n)
}

func (b *BLAS) Advance(st *dynamo.Store, deltaMs float32) {
	steps, dt, ok := b.params.Plan(deltaMs)
	if !ok {
		return
	}
	n := st.Len()
	if n == 0 {
		return
	}
	b.ensureScratch(st.Cap())

	pos, vel := st.Buffers()
	pv := blas32.Vector{N: n, Inc: 1, Data: pos[:n]}
	vv := blas32.Vector{N: n, Inc: 1, Data: vel[:n]}
	ov := blas32.Vector{N: n, Inc: 1, Data: b.ones[:n]}
	sv := blas32.Vector{N: n, Inc: 1, Data: b.step[:n]}
	prevv := blas32.Vector{N: n, Inc: 1, Data: b.prev[:n]}

	maxPos := st.Boundary()
	halfDt2 := 0.5 * dt * dt
	revert := b.params.Bounce == dynamo.BounceRevert
	na := len(b.accel)

	j := 0
	for k := 0; k < steps; k++ {
		a := b.accel[j]
		j++
		if j == na {
			j = 0
		}
		if revert {
			blas32.Copy(pv, prevv)
		}
		// the displacement is summed before it touches pos so rounding
		// matches the scalar path at the boundary
		blas32.Copy(ov, sv)
		blas32.Scal(a*halfDt2, sv)
		blas32.Axpy(dt, vv, sv)
		blas32.Axpy(1, sv, pv)
		blas32.Axpy(a*dt, ov, vv)

		for i := 0; i < n; i++ {
			if pos[i] > maxPos {
				vel[i] = -vel[i]
				if revert {
					pos[i] = b.prev[i]
				}
			}
		}
	}
}
