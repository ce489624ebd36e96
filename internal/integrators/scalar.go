package integrators

import "github.com/san-kum/birdsim/internal/dynamo"

// Scalar is the reference integrator: every sub-step of one particle runs
// before the next particle is touched.
type Scalar struct {
	params dynamo.Params
	accel  []float32
}

func NewScalar(p dynamo.Params) *Scalar {
	return &Scalar{params: p, accel: p.Profile.Samples()}
}

func (s *Scalar) Name() string { return "scalar" }

func (s *Scalar) Advance(st *dynamo.Store, deltaMs float32) {
	steps, dt, ok := s.params.Plan(deltaMs)
	if !ok {
		return
	}

	pos, vel := st.Buffers()
	maxPos := st.Boundary()
	halfDt2 := 0.5 * dt * dt
	revert := s.params.Bounce == dynamo.BounceRevert
	na := len(s.accel)

	for i, n := 0, st.Len(); i < n; i++ {
		p, v := pos[i], vel[i]
		j := 0
		for k := 0; k < steps; k++ {
			a := s.accel[j]
			j++
			if j == na {
				j = 0
			}
			next := p + (a*halfDt2 + v*dt)
			v = v + a*dt
			if next > maxPos {
				v = -v
				if revert {
					next = p
				}
			}
			p = next
		}
		pos[i], vel[i] = p, v
	}
}
