package integrators

import "github.com/san-kum/birdsim/internal/dynamo"

const laneWidth = dynamo.LaneWidth

type (
	lane [laneWidth]float32
	mask [laneWidth]bool
)

func splat(x float32) lane { return lane{x, x, x, x} }

func (a lane) add(b lane) lane { return lane{a[0] + b[0], a[1] + b[1], a[2] + b[2], a[3] + b[3]} }
func (a lane) mul(b lane) lane { return lane{a[0] * b[0], a[1] * b[1], a[2] * b[2], a[3] * b[3]} }
func (a lane) neg() lane       { return lane{-a[0], -a[1], -a[2], -a[3]} }
func (a lane) gt(b lane) mask  { return mask{a[0] > b[0], a[1] > b[1], a[2] > b[2], a[3] > b[3]} }

// sel picks t where m is set, f elsewhere.
func sel(m mask, t, f lane) lane {
	for i := range m {
		if m[i] {
			f[i] = t[i]
		}
	}
	return f
}

// Lanes processes particles in groups of four with lane-wise arithmetic. The last
// group may run into the padded tail past Len, which Store guarantees is allocated.
type Lanes struct {
	params dynamo.Params
	accel  []lane
}

func NewLanes(p dynamo.Params) *Lanes {
	samples := p.Profile.Samples()
	accel := make([]lane, len(samples))
	for i, a := range samples {
		accel[i] = splat(a)
	}
	return &Lanes{params: p, accel: accel}
}

func (l *Lanes) Name() string { return "lanes" }

func (l *Lanes) Advance(st *dynamo.Store, deltaMs float32) {
	steps, dt, ok := l.params.Plan(deltaMs)
	if !ok {
		return
	}

	pos, vel := st.Buffers()
	dtv := splat(dt)
	halfDt2 := splat(0.5 * dt * dt)
	maxPos := splat(st.Boundary())
	revert := l.params.Bounce == dynamo.BounceRevert
	na := len(l.accel)

	groups := dynamo.PadToLanes(st.Len()) / laneWidth
	for g := 0; g < groups; g++ {
		base := g * laneWidth
		pp := (*lane)(pos[base : base+laneWidth])
		vp := (*lane)(vel[base : base+laneWidth])
		p, v := *pp, *vp

		j := 0
		for k := 0; k < steps; k++ {
			a := l.accel[j]
			j++
			if j == na {
				j = 0
			}
			next := p.add(a.mul(halfDt2).add(v.mul(dtv)))
			v = v.add(a.mul(dtv))
			crossed := next.gt(maxPos)
			v = sel(crossed, v.neg(), v)
			if revert {
				next = sel(crossed, p, next)
			}
			p = next
		}
		*pp, *vp = p, v
	}
}
