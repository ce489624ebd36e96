package integrators

import (
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/birdsim/internal/dynamo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(p dynamo.Params) []dynamo.Integrator {
	return []dynamo.Integrator{NewScalar(p), NewLanes(p), NewBLAS(p)}
}

func constantParams(a float32, steps int) dynamo.Params {
	p := dynamo.DefaultParams()
	p.Profile = dynamo.Constant(a)
	p.SubSteps = steps
	return p
}

func TestAdvance_SingleParticle(t *testing.T) {
	for _, integ := range backends(constantParams(10, 1)) {
		t.Run(integ.Name(), func(t *testing.T) {
			st, err := dynamo.NewStore(1, 1000)
			require.NoError(t, err)
			_, err = st.Add(0, 5)
			require.NoError(t, err)

			integ.Advance(st, 1000)

			assert.InDelta(t, 10.0, st.PositionOf(0), 1e-5)
			assert.InDelta(t, 15.0, st.VelocityOf(0), 1e-5)
		})
	}
}

func TestAdvance_SubStepRefinement(t *testing.T) {
	const analyticPos, analyticVel = 10.0, 15.0

	run := func(steps int) (float64, float64) {
		st, _ := dynamo.NewStore(1, 1000)
		st.Add(0, 5)
		NewScalar(constantParams(10, steps)).Advance(st, 1000)
		return float64(st.PositionOf(0)), float64(st.VelocityOf(0))
	}

	p1, v1 := run(1)
	p2, v2 := run(2)

	assert.LessOrEqual(t, math.Abs(p2-analyticPos), math.Abs(p1-analyticPos)+1e-6)
	assert.LessOrEqual(t, math.Abs(v2-analyticVel), math.Abs(v1-analyticVel)+1e-6)
	assert.InDelta(t, analyticPos, p2, 1e-5)
}

func TestAdvance_NonPositiveDeltaIsNoop(t *testing.T) {
	for _, integ := range backends(dynamo.DefaultParams()) {
		t.Run(integ.Name(), func(t *testing.T) {
			st := randomStore(t, 37, 1)
			want := snapshot(st)

			for _, d := range []float32{0, -1, -1000, float32(math.NaN())} {
				integ.Advance(st, d)
			}

			got := snapshot(st)
			for i := range want {
				assert.Equal(t, math.Float32bits(want[i]), math.Float32bits(got[i]), "slot %d changed", i)
			}
		})
	}
}

func TestAdvance_ReflectionPreservesSpeed(t *testing.T) {
	p := constantParams(10, 1)
	for _, integ := range backends(p) {
		t.Run(integ.Name(), func(t *testing.T) {
			st, _ := dynamo.NewStore(1, 1000)
			st.Add(999, 100)

			_, dt, _ := p.Plan(100)
			preFlip := float32(100) + float32(10)*dt

			integ.Advance(st, 100)

			assert.Greater(t, st.PositionOf(0), float32(1000), "position kept past boundary")
			assert.Less(t, st.VelocityOf(0), float32(0))
			assert.InDelta(t, preFlip, -st.VelocityOf(0), 1e-4)
		})
	}
}

func TestAdvance_RevertBounce(t *testing.T) {
	p := constantParams(10, 1)
	p.Bounce = dynamo.BounceRevert
	for _, integ := range backends(p) {
		t.Run(integ.Name(), func(t *testing.T) {
			st, _ := dynamo.NewStore(1, 1000)
			st.Add(999, 100)

			integ.Advance(st, 100)

			assert.Equal(t, float32(999), st.PositionOf(0))
			assert.Less(t, st.VelocityOf(0), float32(0))
		})
	}
}

func TestAdvance_LaneEquivalence(t *testing.T) {
	deltas := []float32{16.6, 0, 33.3, -4, 8, 100, 16.7}

	tests := []struct {
		name   string
		params func() dynamo.Params
	}{
		{"canonical", dynamo.DefaultParams},
		{"derived", func() dynamo.Params {
			p := dynamo.DefaultParams()
			p.SubSteps = 0
			p.MaxSubSteps = 64
			return p
		}},
		{"revert", func() dynamo.Params {
			p := dynamo.DefaultParams()
			p.Bounce = dynamo.BounceRevert
			return p
		}},
		{"prescaled", func() dynamo.Params {
			p := dynamo.DefaultParams()
			p.Profile = p.Profile.Scaled(100)
			return p
		}},
	}

	for _, tt := range tests {
		for _, n := range []int{0, 1, 3, 4, 5, 17, 250} {
			params := tt.params()
			ref := randomStore(t, n, 7)
			for _, d := range deltas {
				NewScalar(params).Advance(ref, d)
			}

			for _, integ := range []dynamo.Integrator{NewLanes(params), NewBLAS(params)} {
				st := randomStore(t, n, 7)
				for _, d := range deltas {
					integ.Advance(st, d)
				}
				require.Equal(t, ref.Len(), st.Len())
				for id := 0; id < n; id++ {
					assertClose(t, ref.PositionOf(id), st.PositionOf(id), "%s/%s n=%d pos[%d]", tt.name, integ.Name(), n, id)
					assertClose(t, ref.VelocityOf(id), st.VelocityOf(id), "%s/%s n=%d vel[%d]", tt.name, integ.Name(), n, id)
				}
			}
		}
	}
}

func TestAdvance_LongHorizonEquivalence(t *testing.T) {
	if testing.Short() {
		t.Skip("long horizon")
	}
	params := dynamo.DefaultParams()

	for _, seed := range []int64{1, 2, 3, 4, 5} {
		rng := rand.New(rand.NewSource(seed))
		n := 1 + rng.Intn(300)
		deltas := make([]float32, 300)
		for i := range deltas {
			deltas[i] = 16 + rng.Float32()*4
		}

		ref := randomStore(t, n, seed)
		for _, d := range deltas {
			NewScalar(params).Advance(ref, d)
		}

		for _, integ := range []dynamo.Integrator{NewLanes(params), NewBLAS(params)} {
			st := randomStore(t, n, seed)
			for _, d := range deltas {
				integ.Advance(st, d)
			}
			for id := 0; id < n; id++ {
				assertClose(t, ref.PositionOf(id), st.PositionOf(id), "%s seed=%d pos[%d]", integ.Name(), seed, id)
				assertClose(t, ref.VelocityOf(id), st.VelocityOf(id), "%s seed=%d vel[%d]", integ.Name(), seed, id)
			}
		}
	}
}

func TestLanes_TailAfterRemoval(t *testing.T) {
	p := dynamo.DefaultParams()
	st := randomStore(t, 9, 3)
	ref := randomStore(t, 9, 3)
	st.RemoveLast()
	st.RemoveLast()
	ref.RemoveLast()
	ref.RemoveLast()

	NewLanes(p).Advance(st, 16)
	NewScalar(p).Advance(ref, 16)

	for id := 0; id < st.Len(); id++ {
		assertClose(t, ref.PositionOf(id), st.PositionOf(id), "pos[%d]", id)
	}
}

func assertClose(t *testing.T, want, got float32, msgAndArgs ...interface{}) {
	t.Helper()
	scale := math.Max(1, math.Max(math.Abs(float64(want)), math.Abs(float64(got))))
	assert.LessOrEqual(t, math.Abs(float64(want-got)), 1e-4*scale, msgAndArgs...)
}

func randomStore(t testing.TB, n int, seed int64) *dynamo.Store {
	t.Helper()
	capacity := n
	if capacity == 0 {
		capacity = 1
	}
	st, err := dynamo.NewStore(capacity, 1000)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(seed))
	for i := 0; i < n; i++ {
		_, err := st.Add(rng.Float32()*1100, rng.Float32()*100-50)
		require.NoError(t, err)
	}
	return st
}

func snapshot(st *dynamo.Store) []float32 {
	out := make([]float32, 0, 2*st.Len())
	for i := 0; i < st.Len(); i++ {
		out = append(out, st.PositionOf(i), st.VelocityOf(i))
	}
	return out
}
