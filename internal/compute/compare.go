package compute

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/san-kum/birdsim/internal/dynamo"
)

// Workload is a reproducible particle population advanced for a fixed
// number of frames.
type Workload struct {
	Particles int
	Boundary  float32
	Velocity  float32
	Frames    int
	DeltaMs   float32
	Seed      int64
}

func DefaultWorkload() Workload {
	return Workload{
		Particles: 1000,
		Boundary:  1000,
		Velocity:  1,
		Frames:    60,
		DeltaMs:   1000.0 / 60,
		Seed:      1,
	}
}

// Store builds the workload's initial population.
func (w Workload) Store() (*dynamo.Store, error) {
	st, err := dynamo.NewStore(w.Particles, w.Boundary)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(w.Seed))
	for i := 0; i < w.Particles; i++ {
		if _, err := st.Add(rng.Float32()*w.Boundary, rng.Float32()*w.Velocity); err != nil {
			return nil, err
		}
	}
	return st, nil
}

// Result is one backend's outcome on a workload.
type Result struct {
	Backend string
	Elapsed time.Duration
	// Deviation is the largest position difference from the reference
	// backend, relative to the boundary.
	Deviation float64
	pos       []float32
}

// NsPerParticle is the mean cost of advancing one particle for one frame.
func (r Result) NsPerParticle(w Workload) float64 {
	n := w.Particles * w.Frames
	if n == 0 {
		return 0
	}
	return float64(r.Elapsed.Nanoseconds()) / float64(n)
}

// Run advances the workload with one backend.
func Run(name string, p dynamo.Params, w Workload) (Result, error) {
	integ, err := New(name, p)
	if err != nil {
		return Result{}, err
	}
	st, err := w.Store()
	if err != nil {
		return Result{}, err
	}
	start := time.Now()
	for i := 0; i < w.Frames; i++ {
		integ.Advance(st, w.DeltaMs)
	}
	elapsed := time.Since(start)

	pos, _ := st.Buffers()
	return Result{
		Backend: integ.Name(),
		Elapsed: elapsed,
		pos:     append([]float32(nil), pos[:st.Len()]...),
	}, nil
}

// Compare runs every named backend on the same workload and reports each
// one's deviation from the first.
func Compare(names []string, p dynamo.Params, w Workload) ([]Result, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("compare: no backends")
	}
	results := make([]Result, 0, len(names))
	for _, name := range names {
		r, err := Run(name, p, w)
		if err != nil {
			return nil, fmt.Errorf("compare %s: %w", name, err)
		}
		results = append(results, r)
	}

	ref := results[0].pos
	for i := range results {
		var worst float64
		for j, v := range results[i].pos {
			d := math.Abs(float64(v - ref[j]))
			if d > worst {
				worst = d
			}
		}
		if w.Boundary > 0 {
			worst /= float64(w.Boundary)
		}
		results[i].Deviation = worst
	}
	return results, nil
}
