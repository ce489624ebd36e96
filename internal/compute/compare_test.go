package compute

import (
	"testing"
	"time"

	"github.com/san-kum/birdsim/internal/dynamo"
)

func TestCompare_ReferenceHasNoDeviation(t *testing.T) {
	w := DefaultWorkload()
	w.Particles = 37
	w.Frames = 1

	results, err := Compare([]string{"scalar", "lanes"}, dynamo.DefaultParams(), w)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Backend != "scalar" || results[1].Backend != "lanes" {
		t.Errorf("unexpected order: %s, %s", results[0].Backend, results[1].Backend)
	}
	if results[0].Deviation != 0 {
		t.Errorf("reference deviation = %v", results[0].Deviation)
	}
	if results[1].Deviation > 1e-4 {
		t.Errorf("lanes deviation = %v", results[1].Deviation)
	}
}

func TestCompare_Errors(t *testing.T) {
	p := dynamo.DefaultParams()
	if _, err := Compare(nil, p, DefaultWorkload()); err == nil {
		t.Error("expected error for empty backend list")
	}
	if _, err := Compare([]string{"scalar", "cuda"}, p, DefaultWorkload()); err == nil {
		t.Error("expected error for unknown backend")
	}
	w := DefaultWorkload()
	w.Particles = 0
	if _, err := Run("scalar", p, w); err == nil {
		t.Error("expected error for empty workload")
	}
}

func TestWorkload_Reproducible(t *testing.T) {
	w := DefaultWorkload()
	a, err := w.Store()
	if err != nil {
		t.Fatal(err)
	}
	b, _ := w.Store()
	for id := 0; id < a.Len(); id++ {
		if a.PositionOf(id) != b.PositionOf(id) || a.VelocityOf(id) != b.VelocityOf(id) {
			t.Fatalf("particle %d differs between builds", id)
		}
	}
}

func TestResult_NsPerParticle(t *testing.T) {
	w := Workload{Particles: 10, Frames: 5}
	r := Result{Elapsed: 500 * time.Nanosecond}
	if got := r.NsPerParticle(w); got != 10 {
		t.Errorf("NsPerParticle() = %v, want 10", got)
	}
	if got := r.NsPerParticle(Workload{}); got != 0 {
		t.Errorf("empty workload = %v, want 0", got)
	}
}
