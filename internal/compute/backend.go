package compute

import (
	"fmt"
	"runtime"
	"sort"

	"github.com/san-kum/birdsim/internal/dynamo"
	"github.com/san-kum/birdsim/internal/integrators"
	"golang.org/x/sys/cpu"
)

const Auto = "auto"

// Capabilities is the subset of CPU features that affects backend choice.
type Capabilities struct {
	Arch  string
	SSE2  bool
	AVX   bool
	AVX2  bool
	ASIMD bool
}

func Probe() Capabilities {
	return Capabilities{
		Arch:  runtime.GOARCH,
		SSE2:  cpu.X86.HasSSE2,
		AVX:   cpu.X86.HasAVX,
		AVX2:  cpu.X86.HasAVX2,
		ASIMD: cpu.ARM64.HasASIMD,
	}
}

func (c Capabilities) String() string {
	return fmt.Sprintf("%s sse2=%t avx=%t avx2=%t asimd=%t", c.Arch, c.SSE2, c.AVX, c.AVX2, c.ASIMD)
}

type backend struct {
	name      string
	rank      int
	available func(Capabilities) bool
	build     func(dynamo.Params) dynamo.Integrator
}

var backends = map[string]backend{
	"blas": {
		name: "blas",
		rank: 0,
		// gonum only ships float32 assembly kernels for amd64
		available: func(c Capabilities) bool { return c.Arch == "amd64" && c.SSE2 },
		build:     func(p dynamo.Params) dynamo.Integrator { return integrators.NewBLAS(p) },
	},
	"lanes": {
		name:      "lanes",
		rank:      1,
		available: func(Capabilities) bool { return true },
		build:     func(p dynamo.Params) dynamo.Integrator { return integrators.NewLanes(p) },
	},
	"scalar": {
		name:      "scalar",
		rank:      2,
		available: func(Capabilities) bool { return true },
		build:     func(p dynamo.Params) dynamo.Integrator { return integrators.NewScalar(p) },
	},
}

// Names lists backend names in order of preference.
func Names() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return backends[names[i]].rank < backends[names[j]].rank })
	return names
}

// Available reports the backends usable on the probed CPU.
func Available(c Capabilities) []string {
	var out []string
	for _, name := range Names() {
		if backends[name].available(c) {
			out = append(out, name)
		}
	}
	return out
}

// AutoSelect returns the preferred backend available on c.
func AutoSelect(p dynamo.Params, c Capabilities) dynamo.Integrator {
	for _, name := range Names() {
		if b := backends[name]; b.available(c) {
			return b.build(p)
		}
	}
	return integrators.NewScalar(p)
}

// New builds the named backend, or the auto-selected one for "auto" or "".
func New(name string, p dynamo.Params) (dynamo.Integrator, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if name == "" || name == Auto {
		return AutoSelect(p, Probe()), nil
	}
	b, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("unknown backend: %s (available: %v)", name, Names())
	}
	return b.build(p), nil
}
