package controllers_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/birdsim/internal/controllers"
)

type recorder struct {
	grows    []int
	shrinks  []int
	failNext error
}

func (r *recorder) grow(n int) error {
	r.grows = append(r.grows, n)
	return r.failNext
}

func (r *recorder) shrink(n int) error {
	r.shrinks = append(r.shrinks, n)
	return r.failNext
}

// feed samples count timestamps spaced by step starting at start and returns
// the number of calls that reported an adjustment and the last fps.
func feed(p *controllers.Population, r *recorder, start, step float64, count, population int) (int, float64) {
	adjustments := 0
	var fps float64
	for i := 0; i < count; i++ {
		adjusted, f := p.Sample(start+float64(i)*step, population, r.grow, r.shrink)
		if adjusted {
			adjustments++
		}
		fps = f
	}
	return adjustments, fps
}

var _ = Describe("Population", func() {
	var (
		ctrl *controllers.Population
		rec  *recorder
	)

	BeforeEach(func() {
		var err error
		ctrl, err = controllers.NewPopulation(controllers.Config{
			Target: 30, Min: 29.5, Max: 30.5, WindowSize: 10,
		})
		Expect(err).NotTo(HaveOccurred())
		rec = &recorder{}
	})

	It("starts priming and seeds the window on the first sample", func() {
		Expect(ctrl.State()).To(Equal(controllers.Priming))
		adjusted, fps := ctrl.Sample(100, 10, rec.grow, rec.shrink)
		Expect(adjusted).To(BeFalse())
		Expect(fps).To(BeZero())
		Expect(ctrl.State()).To(Equal(controllers.Accumulating))
	})

	It("reaches measuring after a full window of frames", func() {
		feed(ctrl, rec, 0, 20, 10, 10)
		Expect(ctrl.State()).To(Equal(controllers.Measuring))
		Expect(rec.grows).To(BeEmpty())
	})

	It("grows once by half the population at 50 fps", func() {
		adjustments, fps := feed(ctrl, rec, 0, 20, 11, 10)
		Expect(adjustments).To(Equal(1))
		Expect(fps).To(BeNumerically("~", 50, 1e-9))
		Expect(rec.grows).To(Equal([]int{5}))
		Expect(rec.shrinks).To(BeEmpty())
		Expect(ctrl.State()).To(Equal(controllers.Accumulating))
		Expect(ctrl.Windows()).To(Equal(1))
	})

	It("shrinks once by a quarter of the population at 25 fps", func() {
		adjustments, fps := feed(ctrl, rec, 0, 40, 11, 10)
		Expect(adjustments).To(Equal(1))
		Expect(fps).To(BeNumerically("~", 25, 1e-9))
		Expect(rec.shrinks).To(Equal([]int{3}))
		Expect(rec.grows).To(BeEmpty())
	})

	It("holds inside the band", func() {
		adjustments, fps := feed(ctrl, rec, 0, 1000.0/30, 11, 10)
		Expect(adjustments).To(BeZero())
		Expect(fps).To(BeNumerically("~", 30, 1e-6))
		Expect(ctrl.LastWindow().Decision).To(Equal(controllers.Hold))
	})

	It("restarts the window at the measuring timestamp", func() {
		feed(ctrl, rec, 0, 20, 11, 10)
		// second window: 10 more frames at 40ms starting after t=200
		adjustments, fps := feed(ctrl, rec, 240, 40, 10, 10)
		Expect(adjustments).To(Equal(1))
		Expect(fps).To(BeNumerically("~", 25, 1e-9))
		Expect(rec.shrinks).To(Equal([]int{3}))
	})

	It("absorbs a window with no elapsed time", func() {
		adjustments, _ := feed(ctrl, rec, 500, 0, 11, 10)
		Expect(adjustments).To(BeZero())
		Expect(rec.grows).To(BeEmpty())
		Expect(rec.shrinks).To(BeEmpty())
		Expect(ctrl.State()).To(Equal(controllers.Accumulating))
		Expect(ctrl.Windows()).To(BeZero())
	})

	It("does not retry a failed adjustment within the window", func() {
		rec.failNext = errors.New("capacity exceeded")
		adjustments, _ := feed(ctrl, rec, 0, 20, 11, 10)
		Expect(adjustments).To(Equal(1))
		Expect(rec.grows).To(HaveLen(1))
		Expect(ctrl.LastWindow().Err).To(HaveOccurred())
	})

	It("goes back to priming on reset", func() {
		feed(ctrl, rec, 0, 20, 5, 10)
		ctrl.Reset()
		Expect(ctrl.State()).To(Equal(controllers.Priming))
	})
})

var _ = Describe("Config", func() {
	DescribeTable("rejects invalid settings",
		func(cfg controllers.Config) {
			_, err := controllers.NewPopulation(cfg)
			Expect(err).To(MatchError(controllers.ErrInvalidConfig))
		},
		Entry("zero window", controllers.Config{Target: 30, Min: 28, Max: 32, WindowSize: 0}),
		Entry("inverted band", controllers.Config{Target: 30, Min: 32, Max: 28, WindowSize: 10}),
		Entry("zero target", controllers.Config{Target: 0, Min: 0, Max: 1, WindowSize: 10}),
	)

	It("accepts the defaults", func() {
		Expect(controllers.DefaultConfig().Validate()).To(Succeed())
	})
})

var _ = Describe("Decision", func() {
	It("round-trips through its text form", func() {
		for _, d := range []controllers.Decision{controllers.Hold, controllers.Grow, controllers.Shrink} {
			text, err := d.MarshalText()
			Expect(err).NotTo(HaveOccurred())
			var back controllers.Decision
			Expect(back.UnmarshalText(text)).To(Succeed())
			Expect(back).To(Equal(d))
		}
	})

	It("rejects unknown names", func() {
		_, err := controllers.ParseDecision("explode")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Adjust", func() {
	DescribeTable("maps fps distance to an increment",
		func(actual, target float64, total, want int) {
			Expect(controllers.Adjust(actual, target, total)).To(Equal(want))
		},
		Entry("far above, boundary inclusive", 50.0, 30.0, 10, 5),
		Entry("far below", 5.0, 30.0, 9, 5),
		Entry("ten away", 40.0, 30.0, 10, 4),
		Entry("five away", 25.0, 30.0, 10, 3),
		Entry("two away", 32.0, 30.0, 10, 2),
		Entry("close", 31.0, 30.0, 10, 1),
		Entry("empty population", 60.0, 30.0, 0, 1),
		Entry("rounds up", 60.0, 30.0, 3, 2),
	)
})
