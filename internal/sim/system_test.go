package sim_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/blocksim/internal/dynamo"
	"github.com/san-kum/blocksim/internal/recorder"
	"github.com/san-kum/blocksim/internal/signal"
	"github.com/san-kum/blocksim/internal/sim"
)

var _ = Describe("System", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("New", func() {
		It("derives the step count from the time span", func() {
			s, err := sim.New(0, 10, 0.01)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Clock().StepNum()).To(Equal(1000))
		})

		It("rejects a non-positive step", func() {
			_, err := sim.New(0, 1, 0)
			Expect(err).To(MatchError(dynamo.ErrInvalidClock))
		})
	})

	Describe("Run", func() {
		It("steps models in registration order, then recorders", func() {
			var order []string
			s, _ := sim.New(0, 0.2, 0.1)
			a := newCounter("a", &order)
			b := newFollower("b", &order)
			Expect(dynamo.Connect(a, []string{"a"}, b, []string{"in"})).To(Succeed())
			s.RegisterModel(a)
			s.RegisterModel(b)

			rec := newFollower("rec", &order)
			Expect(dynamo.Connect(b, []string{"b"}, rec, []string{"in"})).To(Succeed())
			Expect(s.RegisterRecorder("rec", rec)).To(Succeed())

			Expect(s.Run(ctx)).To(Succeed())
			Expect(order).To(Equal([]string{"a", "b", "rec", "a", "b", "rec"}))
		})

		It("calls every lifecycle hook", func() {
			s, _ := sim.New(0, 1, 0.25)
			c := newCounter("c", nil)
			s.RegisterModel(c)

			Expect(s.Run(ctx)).To(Succeed())
			Expect(c.inits).To(Equal(1))
			Expect(c.steps).To(Equal(4))
			Expect(c.fins).To(Equal(1))

			Expect(s.Run(ctx)).To(Succeed())
			Expect(c.inits).To(Equal(2))
			Expect(c.steps).To(Equal(4))
		})

		It("gives consumers registered first the previous tick's value", func() {
			s, _ := sim.New(0, 0.3, 0.1)
			c := newCounter("c", nil)
			lagged := newSampler()
			Expect(dynamo.Connect(c, []string{"c"}, lagged, []string{"x"})).To(Succeed())
			s.RegisterModel(lagged)
			s.RegisterModel(c)

			Expect(s.Run(ctx)).To(Succeed())
			Expect(lagged.samples).To(Equal([]float64{0, 1, 2}))
		})

		It("hands models the tick time", func() {
			s, _ := sim.New(1, 2, 0.5)
			c := newCounter("c", nil)
			p := newSampler()
			Expect(dynamo.Connect(c, []string{"c"}, p, []string{"x"})).To(Succeed())
			s.RegisterModel(c)
			s.RegisterModel(p)

			Expect(s.Run(ctx)).To(Succeed())
			Expect(p.times).To(HaveLen(2))
			Expect(p.times[0]).To(BeNumerically("~", 1.5, 1e-12))
			Expect(p.times[1]).To(BeNumerically("~", 2.0, 1e-12))
		})

		It("records step_num+1 samples", func() {
			s, _ := sim.New(0, 10, 0.01)
			c := newCounter("c", nil)
			s.RegisterModel(c)

			rec, err := recorder.New([]signal.Def{signal.D("c", "-")})
			Expect(err).NotTo(HaveOccurred())
			Expect(dynamo.Connect(c, []string{"c"}, rec, []string{"c"})).To(Succeed())
			Expect(s.RegisterRecorder("main", rec)).To(Succeed())

			Expect(s.Run(ctx)).To(Succeed())
			Expect(rec.Len()).To(Equal(s.Clock().StepNum() + 1))

			got, ok := s.Recorder("main")
			Expect(ok).To(BeTrue())
			Expect(got).To(BeIdenticalTo(dynamo.Model(rec)))
		})

		It("reports progress at the requested interval and at the end", func() {
			var seen []sim.Progress
			s, _ := sim.New(0, 1, 0.1, sim.WithProgress(4, func(p sim.Progress) {
				seen = append(seen, p)
			}))
			s.RegisterModel(newCounter("c", nil))

			Expect(s.Run(ctx)).To(Succeed())
			steps := make([]int, len(seen))
			for i, p := range seen {
				steps[i] = p.Step
				Expect(p.Total).To(Equal(10))
			}
			Expect(steps).To(Equal([]int{4, 8, 10}))
			Expect(seen[len(seen)-1].Fraction()).To(Equal(1.0))
		})

		It("stops between ticks when the context is canceled", func() {
			cctx, cancel := context.WithCancel(ctx)
			s, _ := sim.New(0, 1, 0.1, sim.WithProgress(3, func(p sim.Progress) {
				cancel()
			}))
			c := newCounter("c", nil)
			s.RegisterModel(c)

			err := s.Run(cctx)
			Expect(err).To(MatchError(dynamo.ErrContextCanceled))
			Expect(err).To(MatchError(context.Canceled))
			Expect(c.steps).To(Equal(3))
			Expect(c.fins).To(Equal(1))
		})

		It("stops when a model state becomes non-finite", func() {
			s, _ := sim.New(0, 1, 0.1)
			g := newGrower(1e200)
			c := newCounter("c", nil)
			s.RegisterModel(g)
			s.RegisterModel(c)

			err := s.Run(ctx)
			Expect(err).To(MatchError(dynamo.ErrInvalidState))
			Expect(err.Error()).To(ContainSubstring("grower"))
			var simErr *dynamo.SimulationError
			Expect(errors.As(err, &simErr)).To(BeTrue())
			Expect(simErr.Step).To(Equal(2))
			Expect(c.steps).To(Equal(2))
			Expect(c.fins).To(Equal(1))
		})

		It("keeps running while model states stay finite", func() {
			s, _ := sim.New(0, 1, 0.1)
			s.RegisterModel(newGrower(2))

			Expect(s.Run(ctx)).To(Succeed())
		})

		It("panics when a model reads an unbound input", func() {
			s, _ := sim.New(0, 1, 0.5)
			s.RegisterModel(newSampler())

			Expect(func() { _ = s.Run(ctx) }).To(PanicWith(BeAssignableToTypeOf(&signal.UnboundError{})))
		})
	})

	Describe("RegisterRecorder", func() {
		It("rejects duplicate names", func() {
			s, _ := sim.New(0, 1, 0.1)
			Expect(s.RegisterRecorder("r", newSampler())).To(Succeed())
			Expect(s.RegisterRecorder("r", newSampler())).To(MatchError(sim.ErrDuplicateRecorder))
			Expect(s.RecorderNames()).To(Equal([]string{"r"}))
		})

		It("returns false for an unknown name", func() {
			s, _ := sim.New(0, 1, 0.1)
			_, ok := s.Recorder("missing")
			Expect(ok).To(BeFalse())
		})
	})
})
