package sim_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/blocksim/internal/dynamo"
	"github.com/san-kum/blocksim/internal/signal"
	"github.com/san-kum/blocksim/internal/sim"
	"github.com/san-kum/blocksim/internal/subsystem"
)

var _ = Describe("Validate", func() {
	It("accepts a well-ordered chain", func() {
		s, _ := sim.New(0, 1, 0.1)
		a := newCounter("a", nil)
		b := newFollower("b", nil)
		Expect(dynamo.Connect(a, []string{"a"}, b, []string{"in"})).To(Succeed())
		s.RegisterModel(a)
		s.RegisterModel(b)

		r := s.Validate()
		Expect(r.OK()).To(BeTrue())
		Expect(r.Err()).NotTo(HaveOccurred())
		Expect(r.Cycles).To(BeEmpty())
		Expect(r.OrderViolations).To(BeEmpty())
		Expect(r.String()).To(Equal("wiring ok"))
	})

	It("lists unbound inputs as an error", func() {
		s, _ := sim.New(0, 1, 0.1)
		s.RegisterModel(newFollower("lonely", nil))

		r := s.Validate()
		Expect(r.OK()).To(BeFalse())
		Expect(r.Unbound).To(HaveLen(1))
		Expect(r.Unbound[0].Node.Name).To(Equal("lonely"))
		Expect(r.Unbound[0].Slots).To(Equal([]string{"in"}))
		Expect(r.Err()).To(MatchError(ContainSubstring("lonely")))
	})

	It("flags a consumer registered before its producer", func() {
		s, _ := sim.New(0, 1, 0.1)
		a := newCounter("a", nil)
		b := newFollower("b", nil)
		Expect(dynamo.Connect(a, []string{"a"}, b, []string{"in"})).To(Succeed())
		s.RegisterModel(b)
		s.RegisterModel(a)

		r := s.Validate()
		Expect(r.OK()).To(BeTrue())
		Expect(r.OrderViolations).To(HaveLen(1))
		Expect(r.OrderViolations[0].Producer.Name).To(Equal("a"))
		Expect(r.OrderViolations[0].Consumer.Name).To(Equal("b"))
		Expect(r.OrderViolations[0].Signal).To(Equal("in"))
	})

	It("finds feedback cycles", func() {
		s, _ := sim.New(0, 1, 0.1)
		x := newFollower("x", nil)
		y := newFollower("y", nil)
		Expect(dynamo.Connect(x, []string{"x"}, y, []string{"in"})).To(Succeed())
		Expect(dynamo.Connect(y, []string{"y"}, x, []string{"in"})).To(Succeed())
		s.RegisterModel(x)
		s.RegisterModel(y)

		r := s.Validate()
		Expect(r.Cycles).To(HaveLen(1))
		names := []string{}
		for _, n := range r.Cycles[0] {
			names = append(names, n.Name)
		}
		Expect(names).To(Equal([]string{"x", "y", "x"}))
		Expect(r.OrderViolations).To(HaveLen(1))
		Expect(r.String()).To(ContainSubstring("cycle: #0 x -> #1 y -> #0 x"))
	})

	It("looks inside subsystems for unbound inputs", func() {
		s, _ := sim.New(0, 1, 0.1)
		src := newCounter("src", nil)

		sub, err := subsystem.New([]signal.Def{signal.D("u", "-")}, []signal.Def{signal.D("y", "-")}, 0.1)
		Expect(err).NotTo(HaveOccurred())
		sub.SetName("plant")
		inner := newFollower("inner", nil)
		sub.Register(inner)
		Expect(sub.ConnectOutbus(inner, []string{"inner"}, []string{"y"})).To(Succeed())
		Expect(dynamo.Connect(src, []string{"src"}, sub, []string{"u"})).To(Succeed())

		s.RegisterModel(src)
		s.RegisterModel(sub)

		r := s.Validate()
		Expect(r.OK()).To(BeFalse())
		Expect(r.Unbound).To(HaveLen(1))
		Expect(r.Unbound[0].Node.Name).To(Equal("plant/inner"))
		Expect(r.Unbound[0].Node.Index).To(Equal(1))
		Expect(r.Unbound[0].Slots).To(Equal([]string{"in"}))
		Expect(r.Err()).To(MatchError(ContainSubstring("plant/inner")))

		Expect(sub.ConnectInbus(inner, []string{"u"}, []string{"in"})).To(Succeed())
		Expect(s.Validate().OK()).To(BeTrue())
	})

	It("does not run any model", func() {
		s, _ := sim.New(0, 1, 0.1)
		c := newCounter("c", nil)
		s.RegisterModel(c)
		s.Validate()
		Expect(c.inits).To(BeZero())
		Expect(c.steps).To(BeZero())
	})
})
