package integrators_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/odesolve/internal/config"
	"github.com/san-kum/odesolve/internal/dynamo"
	"github.com/san-kum/odesolve/internal/integrators"
	"github.com/san-kum/odesolve/internal/memo"
	"github.com/san-kum/odesolve/internal/vector"
)

type logistic struct{ calls int }

func (l *logistic) Derive(x, t float64) float64 {
	l.calls++
	return x * (1 - x)
}

func logisticExact(x0, t float64) float64 {
	return 1 / (1 + (1/x0-1)*math.Exp(-t))
}

type decay struct{}

func (*decay) Derive(x *vector.Vector, t float64) *vector.Vector {
	return x.Negate(vector.Mutable)
}

var _ = Describe("Adaptive controller", func() {
	var (
		cfg    config.Adaptive
		solver *integrators.Adaptive[float64]
		sys    *logistic
	)

	BeforeEach(func() {
		cfg = config.DefaultAdaptive()
		cfg.LocalTruncationError = 1e-10
		sys = &logistic{}
	})

	JustBeforeEach(func() {
		var err error
		solver, err = integrators.NewScalarAdaptive(cfg)
		Expect(err).NotTo(HaveOccurred())
	})

	Context("when the target time equals the start time", func() {
		It("returns the initial state without evaluating the system", func() {
			x, st, err := solver.SolveStats(sys, 0.25, 3, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(x).To(Equal(0.25))
			Expect(sys.calls).To(BeZero())
			Expect(st.Steps).To(BeZero())
		})
	})

	DescribeTable("matches the closed form",
		func(t float64) {
			x, st, err := solver.SolveStats(sys, 0.1, 0, t)
			Expect(err).NotTo(HaveOccurred())
			Expect(x).To(BeNumerically("~", logisticExact(0.1, t), 1e-8))
			Expect(st.Time).To(Equal(t))
		},
		Entry("short forward", 0.05),
		Entry("forward", 4.0),
		Entry("long forward", 12.0),
		Entry("backward", -2.0),
	)

	It("reports each derivative evaluation", func() {
		_, st, err := solver.SolveStats(sys, 0.1, 0, 6)
		Expect(err).NotTo(HaveOccurred())
		Expect(st.Evaluations).To(Equal(sys.calls))
		Expect(st.Evaluations % 4).To(BeZero())
	})

	Context("with a negative initial step size", func() {
		BeforeEach(func() {
			cfg.InitialStepSize = -0.1
		})

		It("takes the direction from the interval", func() {
			x, err := solver.Solve(sys, 0.1, 0, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(x).To(BeNumerically("~", logisticExact(0.1, 3), 1e-8))
		})
	})

	Context("when max tries is zero", func() {
		BeforeEach(func() {
			cfg.MaxTries = 0
		})

		It("fails with a convergence error at the start time", func() {
			_, err := solver.Solve(sys, 0.1, 2, 3)
			Expect(err).To(MatchError(dynamo.ErrNonConvergence))

			var ce *dynamo.ConvergenceError
			Expect(err).To(BeAssignableToTypeOf(ce))
			Expect(err.(*dynamo.ConvergenceError).Time).To(Equal(2.0))
		})
	})

	Context("with a step cache", func() {
		var store *memo.Store

		JustBeforeEach(func() {
			store = memo.NewStore()
			var err error
			solver, err = integrators.NewScalarAdaptive(cfg, integrators.WithCache(store))
			Expect(err).NotTo(HaveOccurred())
		})

		It("answers a repeated solve without evaluating", func() {
			first, err := solver.Solve(sys, 0.1, 0, 5)
			Expect(err).NotTo(HaveOccurred())
			calls := sys.calls

			second, err := solver.Solve(sys, 0.1, 0, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(second).To(Equal(first))
			Expect(sys.calls).To(Equal(calls))
			Expect(store.Len()).To(BeNumerically(">", 0))
		})
	})
})

var _ = Describe("Solution", func() {
	It("evaluates a vector problem at any time", func() {
		solver, err := integrators.NewVectorAdaptive(config.DefaultAdaptive())
		Expect(err).NotTo(HaveOccurred())

		x := integrators.Solution[*vector.Vector](solver, &decay{}, vector.ImmutableOf(1, -2), 0)
		for _, t := range []float64{-1, 0, 0.5, 3} {
			got, err := x(t)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.At(0)).To(BeNumerically("~", math.Exp(-t), 1e-9))
			Expect(got.At(1)).To(BeNumerically("~", -2*math.Exp(-t), 1e-9))
		}
	})

	It("works with the fixed-step driver", func() {
		solver, err := integrators.NewScalarFixed(config.Fixed{StepSize: 0.01})
		Expect(err).NotTo(HaveOccurred())

		x := integrators.Solution[float64](solver, &logistic{}, 0.5, 0)
		got, err := x(2)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(BeNumerically("~", logisticExact(0.5, 2), 1e-9))
	})
})
