package soil_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/soilsim/internal/soil"
)

func fractions(n int) []float64 {
	out := make([]float64, n+1)
	for i := range out {
		out[i] = float64(i) / float64(n)
	}
	return out
}

var _ = Describe("Model", func() {
	base := soil.Member{Capacity: 100, Ksat: 2, Alpha: 1.5, Beta: 2.5, Gamma: 0.7, Eps: 0}

	Describe("infiltration", func() {
		It("matches the power formula on the alpha = 1 fast path", func() {
			m := base
			m.Alpha = 1
			model := soil.NewModel(m)
			for _, f := range fractions(50) {
				s := f * m.Capacity
				want := 3.0 * math.Min(1, math.Pow(1-f, 1))
				Expect(model.Infiltration(s, 3)).To(BeNumerically("~", want, 1e-12))
			}
		})

		It("is continuous across the alpha = 1 fast path", func() {
			fast, m := base, base
			fast.Alpha = 1
			m.Alpha = 1 + 1e-12
			a, b := soil.NewModel(fast), soil.NewModel(m)
			for _, f := range fractions(20) {
				s := f * base.Capacity
				Expect(a.Infiltration(s, 5)).To(BeNumerically("~", b.Infiltration(s, 5), 1e-9))
			}
		})

		It("takes all precipitation when alpha = 0", func() {
			m := base
			m.Alpha = 0
			model := soil.NewModel(m)
			Expect(model.Infiltration(99.9, 7)).To(Equal(7.0))
			Expect(model.Slope(50, 7, 0)).To(BeNumerically("<", 0))
		})

		It("never exceeds precipitation and is zero without it", func() {
			m := base
			m.Eps = 0.4
			model := soil.NewModel(m)
			for _, f := range fractions(40) {
				Expect(model.Infiltration(f*m.Capacity, 4)).To(BeNumerically("<=", 4))
			}
			Expect(model.Infiltration(10, 0)).To(BeZero())
		})

		It("saturates below the infiltration-capacity fraction", func() {
			m := base
			m.Eps = 0.4
			model := soil.NewModel(m)
			Expect(model.Infiltration(30, 4)).To(Equal(4.0))
			Expect(model.Infiltration(39, 4)).To(Equal(4.0))
			Expect(model.Infiltration(70, 4)).To(BeNumerically("<", 4))
		})

		It("is non-increasing in storage", func() {
			model := soil.NewModel(base)
			prev := math.Inf(1)
			for _, f := range fractions(100) {
				v := model.Infiltration(f*base.Capacity, 2)
				Expect(v).To(BeNumerically("<=", prev))
				prev = v
			}
		})
	})

	Describe("drainage", func() {
		It("is zero without conductivity or with beta = 0", func() {
			m := base
			m.Ksat = 0
			model := soil.NewModel(m)
			Expect(model.Drainage(80)).To(BeZero())

			m = base
			m.Beta = 0
			model = soil.NewModel(m)
			Expect(model.Drainage(80)).To(BeZero())
		})

		It("is linear when beta = 1", func() {
			m := base
			m.Beta = 1
			model := soil.NewModel(m)
			Expect(model.Drainage(25)).To(Equal(-2 * 0.25))
		})

		It("grows with ksat and shrinks with beta at a fixed fraction", func() {
			low, high := base, base
			high.Ksat = 4
			a, b := soil.NewModel(low), soil.NewModel(high)
			Expect(b.Drainage(60)).To(BeNumerically("<", a.Drainage(60)))

			steep := base
			steep.Beta = 4
			c := soil.NewModel(steep)
			Expect(math.Abs(c.Drainage(60))).To(BeNumerically("<=", math.Abs(a.Drainage(60))))
		})
	})

	Describe("evapotranspiration", func() {
		It("follows the gamma fast paths", func() {
			m := base
			m.Gamma = 0
			zero := soil.NewModel(m)
			Expect(zero.Evapotranspiration(50, 3)).To(BeZero())
			m.Gamma = 1
			one := soil.NewModel(m)
			Expect(one.Evapotranspiration(50, 3)).To(Equal(-1.5))
		})

		It("is non-increasing in storage", func() {
			model := soil.NewModel(base)
			prev := math.Inf(1)
			for _, f := range fractions(100) {
				v := model.Evapotranspiration(f*base.Capacity, 3) + model.Drainage(f*base.Capacity)
				Expect(v).To(BeNumerically("<=", prev))
				prev = v
			}
		})
	})

	Describe("slope", func() {
		DescribeTable("matches a central difference",
			func(m soil.Member, s float64) {
				model := soil.NewModel(m)
				h := 1e-5
				fd := (model.Rate(s+h, 3, 2) - model.Rate(s-h, 3, 2)) / (2 * h)
				Expect(model.Slope(s, 3, 2)).To(BeNumerically("~", fd, 1e-6))
			},
			Entry("general exponents", base, 42.0),
			Entry("linear", soil.Member{Capacity: 100, Ksat: 2, Alpha: 1, Beta: 1, Gamma: 1}, 42.0),
			Entry("alpha = 2", soil.Member{Capacity: 50, Ksat: 1, Alpha: 2, Beta: 3, Gamma: 0.5}, 20.0),
			Entry("eps above threshold", soil.Member{Capacity: 100, Ksat: 2, Alpha: 1.3, Beta: 2, Gamma: 1, Eps: 0.3}, 70.0),
			Entry("eps below threshold", soil.Member{Capacity: 100, Ksat: 2, Alpha: 1.3, Beta: 2, Gamma: 1, Eps: 0.3}, 10.0),
		)

		It("is never positive", func() {
			model := soil.NewModel(base)
			for _, f := range fractions(50)[1:] {
				Expect(model.Slope(f*base.Capacity, 5, 5)).To(BeNumerically("<=", 0))
			}
		})
	})

	It("sums its terms", func() {
		model := soil.NewModel(base)
		terms := model.Terms(35, 4, 2)
		Expect(terms.Total()).To(Equal(model.Rate(35, 4, 2)))
		Expect(terms.Drainage).To(BeNumerically("<", 0))
		Expect(terms.Evapotranspiration).To(BeNumerically("<", 0))
	})
})
