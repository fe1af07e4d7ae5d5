package soil_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/soilsim/internal/soil"
)

func nan() float64 { return math.NaN() }

func sharedParams(alpha, gamma, eps float64) soil.Parameters {
	return soil.Parameters{
		Capacity: soil.Values{100, 80, 150, 60},
		Ksat:     soil.Values{2, 0, 5, 1},
		Alpha:    soil.Scalar(alpha),
		Beta:     soil.Values{1, 2, 0, 3.5},
		Gamma:    soil.Scalar(gamma),
		Eps:      soil.Scalar(eps),
	}
}

func expand(p soil.Parameters, n int) soil.Parameters {
	out := soil.Parameters{}
	for _, m := range p.Members(n) {
		out.Capacity = append(out.Capacity, m.Capacity)
		out.Ksat = append(out.Ksat, m.Ksat)
		out.Alpha = append(out.Alpha, m.Alpha)
		out.Beta = append(out.Beta, m.Beta)
		out.Gamma = append(out.Gamma, m.Gamma)
		out.Eps = append(out.Eps, m.Eps)
	}
	return out
}

var _ = Describe("Kernel", func() {
	DescribeTable("dispatches on layout and exponents",
		func(p soil.Parameters, name string, size int) {
			k, err := soil.NewKernel(p)
			Expect(err).NotTo(HaveOccurred())
			Expect(k.Name()).To(Equal(name))
			Expect(k.Size()).To(Equal(size))
		},
		Entry("scalar", scalarParams(), "uniform", 1),
		Entry("shared alpha 0", sharedParams(0, 1, 0), "shared-alpha0", 4),
		Entry("shared alpha 1", sharedParams(1, 0.5, 0.2), "shared-alpha1", 4),
		Entry("shared general", sharedParams(1.7, 0, 0), "shared", 4),
		Entry("per member", expand(sharedParams(1.7, 1, 0), 4), "member", 4),
	)

	DescribeTable("specialised kernels agree with per-member models",
		func(alpha, gamma, eps float64) {
			shared := sharedParams(alpha, gamma, eps)
			fast, err := soil.NewKernel(shared)
			Expect(err).NotTo(HaveOccurred())
			ref, err := soil.NewKernel(expand(shared, 4))
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < 4; i++ {
				for _, f := range fractions(25) {
					s := f * fast.Capacity(i)
					Expect(fast.Rate(i, s, 6, 3)).To(Equal(ref.Rate(i, s, 6, 3)))
					Expect(fast.Rate(i, s, 0, 3)).To(Equal(ref.Rate(i, s, 0, 3)))
				}
			}
		},
		Entry("alpha 0 gamma 1", 0.0, 1.0, 0.0),
		Entry("alpha 0 gamma general", 0.0, 0.6, 0.0),
		Entry("alpha 1 gamma 1", 1.0, 1.0, 0.3),
		Entry("alpha 1 gamma 0", 1.0, 0.0, 0.0),
		Entry("general", 2.5, 1.4, 0.1),
	)

	It("fails fast on inconsistent shapes", func() {
		p := sharedParams(1, 1, 0)
		p.Beta = soil.Values{1, 2}
		_, err := soil.NewKernel(p)
		Expect(err).To(MatchError(soil.ErrShapeMismatch))
	})

	It("broadcasts one member", func() {
		k := soil.Broadcast(soil.Member{Capacity: 10, Ksat: 1, Alpha: 1, Beta: 1, Gamma: 1}, 5)
		Expect(k.Size()).To(Equal(5))
		Expect(k.Rate(0, 5, 1, 1)).To(Equal(k.Rate(4, 5, 1, 1)))
	})
})
