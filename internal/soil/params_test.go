package soil_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/soilsim/internal/soil"
)

func scalarParams() soil.Parameters {
	return soil.Uniform(soil.Member{Capacity: 100, Ksat: 2, Alpha: 1, Beta: 1, Gamma: 1})
}

var _ = Describe("Parameters", func() {
	DescribeTable("resolve layouts",
		func(mutate func(*soil.Parameters), layout soil.Layout, n int) {
			p := scalarParams()
			mutate(&p)
			got, size, err := p.Resolve()
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(layout))
			Expect(size).To(Equal(n))
		},
		Entry("all scalar", func(*soil.Parameters) {}, soil.LayoutScalar, 1),
		Entry("all vector", func(p *soil.Parameters) {
			p.Capacity = soil.Values{100, 120, 80}
			p.Ksat = soil.Values{1, 2, 3}
			p.Alpha = soil.Values{0, 1, 2}
			p.Beta = soil.Values{1, 1, 1}
			p.Gamma = soil.Values{1, 0.5, 1}
			p.Eps = soil.Values{0, 0, 0.2}
		}, soil.LayoutMember, 3),
		Entry("shared exponents", func(p *soil.Parameters) {
			p.Capacity = soil.Values{100, 120}
			p.Ksat = soil.Values{1, 2}
			p.Beta = soil.Values{1, 3}
		}, soil.LayoutSharedExponents, 2),
		Entry("single-member vectors collapse to scalars", func(p *soil.Parameters) {
			p.Capacity = soil.Values{150}
		}, soil.LayoutScalar, 1),
	)

	It("rejects vectors of different lengths", func() {
		p := scalarParams()
		p.Capacity = soil.Values{100, 120}
		p.Ksat = soil.Values{1, 2, 3}
		_, _, err := p.Resolve()
		Expect(errors.Is(err, soil.ErrShapeMismatch)).To(BeTrue())

		var cfgErr *soil.ConfigError
		Expect(errors.As(err, &cfgErr)).To(BeTrue())
		Expect(cfgErr.Param).To(Equal("ksat"))
		Expect(err.Error()).To(ContainSubstring("has 3 members, expected 2"))
	})

	It("rejects mixed layouts outside the supported set", func() {
		p := scalarParams()
		p.Alpha = soil.Values{0, 1}
		_, _, err := p.Resolve()
		Expect(errors.Is(err, soil.ErrIncompatibleLayout)).To(BeTrue())
	})

	It("rejects empty parameters", func() {
		p := scalarParams()
		p.Gamma = nil
		Expect(errors.Is(p.Validate(), soil.ErrEmptyParameter)).To(BeTrue())
	})

	DescribeTable("bounds",
		func(mutate func(*soil.Parameters)) {
			p := scalarParams()
			mutate(&p)
			Expect(errors.Is(p.Validate(), soil.ErrParameterBounds)).To(BeTrue())
		},
		Entry("zero capacity", func(p *soil.Parameters) { p.Capacity = soil.Scalar(0) }),
		Entry("negative ksat", func(p *soil.Parameters) { p.Ksat = soil.Scalar(-1) }),
		Entry("negative alpha", func(p *soil.Parameters) { p.Alpha = soil.Scalar(-0.5) }),
		Entry("eps of one", func(p *soil.Parameters) { p.Eps = soil.Scalar(1) }),
		Entry("nan beta", func(p *soil.Parameters) { p.Beta = soil.Scalar(nan()) }),
	)

	It("broadcasts scalars to members", func() {
		p := scalarParams()
		p.Capacity = soil.Values{100, 200}
		p.Ksat = soil.Values{1, 2}
		p.Beta = soil.Values{1, 2}
		members := p.Members(2)
		Expect(members[1].Capacity).To(Equal(200.0))
		Expect(members[1].Alpha).To(Equal(1.0))
		Expect(members[0].Gamma).To(Equal(members[1].Gamma))
	})

	It("clamps storage into bounds", func() {
		Expect(soil.Clamp(-3, 100)).To(Equal(soil.Floor))
		Expect(soil.Clamp(130, 100)).To(Equal(100.0))
		Expect(soil.Clamp(42, 100)).To(Equal(42.0))
	})
})
