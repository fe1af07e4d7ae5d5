package automation

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/soilsim/internal/config"
	"github.com/san-kum/soilsim/internal/experiment"
	"github.com/san-kum/soilsim/internal/sim"
	"github.com/san-kum/soilsim/internal/soil"
)

// MonteCarloConfig perturbs the initial storage of a base configuration. Each trial
// becomes one ensemble member; its initial storage is the base value scaled by a
// uniform factor in [1-Perturbation, 1+Perturbation], limited to [soil.Floor, capacity].
type MonteCarloConfig struct {
	Base         *config.Config
	Trials       int
	Perturbation float64
	Seed         uint64
}

// MonteCarloResult holds statistics of the final day across trials.
type MonteCarloResult struct {
	Initial   []float64
	Final     []float64
	Mean      float64
	StdDev    float64
	Saturated int
	Dry       int
	Result    *sim.Result
}

// Ensemble returns the base configuration expanded to cfg.Trials members with
// perturbed initial storage. The parameters of the first base member are repeated
// for every trial.
func (cfg *MonteCarloConfig) Ensemble() (*config.Config, error) {
	if cfg.Base == nil {
		return nil, fmt.Errorf("automation: monte carlo needs a base config")
	}
	if cfg.Trials < 1 {
		return nil, fmt.Errorf("automation: trials %d, want >= 1", cfg.Trials)
	}
	if cfg.Perturbation < 0 || cfg.Perturbation > 1 {
		return nil, fmt.Errorf("automation: perturbation %g, want in [0, 1]", cfg.Perturbation)
	}

	out := cfg.Base.Clone()
	base := cfg.Base.Params.Parameters().Member(0)
	initial := cfg.Base.InitialValues().At(0)

	// Per-member capacity, ksat and beta keep the shared-exponent layout.
	p := soil.Parameters{
		Capacity: make(soil.Values, cfg.Trials),
		Ksat:     make(soil.Values, cfg.Trials),
		Beta:     make(soil.Values, cfg.Trials),
		Alpha:    soil.Scalar(base.Alpha),
		Gamma:    soil.Scalar(base.Gamma),
		Eps:      soil.Scalar(base.Eps),
	}
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	out.Initial = make(config.Values, cfg.Trials)
	for i := 0; i < cfg.Trials; i++ {
		p.Capacity[i] = base.Capacity
		p.Ksat[i] = base.Ksat
		p.Beta[i] = base.Beta
		factor := 1 + (rng.Float64()-0.5)*2*cfg.Perturbation
		out.Initial[i] = soil.Clamp(initial*factor, base.Capacity)
	}
	out.Params = config.FromParameters(p)
	return out, nil
}

// RunMonteCarlo runs every trial as one ensemble.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, reg *experiment.Registry, log logrus.FieldLogger) (*MonteCarloResult, error) {
	ens, err := cfg.Ensemble()
	if err != nil {
		return nil, err
	}
	log = orDiscard(log)

	exp := experiment.New(ens)
	if err := exp.Setup(reg, log); err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{"trials": cfg.Trials, "perturbation": cfg.Perturbation}).Info("monte carlo started")

	result, err := exp.Run(ctx)
	if err != nil {
		return nil, err
	}

	final := result.Final()
	mc := &MonteCarloResult{
		Initial: []float64(ens.Initial),
		Final:   final,
		Result:  result,
	}
	mc.Mean, mc.StdDev = stat.MeanStdDev(final, nil)
	capacity := ens.Params.Capacity
	for i, s := range final {
		switch {
		case s >= capacity[i]:
			mc.Saturated++
		case s <= soil.Floor:
			mc.Dry++
		}
	}
	return mc, nil
}
