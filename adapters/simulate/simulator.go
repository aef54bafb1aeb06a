// Package simulate draws synthetic grouped datasets from a validated
// parameter catalog. All randomness flows through an externally supplied
// source so replications are individually seedable and reproducible.
package simulate

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"simbench/domain/core"
	"simbench/domain/study"
)

// Simulate draws exactly n independent observations per (scenario, group)
// pair from the catalog's distributions, consuming src in a fixed
// scenario-then-group order. The returned dataset is flat: every row
// carries its own scenario and group tag.
func Simulate(catalog study.Catalog, n int, src rand.Source) (study.Dataset, error) {
	if n < 1 {
		return study.Dataset{}, core.NewConfigurationError("sample_size", "must be a positive integer")
	}
	if err := catalog.Validate(); err != nil {
		return study.Dataset{}, err
	}

	ds := study.Dataset{
		SampleSize:   n,
		Observations: make([]study.Observation, 0, len(study.Scenarios())*len(study.Groups())*n),
	}
	for _, scenario := range study.Scenarios() {
		for _, group := range study.Groups() {
			draw := sampler(catalog[scenario][group], src)
			for i := 0; i < n; i++ {
				ds.Observations = append(ds.Observations, study.Observation{
					Scenario: scenario,
					Group:    group,
					Value:    draw(),
				})
			}
		}
	}
	return ds, nil
}

// sampler dispatches the family tag once, outside the draw loop.
func sampler(p study.Params, src rand.Source) func() float64 {
	switch p.Family {
	case study.FamilyPoisson:
		d := distuv.Poisson{Lambda: p.Rate, Src: src}
		return d.Rand
	case study.FamilyGamma:
		d := distuv.Gamma{Alpha: p.Shape, Beta: p.Rate, Src: src}
		return d.Rand
	case study.FamilyBeta:
		d := distuv.Beta{Alpha: p.Shape1, Beta: p.Shape2, Src: src}
		return d.Rand
	default:
		d := distuv.Normal{Mu: p.Mean, Sigma: p.SD, Src: src}
		return d.Rand
	}
}
