package study

import (
	"fmt"

	"simbench/domain/core"
)

// Family tags the distribution family of a parameter set.
type Family string

const (
	FamilyNormal  Family = "normal"
	FamilyPoisson Family = "poisson"
	FamilyGamma   Family = "gamma"
	FamilyBeta    Family = "beta"
)

// family returns the distribution family generating a scenario's data.
func (s Scenario) family() Family {
	switch s {
	case ScenarioPoisson:
		return FamilyPoisson
	case ScenarioGamma:
		return FamilyGamma
	case ScenarioBeta:
		return FamilyBeta
	default:
		return FamilyNormal
	}
}

// Params is a tagged variant carrying family-specific distribution
// parameters. Only the fields of the tagged family are meaningful.
type Params struct {
	Family Family  `json:"family"`
	Mean   float64 `json:"mean,omitempty"`   // normal
	SD     float64 `json:"sd,omitempty"`     // normal
	Rate   float64 `json:"rate,omitempty"`   // poisson, gamma
	Shape  float64 `json:"shape,omitempty"`  // gamma
	Shape1 float64 `json:"shape1,omitempty"` // beta
	Shape2 float64 `json:"shape2,omitempty"` // beta
}

func Normal(mean, sd float64) Params   { return Params{Family: FamilyNormal, Mean: mean, SD: sd} }
func Poisson(rate float64) Params      { return Params{Family: FamilyPoisson, Rate: rate} }
func Gamma(shape, rate float64) Params { return Params{Family: FamilyGamma, Shape: shape, Rate: rate} }
func Beta(shape1, shape2 float64) Params {
	return Params{Family: FamilyBeta, Shape1: shape1, Shape2: shape2}
}

func (p Params) validate() error {
	switch p.Family {
	case FamilyNormal:
		if p.SD <= 0 {
			return fmt.Errorf("normal sd must be > 0, got %v", p.SD)
		}
	case FamilyPoisson:
		if p.Rate <= 0 {
			return fmt.Errorf("poisson rate must be > 0, got %v", p.Rate)
		}
	case FamilyGamma:
		if p.Shape <= 0 || p.Rate <= 0 {
			return fmt.Errorf("gamma shape and rate must be > 0, got shape=%v rate=%v", p.Shape, p.Rate)
		}
	case FamilyBeta:
		if p.Shape1 <= 0 || p.Shape2 <= 0 {
			return fmt.Errorf("beta shape1 and shape2 must be > 0, got shape1=%v shape2=%v", p.Shape1, p.Shape2)
		}
	default:
		return fmt.Errorf("unknown family %q", p.Family)
	}
	return nil
}

// Catalog maps scenario and group to generating parameters. It is plain
// data: construct it, validate it once, then treat it as immutable.
type Catalog map[Scenario]map[Group]Params

// Validate fails fast on any catalog defect. The false-positive-rate
// computation downstream depends on "none" sharing the control parameters
// exactly, so that invariant is checked here rather than statistically.
func (c Catalog) Validate() error {
	for _, scenario := range Scenarios() {
		groups, ok := c[scenario]
		if !ok {
			return core.NewConfigurationError(string(scenario), "scenario missing from catalog")
		}
		for _, group := range Groups() {
			params, ok := groups[group]
			if !ok {
				return core.NewConfigurationError(fmt.Sprintf("%s/%s", scenario, group), "group missing from catalog")
			}
			if params.Family != scenario.family() {
				return core.NewConfigurationError(fmt.Sprintf("%s/%s", scenario, group),
					fmt.Sprintf("family %q does not match scenario", params.Family))
			}
			if err := params.validate(); err != nil {
				return core.NewConfigurationError(fmt.Sprintf("%s/%s", scenario, group), err.Error())
			}
		}
		if groups[GroupNone] != groups[GroupControl] {
			return core.NewConfigurationError(string(scenario), `"none" parameters must equal "control" (true-null condition)`)
		}
	}
	return nil
}

// DefaultCatalog returns the reference parameterization: within each
// scenario the small/medium/large groups shift the distribution mean
// upward by a growing margin while control and none coincide.
func DefaultCatalog() Catalog {
	return Catalog{
		ScenarioNormal: {
			GroupControl: Normal(20, 2),
			GroupNone:    Normal(20, 2),
			GroupSmall:   Normal(21, 2),
			GroupMedium:  Normal(24, 2),
			GroupLarge:   Normal(28, 2),
		},
		ScenarioPoisson: {
			GroupControl: Poisson(10),
			GroupNone:    Poisson(10),
			GroupSmall:   Poisson(11),
			GroupMedium:  Poisson(13),
			GroupLarge:   Poisson(16),
		},
		ScenarioGamma: {
			GroupControl: Gamma(4, 1),
			GroupNone:    Gamma(4, 1),
			GroupSmall:   Gamma(5, 1),
			GroupMedium:  Gamma(7, 1),
			GroupLarge:   Gamma(10, 1),
		},
		ScenarioBeta: {
			GroupControl: Beta(2, 5),
			GroupNone:    Beta(2, 5),
			GroupSmall:   Beta(2.5, 5),
			GroupMedium:  Beta(3.5, 5),
			GroupLarge:   Beta(5, 5),
		},
	}
}
