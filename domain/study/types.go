// Package study holds the domain vocabulary of the simulation study: the
// four data-generating scenarios, the five experimental groups, the three
// significance tests, and the record shapes that flow between the
// simulator, the test runner, the replication driver, and the aggregator.
package study

import "fmt"

// Scenario names one of the four data-generating distribution families.
type Scenario string

const (
	ScenarioNormal  Scenario = "normal"
	ScenarioPoisson Scenario = "poisson"
	ScenarioGamma   Scenario = "gamma"
	ScenarioBeta    Scenario = "beta"
)

// Scenarios returns every scenario in canonical order.
func Scenarios() []Scenario {
	return []Scenario{ScenarioNormal, ScenarioPoisson, ScenarioGamma, ScenarioBeta}
}

// Group names one of the five experimental conditions within a scenario.
// "control" and "none" share identical generating parameters; "small",
// "medium" and "large" encode increasing effect sizes relative to control.
type Group string

const (
	GroupControl Group = "control"
	GroupNone    Group = "none"
	GroupSmall   Group = "small"
	GroupMedium  Group = "medium"
	GroupLarge   Group = "large"
)

// Groups returns every group in canonical order.
func Groups() []Group {
	return []Group{GroupControl, GroupNone, GroupSmall, GroupMedium, GroupLarge}
}

// ComparisonGroups returns the groups compared against control, in order.
func ComparisonGroups() []Group {
	return []Group{GroupNone, GroupSmall, GroupMedium, GroupLarge}
}

// TestName identifies one of the three significance tests.
type TestName string

const (
	TestWelchT  TestName = "welch_t"
	TestRankSum TestName = "rank_sum"
	TestKS      TestName = "ks"
)

// Tests returns every test in canonical order.
func Tests() []TestName {
	return []TestName{TestWelchT, TestRankSum, TestKS}
}

// Observation is one simulated value, tagged with its origin so downstream
// filtering never needs nested structures.
type Observation struct {
	Scenario Scenario `json:"scenario"`
	Group    Group    `json:"group"`
	Value    float64  `json:"value"`
}

// Dataset is the output of one simulate call: a flat collection of
// observations, immutable once created.
type Dataset struct {
	SampleSize   int           `json:"sample_size"`
	Observations []Observation `json:"observations"`
}

// Values extracts the observations for one (scenario, group) pair in draw
// order.
func (d Dataset) Values(s Scenario, g Group) []float64 {
	out := make([]float64, 0, d.SampleSize)
	for _, obs := range d.Observations {
		if obs.Scenario == s && obs.Group == g {
			out = append(out, obs.Value)
		}
	}
	return out
}

// TestResult is one normalized test outcome for a (scenario, comparison,
// test) cell.
type TestResult struct {
	Scenario   Scenario `json:"scenario"`
	Comparison Group    `json:"comparison"`
	Test       TestName `json:"statistical_test"`
	Statistic  float64  `json:"statistic"`
	PValue     float64  `json:"p_value"`
	Method     string   `json:"method"`
}

// ReplicationRecord tags a TestResult with its position in the batch; this
// is the row shape of the unified result set.
type ReplicationRecord struct {
	Replication int `json:"replication"`
	SampleSize  int `json:"sample_size"`
	TestResult
}

// CellError reports a single degenerate cell within one analyzed dataset.
// The surrounding cells are unaffected; the caller decides what to do.
type CellError struct {
	Scenario   Scenario `json:"scenario"`
	Comparison Group    `json:"comparison"`
	Test       TestName `json:"statistical_test"`
	Err        error    `json:"-"`
}

func (e CellError) Error() string {
	return fmt.Sprintf("%s control-vs-%s %s: %v", e.Scenario, e.Comparison, e.Test, e.Err)
}

func (e CellError) Unwrap() error { return e.Err }

// DegenerateCell is the persisted form of a CellError, tagged with its
// replication coordinates. These are the "missing" entries of the unified
// result set.
type DegenerateCell struct {
	Replication int      `json:"replication"`
	SampleSize  int      `json:"sample_size"`
	Scenario    Scenario `json:"scenario"`
	Comparison  Group    `json:"comparison"`
	Test        TestName `json:"statistical_test"`
	Reason      string   `json:"reason"`
}

// RejectionRateRow is one aggregate rejection-rate cell. Missing is set
// when no records contributed to the key; Rate is meaningless in that case.
type RejectionRateRow struct {
	Scenario   Scenario `json:"scenario"`
	Test       TestName `json:"statistical_test"`
	SampleSize int      `json:"sample_size"`
	Comparison Group    `json:"comparison"`
	Count      int      `json:"count"`
	Rejections int      `json:"rejections"`
	Rate       float64  `json:"rejection_rate"`
	Missing    bool     `json:"missing,omitempty"`
}

// TestSubset names the set of tests whose binary decisions are compared
// for unanimity.
type TestSubset string

const (
	SubsetAllThree     TestSubset = "all_three"
	SubsetWelchRankSum TestSubset = "welch_t+rank_sum"
	SubsetWelchKS      TestSubset = "welch_t+ks"
	SubsetRankSumKS    TestSubset = "rank_sum+ks"
)

// TestSubsets returns the four derived agreement subsets in output order.
func TestSubsets() []TestSubset {
	return []TestSubset{SubsetAllThree, SubsetWelchRankSum, SubsetWelchKS, SubsetRankSumKS}
}

// Members expands a subset into its constituent tests.
func (s TestSubset) Members() []TestName {
	switch s {
	case SubsetWelchRankSum:
		return []TestName{TestWelchT, TestRankSum}
	case SubsetWelchKS:
		return []TestName{TestWelchT, TestKS}
	case SubsetRankSumKS:
		return []TestName{TestRankSum, TestKS}
	default:
		return []TestName{TestWelchT, TestRankSum, TestKS}
	}
}

// AgreementRateRow is one aggregate agreement-rate cell.
type AgreementRateRow struct {
	Scenario   Scenario   `json:"scenario"`
	SampleSize int        `json:"sample_size"`
	Comparison Group      `json:"comparison"`
	Subset     TestSubset `json:"test_subset"`
	Count      int        `json:"count"`
	Agreements int        `json:"agreements"`
	Rate       float64    `json:"agreement_rate"`
	Missing    bool       `json:"missing,omitempty"`
}
