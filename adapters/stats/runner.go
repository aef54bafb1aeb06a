// Package stats runs the three significance tests of the study on each
// control-vs-group comparison of a simulated dataset. The test numerics
// come from go-moremath and gonum; this package only orchestrates them and
// normalizes their outputs into the common TestResult shape.
package stats

import (
	moremath "github.com/aclements/go-moremath/stats"

	"simbench/domain/core"
	"simbench/domain/study"
)

// Method labels attached to every result row. The assumption choices are
// deliberate: Welch (unequal variances) rather than pooled, two-sided
// alternatives everywhere, exact rank-sum only when the sample permits.
const (
	MethodWelchT  = "Welch two-sample t-test, two-sided, unequal variances"
	MethodRankSum = "Wilcoxon-Mann-Whitney rank-sum, two-sided, midranks for ties"
	MethodKS      = "Two-sample Kolmogorov-Smirnov, two-sided, asymptotic p-value"
)

// Runner applies the three tests to every (scenario, comparison) cell of a
// dataset. It holds no state and is safe for concurrent use.
type Runner struct{}

func NewRunner() *Runner {
	return &Runner{}
}

// Analyze produces one TestResult per non-degenerate (scenario, comparison,
// test) cell, 48 in total when nothing is degenerate. Degenerate cells are
// returned separately; they never abort the remaining cells. Analyze is
// deterministic: it consumes no randomness.
func (r *Runner) Analyze(ds study.Dataset) ([]study.TestResult, []study.CellError) {
	results := make([]study.TestResult, 0, len(study.Scenarios())*len(study.ComparisonGroups())*len(study.Tests()))
	var degenerate []study.CellError

	for _, scenario := range study.Scenarios() {
		control := ds.Values(scenario, study.GroupControl)
		for _, comparison := range study.ComparisonGroups() {
			sample := ds.Values(scenario, comparison)
			for _, test := range study.Tests() {
				result, err := runCell(scenario, comparison, test, control, sample)
				if err != nil {
					degenerate = append(degenerate, study.CellError{
						Scenario:   scenario,
						Comparison: comparison,
						Test:       test,
						Err:        err,
					})
					continue
				}
				results = append(results, result)
			}
		}
	}
	return results, degenerate
}

func runCell(scenario study.Scenario, comparison study.Group, test study.TestName, control, sample []float64) (study.TestResult, error) {
	if len(control) < 2 || len(sample) < 2 {
		return study.TestResult{}, core.NewDegenerateSampleError(
			string(scenario), string(comparison), string(test), errSampleTooSmall)
	}

	var (
		statistic float64
		pValue    float64
		method    string
		err       error
	)
	switch test {
	case study.TestRankSum:
		statistic, pValue, err = rankSum(control, sample)
		method = MethodRankSum
	case study.TestKS:
		statistic, pValue, err = kolmogorovSmirnov(control, sample)
		method = MethodKS
	default:
		statistic, pValue, err = welchT(control, sample)
		method = MethodWelchT
	}
	if err != nil {
		return study.TestResult{}, core.NewDegenerateSampleError(
			string(scenario), string(comparison), string(test), err)
	}

	return study.TestResult{
		Scenario:   scenario,
		Comparison: comparison,
		Test:       test,
		Statistic:  statistic,
		PValue:     pValue,
		Method:     method,
	}, nil
}

// welchT runs the two-sided Welch t-test. Zero variance in both groups
// makes the statistic undefined and surfaces as an error from the library.
func welchT(x, y []float64) (float64, float64, error) {
	res, err := moremath.TwoSampleWelchTTest(
		moremath.Sample{Xs: x}, moremath.Sample{Xs: y}, moremath.LocationDiffers)
	if err != nil {
		return 0, 0, err
	}
	return res.T, res.P, nil
}

// rankSum runs the two-sided Mann-Whitney U test. go-moremath uses the
// exact U distribution for small tie-free samples and the tie-corrected
// normal approximation otherwise; identical samples are an error.
func rankSum(x, y []float64) (float64, float64, error) {
	res, err := moremath.MannWhitneyUTest(x, y, moremath.LocationDiffers)
	if err != nil {
		return 0, 0, err
	}
	return res.U, res.P, nil
}
