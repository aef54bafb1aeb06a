package app

import (
	"fmt"
	"sort"

	"simbench/domain/core"
	"simbench/domain/study"
)

// rejectionKey groups records for the rejection-rate table.
type rejectionKey struct {
	scenario   study.Scenario
	test       study.TestName
	sampleSize int
	comparison study.Group
}

// agreementKey groups replications for the agreement-rate table.
type agreementKey struct {
	scenario   study.Scenario
	sampleSize int
	comparison study.Group
}

// RejectionRates computes, per (scenario, test, sample size, comparison),
// the fraction of records with p <= alpha. Every key of the requested cross
// product is emitted; a key with zero contributing records (all cells
// degenerate) is flagged missing rather than reported as zero. Pure
// function of its inputs.
func RejectionRates(records []study.ReplicationRecord, alpha float64) ([]study.RejectionRateRow, error) {
	if alpha <= 0 || alpha >= 1 {
		return nil, core.NewConfigurationError("alpha", fmt.Sprintf("must be in (0, 1), got %v", alpha))
	}

	counts := make(map[rejectionKey]*study.RejectionRateRow)
	for _, rec := range records {
		key := rejectionKey{rec.Scenario, rec.Test, rec.SampleSize, rec.Comparison}
		row, ok := counts[key]
		if !ok {
			row = &study.RejectionRateRow{
				Scenario:   rec.Scenario,
				Test:       rec.Test,
				SampleSize: rec.SampleSize,
				Comparison: rec.Comparison,
			}
			counts[key] = row
		}
		row.Count++
		if rec.PValue <= alpha {
			row.Rejections++
		}
	}

	sizes := sampleSizesOf(records)
	rows := make([]study.RejectionRateRow, 0, len(counts))
	for _, scenario := range study.Scenarios() {
		for _, test := range study.Tests() {
			for _, size := range sizes {
				for _, comparison := range study.ComparisonGroups() {
					key := rejectionKey{scenario, test, size, comparison}
					if row, ok := counts[key]; ok {
						row.Rate = float64(row.Rejections) / float64(row.Count)
						rows = append(rows, *row)
						continue
					}
					rows = append(rows, study.RejectionRateRow{
						Scenario:   scenario,
						Test:       test,
						SampleSize: size,
						Comparison: comparison,
						Missing:    true,
					})
				}
			}
		}
	}
	return rows, nil
}

// AgreementRates computes, per (scenario, sample size, comparison), the
// fraction of replications on which a subset of tests reaches a unanimous
// reject / fail-to-reject decision at alpha. Four subsets per key: all
// three tests and each pair. A replication contributes to a subset only
// when every member test produced a p-value (no degenerate member cell).
func AgreementRates(records []study.ReplicationRecord, alpha float64) ([]study.AgreementRateRow, error) {
	if alpha <= 0 || alpha >= 1 {
		return nil, core.NewConfigurationError("alpha", fmt.Sprintf("must be in (0, 1), got %v", alpha))
	}

	// decisions[key][replication][test] = reject?
	decisions := make(map[agreementKey]map[int]map[study.TestName]bool)
	for _, rec := range records {
		key := agreementKey{rec.Scenario, rec.SampleSize, rec.Comparison}
		reps, ok := decisions[key]
		if !ok {
			reps = make(map[int]map[study.TestName]bool)
			decisions[key] = reps
		}
		cells, ok := reps[rec.Replication]
		if !ok {
			cells = make(map[study.TestName]bool, len(study.Tests()))
			reps[rec.Replication] = cells
		}
		cells[rec.Test] = rec.PValue <= alpha
	}

	sizes := sampleSizesOf(records)
	var rows []study.AgreementRateRow
	for _, scenario := range study.Scenarios() {
		for _, size := range sizes {
			for _, comparison := range study.ComparisonGroups() {
				reps := decisions[agreementKey{scenario, size, comparison}]
				for _, subset := range study.TestSubsets() {
					row := study.AgreementRateRow{
						Scenario:   scenario,
						SampleSize: size,
						Comparison: comparison,
						Subset:     subset,
					}
					for _, cells := range reps {
						unanimous, ok := subsetUnanimous(cells, subset.Members())
						if !ok {
							continue
						}
						row.Count++
						if unanimous {
							row.Agreements++
						}
					}
					if row.Count == 0 {
						row.Missing = true
					} else {
						row.Rate = float64(row.Agreements) / float64(row.Count)
					}
					rows = append(rows, row)
				}
			}
		}
	}
	return rows, nil
}

// subsetUnanimous reports whether the member tests all reached the same
// decision. ok is false when a member cell is missing for the replication.
func subsetUnanimous(cells map[study.TestName]bool, members []study.TestName) (unanimous, ok bool) {
	rejects := 0
	for _, test := range members {
		decision, present := cells[test]
		if !present {
			return false, false
		}
		if decision {
			rejects++
		}
	}
	return rejects == 0 || rejects == len(members), true
}

// sampleSizesOf returns the distinct sample sizes present, ascending.
func sampleSizesOf(records []study.ReplicationRecord) []int {
	seen := make(map[int]bool)
	var sizes []int
	for _, rec := range records {
		if !seen[rec.SampleSize] {
			seen[rec.SampleSize] = true
			sizes = append(sizes, rec.SampleSize)
		}
	}
	sort.Ints(sizes)
	return sizes
}
