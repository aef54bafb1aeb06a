package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simbench/domain/core"
	"simbench/domain/study"
)

func record(rep, size int, scenario study.Scenario, comparison study.Group,
	test study.TestName, p float64) study.ReplicationRecord {
	return study.ReplicationRecord{
		Replication: rep,
		SampleSize:  size,
		TestResult: study.TestResult{
			Scenario:   scenario,
			Comparison: comparison,
			Test:       test,
			PValue:     p,
		},
	}
}

func findRejection(t *testing.T, rows []study.RejectionRateRow,
	scenario study.Scenario, test study.TestName, size int, comparison study.Group) study.RejectionRateRow {
	t.Helper()
	for _, row := range rows {
		if row.Scenario == scenario && row.Test == test &&
			row.SampleSize == size && row.Comparison == comparison {
			return row
		}
	}
	t.Fatalf("no rejection row for %s/%s/%d/%s", scenario, test, size, comparison)
	return study.RejectionRateRow{}
}

func findAgreement(t *testing.T, rows []study.AgreementRateRow,
	scenario study.Scenario, size int, comparison study.Group, subset study.TestSubset) study.AgreementRateRow {
	t.Helper()
	for _, row := range rows {
		if row.Scenario == scenario && row.SampleSize == size &&
			row.Comparison == comparison && row.Subset == subset {
			return row
		}
	}
	t.Fatalf("no agreement row for %s/%d/%s/%s", scenario, size, comparison, subset)
	return study.AgreementRateRow{}
}

func TestRejectionRatesCountsAndThreshold(t *testing.T) {
	records := []study.ReplicationRecord{
		record(1, 25, study.ScenarioNormal, study.GroupSmall, study.TestWelchT, 0.01),
		record(2, 25, study.ScenarioNormal, study.GroupSmall, study.TestWelchT, 0.05),
		record(3, 25, study.ScenarioNormal, study.GroupSmall, study.TestWelchT, 0.051),
		record(4, 25, study.ScenarioNormal, study.GroupSmall, study.TestWelchT, 0.9),
	}

	rows, err := RejectionRates(records, 0.05)
	require.NoError(t, err)
	// Full cross product over the one observed sample size.
	assert.Len(t, rows, 4*3*1*4)

	row := findRejection(t, rows, study.ScenarioNormal, study.TestWelchT, 25, study.GroupSmall)
	assert.False(t, row.Missing)
	assert.Equal(t, 4, row.Count)
	assert.Equal(t, 2, row.Rejections, "p = alpha counts as a rejection, p just above does not")
	assert.Equal(t, 0.5, row.Rate)

	// A key with no contributing records is emitted as missing, not zero.
	empty := findRejection(t, rows, study.ScenarioGamma, study.TestKS, 25, study.GroupLarge)
	assert.True(t, empty.Missing)
	assert.Zero(t, empty.Count)
}

func TestRejectionRatesOrderedBySampleSize(t *testing.T) {
	records := []study.ReplicationRecord{
		record(1, 100, study.ScenarioNormal, study.GroupNone, study.TestWelchT, 0.5),
		record(1, 25, study.ScenarioNormal, study.GroupNone, study.TestWelchT, 0.5),
	}
	rows, err := RejectionRates(records, 0.05)
	require.NoError(t, err)
	require.Len(t, rows, 4*3*2*4)

	var sizes []int
	for _, row := range rows {
		if row.Scenario == study.ScenarioNormal && row.Test == study.TestWelchT &&
			row.Comparison == study.GroupNone {
			sizes = append(sizes, row.SampleSize)
		}
	}
	assert.Equal(t, []int{25, 100}, sizes)
}

func TestRejectionRatesRejectsBadAlpha(t *testing.T) {
	for _, alpha := range []float64{0, 1, -0.2, 1.7} {
		_, err := RejectionRates(nil, alpha)
		require.Error(t, err, "alpha=%v", alpha)
		assert.True(t, core.IsConfigurationError(err))
	}
	_, err := AgreementRates(nil, 0)
	require.Error(t, err)
	assert.True(t, core.IsConfigurationError(err))
}

func TestAgreementRatesSubsetArithmetic(t *testing.T) {
	const (
		s    = study.ScenarioPoisson
		g    = study.GroupMedium
		size = 50
	)
	records := []study.ReplicationRecord{
		// rep 1: all three reject.
		record(1, size, s, g, study.TestWelchT, 0.01),
		record(1, size, s, g, study.TestRankSum, 0.02),
		record(1, size, s, g, study.TestKS, 0.03),
		// rep 2: KS disagrees with the location tests.
		record(2, size, s, g, study.TestWelchT, 0.01),
		record(2, size, s, g, study.TestRankSum, 0.02),
		record(2, size, s, g, study.TestKS, 0.8),
		// rep 3: all three fail to reject.
		record(3, size, s, g, study.TestWelchT, 0.4),
		record(3, size, s, g, study.TestRankSum, 0.5),
		record(3, size, s, g, study.TestKS, 0.6),
	}

	rows, err := AgreementRates(records, 0.05)
	require.NoError(t, err)
	assert.Len(t, rows, 4*1*4*4)

	wantRates := map[study.TestSubset]float64{
		study.SubsetAllThree:     2.0 / 3.0,
		study.SubsetWelchRankSum: 1.0,
		study.SubsetWelchKS:      2.0 / 3.0,
		study.SubsetRankSumKS:    2.0 / 3.0,
	}
	for subset, want := range wantRates {
		row := findAgreement(t, rows, s, size, g, subset)
		assert.False(t, row.Missing, string(subset))
		assert.Equal(t, 3, row.Count, string(subset))
		assert.InDelta(t, want, row.Rate, 1e-15, string(subset))
	}
}

func TestAgreementRatesSkipsIncompleteReplications(t *testing.T) {
	const (
		s    = study.ScenarioBeta
		g    = study.GroupSmall
		size = 25
	)
	records := []study.ReplicationRecord{
		// rep 1 is complete and unanimous.
		record(1, size, s, g, study.TestWelchT, 0.01),
		record(1, size, s, g, study.TestRankSum, 0.01),
		record(1, size, s, g, study.TestKS, 0.01),
		// rep 2 lost its KS cell.
		record(2, size, s, g, study.TestWelchT, 0.01),
		record(2, size, s, g, study.TestRankSum, 0.9),
	}

	rows, err := AgreementRates(records, 0.05)
	require.NoError(t, err)

	all := findAgreement(t, rows, s, size, g, study.SubsetAllThree)
	assert.Equal(t, 1, all.Count, "replication without a KS decision cannot contribute")
	assert.Equal(t, 1.0, all.Rate)

	pair := findAgreement(t, rows, s, size, g, study.SubsetWelchRankSum)
	assert.Equal(t, 2, pair.Count)
	assert.Equal(t, 0.5, pair.Rate, "rep 1 unanimous, rep 2 split")

	withKS := findAgreement(t, rows, s, size, g, study.SubsetWelchKS)
	assert.Equal(t, 1, withKS.Count)
}

func TestAgreementRatesMissingKeys(t *testing.T) {
	records := []study.ReplicationRecord{
		record(1, 25, study.ScenarioNormal, study.GroupNone, study.TestWelchT, 0.5),
	}
	rows, err := AgreementRates(records, 0.05)
	require.NoError(t, err)

	// The lone record cannot complete any subset, so even its own key is
	// missing, as is every other key of the cross product.
	for _, row := range rows {
		assert.True(t, row.Missing)
		assert.Zero(t, row.Count)
	}
}
