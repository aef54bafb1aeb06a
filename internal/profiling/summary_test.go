package profiling

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simbench/domain/study"
)

func datasetOf(scenario study.Scenario, group study.Group, values []float64) study.Dataset {
	ds := study.Dataset{SampleSize: len(values)}
	for _, v := range values {
		ds.Observations = append(ds.Observations, study.Observation{
			Scenario: scenario, Group: group, Value: v,
		})
	}
	return ds
}

func TestSummarizeKnownValues(t *testing.T) {
	ds := datasetOf(study.ScenarioNormal, study.GroupControl, []float64{1, 2, 3, 4, 5})

	summaries, err := Summarize(ds)
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	s := summaries[0]
	assert.Equal(t, study.ScenarioNormal, s.Scenario)
	assert.Equal(t, study.GroupControl, s.Group)
	assert.Equal(t, 5, s.N)
	assert.Equal(t, 3.0, s.Mean)
	assert.Equal(t, 3.0, s.Median)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 5.0, s.Max)
	assert.Equal(t, 2.0, s.Q25)
	assert.Equal(t, 4.0, s.Q75)
	assert.InDelta(t, math.Sqrt(2.5), s.StdDev, 1e-12)
}

func TestSummarizeSingleObservation(t *testing.T) {
	ds := datasetOf(study.ScenarioBeta, study.GroupLarge, []float64{0.4})

	summaries, err := Summarize(ds)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 1, summaries[0].N)
	assert.Zero(t, summaries[0].StdDev)
	assert.Equal(t, 0.4, summaries[0].Mean)
}

func TestSummarizeCanonicalOrder(t *testing.T) {
	var ds study.Dataset
	for _, scenario := range study.Scenarios() {
		for _, group := range study.Groups() {
			ds.Observations = append(ds.Observations,
				study.Observation{Scenario: scenario, Group: group, Value: 1},
				study.Observation{Scenario: scenario, Group: group, Value: 2})
		}
	}

	summaries, err := Summarize(ds)
	require.NoError(t, err)
	require.Len(t, summaries, 20)

	i := 0
	for _, scenario := range study.Scenarios() {
		for _, group := range study.Groups() {
			assert.Equal(t, scenario, summaries[i].Scenario)
			assert.Equal(t, group, summaries[i].Group)
			i++
		}
	}
}

func TestSummarizeSkipsAbsentPairs(t *testing.T) {
	ds := datasetOf(study.ScenarioGamma, study.GroupSmall, []float64{1, 2})
	summaries, err := Summarize(ds)
	require.NoError(t, err)
	assert.Len(t, summaries, 1)
}
