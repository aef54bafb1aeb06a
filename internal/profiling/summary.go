// Package profiling produces descriptive summaries of a simulated dataset,
// for sanity-checking catalog parameters before committing to a long batch.
package profiling

import (
	"github.com/montanaflynn/stats"

	"simbench/domain/study"
)

// GroupSummary describes one (scenario, group) sample.
type GroupSummary struct {
	Scenario study.Scenario `json:"scenario"`
	Group    study.Group    `json:"group"`
	N        int            `json:"n"`
	Mean     float64        `json:"mean"`
	StdDev   float64        `json:"std_dev"`
	Min      float64        `json:"min"`
	Q25      float64        `json:"q25"`
	Median   float64        `json:"median"`
	Q75      float64        `json:"q75"`
	Max      float64        `json:"max"`
}

// Summarize computes one GroupSummary per (scenario, group) pair present
// in the dataset, in canonical order.
func Summarize(ds study.Dataset) ([]GroupSummary, error) {
	summaries := make([]GroupSummary, 0, len(study.Scenarios())*len(study.Groups()))
	for _, scenario := range study.Scenarios() {
		for _, group := range study.Groups() {
			values := ds.Values(scenario, group)
			if len(values) == 0 {
				continue
			}
			summary, err := summarizeGroup(scenario, group, values)
			if err != nil {
				return nil, err
			}
			summaries = append(summaries, summary)
		}
	}
	return summaries, nil
}

func summarizeGroup(scenario study.Scenario, group study.Group, values []float64) (GroupSummary, error) {
	s := GroupSummary{Scenario: scenario, Group: group, N: len(values)}

	var err error
	if s.Mean, err = stats.Mean(values); err != nil {
		return s, err
	}
	// A single observation has no sample deviation; leave it at zero.
	if len(values) > 1 {
		if s.StdDev, err = stats.StandardDeviationSample(values); err != nil {
			return s, err
		}
	}
	if s.Min, err = stats.Min(values); err != nil {
		return s, err
	}
	if s.Max, err = stats.Max(values); err != nil {
		return s, err
	}
	if s.Median, err = stats.Median(values); err != nil {
		return s, err
	}
	if s.Q25, err = stats.Percentile(values, 25); err != nil {
		return s, err
	}
	if s.Q75, err = stats.Percentile(values, 75); err != nil {
		return s, err
	}
	return s, nil
}
