// Package app wires the simulator and test runner into the replication
// driver and computes the study's aggregate tables.
package app

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"simbench/adapters/simulate"
	"simbench/adapters/stats"
	"simbench/domain/core"
	"simbench/domain/study"
)

// RunPlan is the full parameter set of one batch: everything that
// determines the unified result set bit-for-bit.
type RunPlan struct {
	Replications int           `json:"n_replications"`
	SampleSizes  []int         `json:"sample_sizes"`
	Catalog      study.Catalog `json:"catalog"`
	Seed         uint64        `json:"seed"`
	Workers      int           `json:"-"` // execution detail, not identity
}

// Validate fails fast before any simulation begins.
func (p RunPlan) Validate() error {
	if p.Replications < 1 {
		return core.NewConfigurationError("n_replications", "must be a positive integer")
	}
	if len(p.SampleSizes) == 0 {
		return core.NewConfigurationError("sample_sizes", "must not be empty")
	}
	seen := make(map[int]bool, len(p.SampleSizes))
	for _, n := range p.SampleSizes {
		if n < 1 {
			return core.NewConfigurationError("sample_sizes", fmt.Sprintf("size %d is not positive", n))
		}
		if seen[n] {
			return core.NewConfigurationError("sample_sizes", fmt.Sprintf("size %d repeated", n))
		}
		seen[n] = true
	}
	return p.Catalog.Validate()
}

// RunResult is the unified result set plus the degenerate-cell census.
type RunResult struct {
	RunID      core.RunID                `json:"run_id"`
	Records    []study.ReplicationRecord `json:"records"`
	Degenerate []study.DegenerateCell    `json:"degenerate,omitempty"`
	RuntimeMs  int64                     `json:"runtime_ms"`
}

// DegenerateCount reports how many cells failed across the whole batch.
func (r *RunResult) DegenerateCount() int {
	return len(r.Degenerate)
}

// Driver repeats {simulate, analyze} over every (sample size, replication)
// pair and collects the tagged results.
type Driver struct {
	runner *stats.Runner
}

func NewDriver() *Driver {
	return &Driver{runner: stats.NewRunner()}
}

// partial is one worker's private accumulator. Workers never share mutable
// state; partials are concatenated in worker order after the pool drains.
type partial struct {
	records    []study.ReplicationRecord
	degenerate []study.DegenerateCell
}

// Run executes the batch. Each (sample size, replication) pair draws from
// its own PCG sub-stream derived from (seed, stream id), so the mapping of
// replication to dataset is a pure function of the plan: the result set is
// bit-identical across runs and across any worker count. A degenerate cell
// is recorded and counted, never fatal; the batch can only be stopped
// between replications via ctx.
func (d *Driver) Run(ctx context.Context, plan RunPlan) (*RunResult, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	workers := plan.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	total := len(plan.SampleSizes) * plan.Replications
	if workers > total {
		workers = total
	}

	start := time.Now()
	log.Printf("[Driver] starting batch: %d replications x %v sample sizes, seed=%d, workers=%d",
		plan.Replications, plan.SampleSizes, plan.Seed, workers)

	partials := make([]partial, workers)
	chunk := (total + workers - 1) / workers

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := min(lo+chunk, total)
		acc := &partials[w]
		g.Go(func() error {
			for t := lo; t < hi; t++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				sizeIdx := t / plan.Replications
				rep := t%plan.Replications + 1
				if err := d.replicate(plan, sizeIdx, rep, acc); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &RunResult{RunID: core.NewRunID()}
	for i := range partials {
		result.Records = append(result.Records, partials[i].records...)
		result.Degenerate = append(result.Degenerate, partials[i].degenerate...)
	}
	result.RuntimeMs = time.Since(start).Milliseconds()

	log.Printf("[Driver] batch done: %d records, %d degenerate cells in %dms",
		len(result.Records), len(result.Degenerate), result.RuntimeMs)
	return result, nil
}

// replicate runs one simulate+analyze unit and appends tagged rows to the
// worker's accumulator.
func (d *Driver) replicate(plan RunPlan, sizeIdx, rep int, acc *partial) error {
	n := plan.SampleSizes[sizeIdx]
	src := rand.NewPCG(plan.Seed, streamID(sizeIdx, rep))

	ds, err := simulate.Simulate(plan.Catalog, n, src)
	if err != nil {
		// Only configuration defects reach here, and the plan was already
		// validated; treat this as fatal rather than a missing cell.
		return err
	}

	results, cellErrs := d.runner.Analyze(ds)
	for _, res := range results {
		acc.records = append(acc.records, study.ReplicationRecord{
			Replication: rep,
			SampleSize:  n,
			TestResult:  res,
		})
	}
	for _, ce := range cellErrs {
		acc.degenerate = append(acc.degenerate, study.DegenerateCell{
			Replication: rep,
			SampleSize:  n,
			Scenario:    ce.Scenario,
			Comparison:  ce.Comparison,
			Test:        ce.Test,
			Reason:      ce.Err.Error(),
		})
	}
	return nil
}

// streamID maps a (sample size index, replication) pair to a distinct PCG
// stream. Replication indices stay below 2^32 by construction.
func streamID(sizeIdx, rep int) uint64 {
	return uint64(sizeIdx+1)<<32 | uint64(rep)
}
