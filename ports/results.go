// Package ports declares the interfaces the engine needs from the outside
// world, so adapters stay swappable.
package ports

import (
	"context"

	"simbench/domain/core"
	"simbench/domain/study"
)

// ResultSink receives a completed run for downstream consumers (the
// presentation layer, a database, a spreadsheet). The engine never reads
// back through this interface; sinks are write-only collaborators.
type ResultSink interface {
	SaveRun(ctx context.Context, runID core.RunID,
		records []study.ReplicationRecord,
		rejection []study.RejectionRateRow,
		agreement []study.AgreementRateRow) error
}
