package ports

import (
	"context"

	"datasynth/domain/core"
	"datasynth/domain/run"
)

// RunLedgerPort provides append-only storage of finished run manifests
type RunLedgerPort interface {
	RecordRun(ctx context.Context, manifest *run.Manifest) error
	GetRun(ctx context.Context, runID core.RunID) (*run.Manifest, error)
	// ListRuns returns the most recent runs first
	ListRuns(ctx context.Context, limit int) ([]*run.Manifest, error)
}
