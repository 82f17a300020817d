package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"datasynth/domain/core"
	"datasynth/domain/run"

	"github.com/jmoiron/sqlx"
)

const runSchema = `CREATE TABLE IF NOT EXISTS synthesis_runs (
	run_id        TEXT PRIMARY KEY,
	output        TEXT NOT NULL,
	columns       TEXT NOT NULL,
	output_sha256 TEXT NOT NULL,
	seed          BIGINT NOT NULL,
	algorithm     TEXT NOT NULL,
	row_count     INTEGER NOT NULL,
	format        TEXT NOT NULL,
	code_version  TEXT NOT NULL,
	fingerprint   TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS synthesis_runs_fingerprint_idx ON synthesis_runs (fingerprint)`

const runColumns = `run_id, output, columns, output_sha256, seed, algorithm, row_count, format, code_version, fingerprint, created_at`

type runRow struct {
	RunID        string    `db:"run_id"`
	Output       string    `db:"output"`
	Columns      string    `db:"columns"`
	OutputSHA256 string    `db:"output_sha256"`
	Seed         int64     `db:"seed"`
	Algorithm    string    `db:"algorithm"`
	RowCount     int       `db:"row_count"`
	Format       string    `db:"format"`
	CodeVersion  string    `db:"code_version"`
	Fingerprint  string    `db:"fingerprint"`
	CreatedAt    time.Time `db:"created_at"`
}

// RunRepository stores run manifests in the synthesis_runs table
type RunRepository struct {
	db *sqlx.DB
}

// NewRunRepository creates a run repository
func NewRunRepository(db *sqlx.DB) *RunRepository {
	return &RunRepository{db: db}
}

// EnsureSchema creates the synthesis_runs table if it does not exist
func (r *RunRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, runSchema); err != nil {
		return fmt.Errorf("failed to create synthesis_runs: %w", err)
	}
	return nil
}

// RecordRun inserts a manifest; run IDs are never overwritten
func (r *RunRepository) RecordRun(ctx context.Context, manifest *run.Manifest) error {
	if err := manifest.Validate(); err != nil {
		return err
	}

	query := `INSERT INTO synthesis_runs (` + runColumns + `) VALUES (
		:run_id, :output, :columns, :output_sha256, :seed, :algorithm, :row_count,
		:format, :code_version, :fingerprint, :created_at
	)`
	if _, err := r.db.NamedExecContext(ctx, query, toRow(manifest)); err != nil {
		return fmt.Errorf("failed to record run %s: %w", manifest.RunID, err)
	}
	return nil
}

// GetRun retrieves a manifest by run ID
func (r *RunRepository) GetRun(ctx context.Context, runID core.RunID) (*run.Manifest, error) {
	query := `SELECT ` + runColumns + ` FROM synthesis_runs WHERE run_id = $1`

	var row runRow
	if err := r.db.GetContext(ctx, &row, query, runID.String()); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", core.ErrRunNotFound, runID)
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return row.toManifest(), nil
}

// ListRuns returns up to limit manifests, newest first
func (r *RunRepository) ListRuns(ctx context.Context, limit int) ([]*run.Manifest, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + runColumns + ` FROM synthesis_runs ORDER BY created_at DESC LIMIT $1`

	var rows []runRow
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	manifests := make([]*run.Manifest, len(rows))
	for i := range rows {
		manifests[i] = rows[i].toManifest()
	}
	return manifests, nil
}

func toRow(m *run.Manifest) runRow {
	return runRow{
		RunID:        m.RunID.String(),
		Output:       m.Output,
		Columns:      strings.Join(m.Columns, ","),
		OutputSHA256: m.OutputHash.String(),
		Seed:         m.Fingerprint.Seed,
		Algorithm:    m.Fingerprint.Algorithm,
		RowCount:     m.Fingerprint.Rows,
		Format:       m.Fingerprint.Format,
		CodeVersion:  m.Fingerprint.CodeVersion,
		Fingerprint:  m.Fingerprint.Fingerprint.String(),
		CreatedAt:    m.CreatedAt,
	}
}

func (row runRow) toManifest() *run.Manifest {
	var columns []string
	if row.Columns != "" {
		columns = strings.Split(row.Columns, ",")
	}
	return &run.Manifest{
		RunID:      core.RunID(row.RunID),
		Output:     row.Output,
		Columns:    columns,
		OutputHash: core.Hash(row.OutputSHA256),
		Fingerprint: run.RunFingerprint{
			Seed:        row.Seed,
			Algorithm:   row.Algorithm,
			Rows:        row.RowCount,
			Format:      row.Format,
			CodeVersion: row.CodeVersion,
			Fingerprint: core.Hash(row.Fingerprint),
		},
		CreatedAt: row.CreatedAt,
	}
}
