package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// OpenRunLedger connects to Postgres and makes sure the run table exists
func OpenRunLedger(ctx context.Context, dsn string) (*RunRepository, *sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to ledger database: %w", err)
	}

	repo := NewRunRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return repo, db, nil
}
