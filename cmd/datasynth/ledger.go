package main

import (
	"encoding/json"
	"fmt"

	"datasynth/adapters/postgres"
	"datasynth/domain/core"
	"datasynth/internal/config"
	"datasynth/internal/errors"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func openLedger(cmd *cobra.Command, cfg *config.Config) (*postgres.RunRepository, func(), error) {
	if cfg.Ledger.DSN == "" {
		return nil, nil, errors.ConfigInvalid(fmt.Sprintf("no ledger configured: set %s or --ledger-dsn", config.EnvLedgerDSN))
	}
	repo, db, err := postgres.OpenRunLedger(cmd.Context(), cfg.Ledger.DSN)
	if err != nil {
		return nil, nil, errors.IOError("failed to open run ledger", err)
	}
	return repo, func() { db.Close() }, nil
}

func newRunsCmd(currentConfig func() *config.Config) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "List runs recorded in the ledger, or show one run's manifest",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ledger, closeLedger, err := openLedger(cmd, currentConfig())
			if err != nil {
				return err
			}
			defer closeLedger()

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				runID, err := core.ParseRunID(args[0])
				if err != nil {
					return errors.WithCode(errors.CodeInvalidInput, err)
				}
				manifest, err := ledger.GetRun(cmd.Context(), runID)
				if err != nil {
					return errors.IOError("failed to load run", err)
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(manifest)
			}

			manifests, err := ledger.ListRuns(cmd.Context(), limit)
			if err != nil {
				return errors.IOError("failed to list runs", err)
			}

			t := table.NewWriter()
			t.SetOutputMirror(out)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Run", "Created", "Output", "Seed", "Algorithm", "Rows", "SHA256"})
			for _, m := range manifests {
				t.AppendRow(table.Row{
					m.RunID.String(),
					m.CreatedAt.Format("2006-01-02 15:04:05"),
					m.Output,
					m.Fingerprint.Seed,
					m.Fingerprint.Algorithm,
					m.Fingerprint.Rows,
					shortHash(m.OutputHash),
				})
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list")
	return cmd
}

func shortHash(h core.Hash) string {
	s := h.String()
	if len(s) > 12 {
		return s[:12]
	}
	return s
}
