package main

import (
	"fmt"
	"strings"

	"datasynth/adapters/rng"
	"datasynth/app"
	"datasynth/internal"
	"datasynth/internal/config"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	envFile   string
	ledgerDSN string
	output    string
	seed      int64
	rows      int
	algorithm string
	format    string
	manifest  bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	var cfg *config.Config

	rootCmd := &cobra.Command{
		Use:   "datasynth",
		Short: "Generate a reproducible five-column dependency dataset",
		Long: `Generate a 5-column integer dataset with a fixed dependency chain and write it
as comma-separated integers (or xlsx).

  A = U(1,100)
  B = A + U(1,100)
  C = B + U(1,100)
  D = U(1,100)
  E = U(1,100)

Defaults come from DATASYNTH_* environment variables (optionally loaded from .env);
flags override them.

Example: datasynth --out data.csv --seed 0 --rows 100`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(opts.envFile); err != nil {
				return err
			}
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("ledger-dsn") {
				loaded.Ledger.DSN = opts.ledgerDSN
			}
			cfg = loaded
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			applyFlags(cmd, opts, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runGenerate(cmd, cfg)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&opts.output, "out", "o", "data.csv", "Output file path")
	flags.Int64Var(&opts.seed, "seed", 0, "Random seed for deterministic output")
	flags.IntVar(&opts.rows, "rows", 100, "Number of rows to generate")
	flags.StringVar(&opts.algorithm, "algorithm", rng.DefaultAlgorithm, "Random stream: mt19937 (numpy-compatible) or go")
	flags.StringVar(&opts.format, "format", "", "Output format: csv or xlsx (default inferred from --out)")
	flags.BoolVar(&opts.manifest, "manifest", false, "Also write <out>.manifest.json")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Environment file to load before reading DATASYNTH_* variables")
	rootCmd.PersistentFlags().StringVar(&opts.ledgerDSN, "ledger-dsn", "", "Postgres DSN to record runs in (overrides DATASYNTH_LEDGER_DSN)")

	currentConfig := func() *config.Config { return cfg }
	rootCmd.AddCommand(
		newInspectCmd(currentConfig),
		newBatchCmd(currentConfig),
		newVerifyCmd(currentConfig),
		newServeCmd(currentConfig),
		newRunsCmd(currentConfig),
	)

	return rootCmd
}

// applyFlags lets explicitly set flags override environment configuration
func applyFlags(cmd *cobra.Command, opts *rootOptions, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("out") {
		cfg.Synthesis.Output = opts.output
	}
	if flags.Changed("seed") {
		cfg.Synthesis.Seed = opts.seed
	}
	if flags.Changed("rows") {
		cfg.Synthesis.Rows = opts.rows
	}
	if flags.Changed("algorithm") {
		cfg.Synthesis.Algorithm = strings.ToLower(opts.algorithm)
	}
	if flags.Changed("format") {
		cfg.Synthesis.Format = strings.ToLower(opts.format)
	}
	if flags.Changed("manifest") {
		cfg.Synthesis.Manifest = opts.manifest
	}
}

func newLogger(cmd *cobra.Command, cfg *config.Config) *internal.Logger {
	return internal.NewLoggerWithOutput(internal.ParseLogLevel(cfg.Log.Level), cmd.ErrOrStderr())
}

// newService builds the synthesis service, attaching the run ledger when a DSN is configured
func newService(cmd *cobra.Command, cfg *config.Config) (*app.SynthesisService, func(), error) {
	logger := newLogger(cmd, cfg)
	svc := app.NewSynthesisService(rng.NewRNGAdapter(), logger)
	if cfg.Ledger.DSN == "" {
		return svc, func() {}, nil
	}

	ledger, closeLedger, err := openLedger(cmd, cfg)
	if err != nil {
		return nil, nil, err
	}
	return svc.WithLedger(ledger), closeLedger, nil
}

func runGenerate(cmd *cobra.Command, cfg *config.Config) error {
	svc, closeLedger, err := newService(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeLedger()

	s := cfg.Synthesis
	res, err := svc.Run(cmd.Context(), app.SynthesisRequest{
		Output:        s.Output,
		Seed:          s.Seed,
		Rows:          s.Rows,
		Algorithm:     s.Algorithm,
		Format:        s.Format,
		WriteManifest: s.Manifest,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Dataset written: %s (%s)\n", s.Output, res.Format)
	fmt.Fprintf(out, "Total Columns: %d | Total Rows: %d\n", res.Table.Width(), res.Table.Len())
	if res.ManifestPath != "" {
		fmt.Fprintf(out, "Manifest: %s\n", res.ManifestPath)
	}
	return nil
}
