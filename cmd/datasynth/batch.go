package main

import (
	"fmt"
	"strings"

	"datasynth/adapters/rng"
	"datasynth/app"
	"datasynth/internal/config"

	"github.com/spf13/cobra"
)

func newBatchCmd(currentConfig func() *config.Config) *cobra.Command {
	var (
		dir         string
		seedList    string
		rows        int
		algorithm   string
		format      string
		manifest    bool
		parallelism int
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Generate one dataset per seed into a directory",
		Long: `Generate replicate datasets, one file per seed, named data_seed<N>.<format>.

Example: datasynth batch --dir out --seeds 0-9,42 --parallel 4`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := currentConfig()
			seeds, err := app.ParseSeeds(seedList)
			if err != nil {
				return err
			}

			req := app.BatchRequest{
				Dir:           dir,
				Seeds:         seeds,
				Rows:          cfg.Synthesis.Rows,
				Algorithm:     cfg.Synthesis.Algorithm,
				Format:        cfg.Synthesis.Format,
				WriteManifest: cfg.Synthesis.Manifest,
				Parallelism:   parallelism,
			}
			flags := cmd.Flags()
			if flags.Changed("rows") {
				req.Rows = rows
			}
			if flags.Changed("algorithm") {
				req.Algorithm = strings.ToLower(algorithm)
			}
			if flags.Changed("format") {
				req.Format = strings.ToLower(format)
			}
			if flags.Changed("manifest") {
				req.WriteManifest = manifest
			}

			svc, closeLedger, err := newService(cmd, cfg)
			if err != nil {
				return err
			}
			defer closeLedger()

			results, err := svc.RunBatch(cmd.Context(), req)
			if err != nil {
				return err
			}
			for _, res := range results {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", res.Manifest.OutputHash, res.Manifest.Output)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&dir, "dir", ".", "Directory to write datasets into")
	flags.StringVar(&seedList, "seeds", "", "Seeds to generate, e.g. 0-9,42")
	flags.IntVar(&rows, "rows", 100, "Number of rows per dataset")
	flags.StringVar(&algorithm, "algorithm", rng.DefaultAlgorithm, "Random stream: mt19937 or go (any int64 seed)")
	flags.StringVar(&format, "format", "", "Output format: csv or xlsx (default csv)")
	flags.BoolVar(&manifest, "manifest", false, "Write a manifest next to each dataset")
	flags.IntVar(&parallelism, "parallel", app.DefaultParallelism, "Maximum datasets generated at once")
	_ = cmd.MarkFlagRequired("seeds")

	return cmd
}
