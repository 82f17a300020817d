package main

import (
	"encoding/json"
	"fmt"
	"io"

	"datasynth/adapters/excel"
	"datasynth/internal/config"
	"datasynth/internal/profiling"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newInspectCmd(currentConfig func() *config.Config) *cobra.Command {
	var alpha float64
	var sheet string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect [path]",
		Short: "Profile a generated dataset and check its dependency structure",
		Long: `Read a generated csv or xlsx file and report per-column statistics, pairwise
Pearson correlations with p-values, and chi-square uniformity of the underlying
draws (A, B-A, C-B, D, E).

The path defaults to the configured output (DATASYNTH_OUTPUT or data.csv).

Example: datasynth inspect data.csv --alpha 0.01`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := currentConfig().Synthesis.Output
			if len(args) == 1 {
				path = args[0]
			}

			logger := newLogger(cmd, currentConfig())
			data, err := excel.NewDataReader(path).WithSheet(sheet).WithLogger(logger).ReadTable()
			if err != nil {
				return err
			}

			report, err := profiling.NewDataProfiler(alpha).ProfileTable(data)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			renderReport(cmd.OutOrStdout(), path, report)
			return nil
		},
	}

	cmd.Flags().Float64Var(&alpha, "alpha", profiling.DefaultAlpha, "Significance level for correlation and uniformity tests")
	cmd.Flags().StringVar(&sheet, "sheet", "Sheet1", "xlsx sheet name")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")

	return cmd
}

func renderReport(w io.Writer, path string, report *profiling.Report) {
	fmt.Fprintf(w, "%s: %d rows\n\n", path, report.Rows)

	summaries := table.NewWriter()
	summaries.SetOutputMirror(w)
	summaries.SetStyle(table.StyleLight)
	summaries.AppendHeader(table.Row{"Column", "Mean", "StdDev", "Min", "Median", "Max", "Skew"})
	for _, s := range report.Summaries {
		summaries.AppendRow(table.Row{
			s.Name,
			fmt.Sprintf("%.2f", s.Mean),
			fmt.Sprintf("%.2f", s.StdDev),
			fmt.Sprintf("%.0f", s.Min),
			fmt.Sprintf("%.1f", s.Median),
			fmt.Sprintf("%.0f", s.Max),
			fmt.Sprintf("%.3f", s.Skewness),
		})
	}
	summaries.Render()
	fmt.Fprintln(w)

	pairs := table.NewWriter()
	pairs.SetOutputMirror(w)
	pairs.SetStyle(table.StyleLight)
	pairs.AppendHeader(table.Row{"Pair", "r", "p-value", "Dependent"})
	for _, p := range report.Correlations {
		pairs.AppendRow(table.Row{
			p.X + "~" + p.Y,
			fmt.Sprintf("%+.3f", p.R),
			fmt.Sprintf("%.4g", p.PValue),
			yesNo(p.Significant),
		})
	}
	pairs.Render()
	fmt.Fprintln(w)

	uniform := table.NewWriter()
	uniform.SetOutputMirror(w)
	uniform.SetStyle(table.StyleLight)
	uniform.AppendHeader(table.Row{"Draw", "Chi2", "p-value", "Out of range", "Uniform"})
	for _, u := range report.Uniformity {
		uniform.AppendRow(table.Row{
			u.Name,
			fmt.Sprintf("%.2f", u.ChiSquare),
			fmt.Sprintf("%.4g", u.PValue),
			u.OutOfRange,
			yesNo(u.Uniform),
		})
	}
	uniform.Render()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
