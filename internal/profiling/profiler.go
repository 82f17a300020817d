package profiling

import (
	"fmt"

	"datasynth/domain/dataset"
)

// UniformityBins is the number of equal-width bins used for draw-level uniformity checks
const UniformityBins = 10

// Report is the profile of a whole table
type Report struct {
	Rows         int                `json:"rows"`
	Summaries    []ColumnSummary    `json:"summaries"`
	Correlations []PairCorrelation  `json:"correlations"`
	Uniformity   []UniformityResult `json:"uniformity"`
}

// Correlation finds the pair result for two columns in either order
func (r *Report) Correlation(x, y string) (PairCorrelation, bool) {
	for _, pair := range r.Correlations {
		if (pair.X == x && pair.Y == y) || (pair.X == y && pair.Y == x) {
			return pair, true
		}
	}
	return PairCorrelation{}, false
}

// DataProfiler profiles a synthesized table: per-column summaries, pairwise
// correlation and uniformity of the underlying draws
type DataProfiler struct {
	distribution *DistributionAnalyzer
	correlation  *CorrelationAnalyzer
}

// NewDataProfiler creates a profiler testing at alpha; alpha <= 0 selects DefaultAlpha
func NewDataProfiler(alpha float64) *DataProfiler {
	if alpha <= 0 {
		alpha = DefaultAlpha
	}
	return &DataProfiler{
		distribution: &DistributionAnalyzer{Alpha: alpha},
		correlation:  &CorrelationAnalyzer{Alpha: alpha},
	}
}

// ProfileTable analyzes every column and every column pair
func (dp *DataProfiler) ProfileTable(table *dataset.Table) (*Report, error) {
	if table == nil {
		return nil, fmt.Errorf("nil table")
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}

	report := &Report{Rows: table.Len()}
	floats := make([][]float64, table.Width())
	for i, col := range table.Columns {
		floats[i] = col.Floats()
		summary, err := dp.distribution.Summarize(col.Name, floats[i])
		if err != nil {
			return nil, err
		}
		report.Summaries = append(report.Summaries, summary)
	}

	for i := 0; i < table.Width(); i++ {
		for j := i + 1; j < table.Width(); j++ {
			pair, err := dp.correlation.Correlate(table.Columns[i].Name, floats[i], table.Columns[j].Name, floats[j])
			if err != nil {
				return nil, err
			}
			report.Correlations = append(report.Correlations, pair)
		}
	}

	draws, err := drawColumns(table)
	if err != nil {
		return nil, err
	}
	for _, d := range draws {
		result, err := dp.distribution.TestUniformity(d.name, d.values, 1, 100, UniformityBins)
		if err != nil {
			return nil, err
		}
		report.Uniformity = append(report.Uniformity, result)
	}

	return report, nil
}

type namedDraws struct {
	name   string
	values []int
}

// drawColumns recovers the five independent U(1,100) draws behind a table
func drawColumns(table *dataset.Table) ([]namedDraws, error) {
	get := func(name string) ([]int, error) {
		col, ok := table.Column(name)
		if !ok {
			return nil, fmt.Errorf("column %s not found", name)
		}
		return col.Values, nil
	}
	a, err := get(dataset.ColumnA)
	if err != nil {
		return nil, err
	}
	b, err := get(dataset.ColumnB)
	if err != nil {
		return nil, err
	}
	c, err := get(dataset.ColumnC)
	if err != nil {
		return nil, err
	}
	d, err := get(dataset.ColumnD)
	if err != nil {
		return nil, err
	}
	e, err := get(dataset.ColumnE)
	if err != nil {
		return nil, err
	}

	return []namedDraws{
		{name: dataset.ColumnA, values: a},
		{name: dataset.ColumnB + "-" + dataset.ColumnA, values: diff(b, a)},
		{name: dataset.ColumnC + "-" + dataset.ColumnB, values: diff(c, b)},
		{name: dataset.ColumnD, values: d},
		{name: dataset.ColumnE, values: e},
	}, nil
}

func diff(x, y []int) []int {
	out := make([]int, len(x))
	for i := range x {
		out[i] = x[i] - y[i]
	}
	return out
}
