package profiling

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultAlpha is the significance level used when none is configured
const DefaultAlpha = 0.05

// PairCorrelation is the Pearson correlation of two columns
type PairCorrelation struct {
	X           string  `json:"x"`
	Y           string  `json:"y"`
	R           float64 `json:"r"`
	PValue      float64 `json:"p_value"`
	Significant bool    `json:"significant"`
}

// CorrelationAnalyzer tests pairwise linear dependence
type CorrelationAnalyzer struct {
	Alpha float64
}

// NewCorrelationAnalyzer creates an analyzer at DefaultAlpha
func NewCorrelationAnalyzer() *CorrelationAnalyzer {
	return &CorrelationAnalyzer{Alpha: DefaultAlpha}
}

// Correlate computes Pearson r and a two-sided p-value from Student's t with n-2
// degrees of freedom. A constant column has r = 0 and p = 1.
func (ca *CorrelationAnalyzer) Correlate(xName string, x []float64, yName string, y []float64) (PairCorrelation, error) {
	pair := PairCorrelation{X: xName, Y: yName}
	if len(x) != len(y) {
		return pair, fmt.Errorf("%s has %d values, %s has %d: %w", xName, len(x), yName, len(y), stats.SizeErr)
	}
	if len(x) < 3 {
		return pair, fmt.Errorf("correlation of %s and %s needs at least 3 rows, got %d", xName, yName, len(x))
	}

	r, err := stats.Correlation(x, y)
	if err != nil {
		return pair, fmt.Errorf("correlation of %s and %s: %w", xName, yName, err)
	}
	pair.R = r
	pair.PValue = pearsonPValue(r, len(x))
	pair.Significant = pair.PValue < ca.Alpha
	return pair, nil
}

func pearsonPValue(r float64, n int) float64 {
	if math.Abs(r) >= 1 {
		return 0
	}
	df := float64(n - 2)
	t := r * math.Sqrt(df/(1-r*r))
	studentT := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * (1 - studentT.CDF(math.Abs(t)))
	return math.Min(1, math.Max(0, p))
}
