package profiling

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// ColumnSummary holds descriptive statistics for one column
type ColumnSummary struct {
	Name     string  `json:"name"`
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Median   float64 `json:"median"`
	Skewness float64 `json:"skewness"`
}

// UniformityResult is a chi-square goodness-of-fit test against a discrete uniform
type UniformityResult struct {
	Name      string  `json:"name"`
	Bins      int     `json:"bins"`
	ChiSquare float64 `json:"chi_square"`
	PValue    float64 `json:"p_value"`
	Uniform   bool    `json:"uniform"`
	// OutOfRange counts values outside [low, high]; any such value fails the test
	OutOfRange int `json:"out_of_range"`
}

// DistributionAnalyzer handles distribution shape analysis
type DistributionAnalyzer struct {
	Alpha float64
}

// NewDistributionAnalyzer creates a new distribution analyzer
func NewDistributionAnalyzer() *DistributionAnalyzer {
	return &DistributionAnalyzer{Alpha: DefaultAlpha}
}

// Summarize computes descriptive statistics for a named column
func (da *DistributionAnalyzer) Summarize(name string, data []float64) (ColumnSummary, error) {
	summary := ColumnSummary{Name: name, Count: len(data)}

	mean, err := stats.Mean(data)
	if err != nil {
		return summary, fmt.Errorf("mean of %s: %w", name, err)
	}
	stdDev, err := stats.StandardDeviation(data)
	if err != nil {
		return summary, fmt.Errorf("std dev of %s: %w", name, err)
	}
	min, err := stats.Min(data)
	if err != nil {
		return summary, fmt.Errorf("min of %s: %w", name, err)
	}
	max, err := stats.Max(data)
	if err != nil {
		return summary, fmt.Errorf("max of %s: %w", name, err)
	}
	median, err := stats.Median(data)
	if err != nil {
		return summary, fmt.Errorf("median of %s: %w", name, err)
	}

	summary.Mean = mean
	summary.StdDev = stdDev
	summary.Min = min
	summary.Max = max
	summary.Median = median
	summary.Skewness = calculateSkewness(data, mean, stdDev)
	return summary, nil
}

// TestUniformity bins values of [low, high] into equal-width bins and runs a
// chi-square test against equal expected counts. Values outside the range are
// counted in OutOfRange and fail the test with a zero p-value.
func (da *DistributionAnalyzer) TestUniformity(name string, data []int, low, high, bins int) (UniformityResult, error) {
	result := UniformityResult{Name: name, Bins: bins}
	span := high - low + 1
	if bins < 2 || span%bins != 0 {
		return result, fmt.Errorf("range [%d,%d] cannot be split into %d equal bins", low, high, bins)
	}
	if len(data) == 0 {
		return result, stats.EmptyInputErr
	}

	width := span / bins
	observed := make([]float64, bins)
	for _, v := range data {
		if v < low || v > high {
			result.OutOfRange++
			continue
		}
		observed[(v-low)/width]++
	}
	if result.OutOfRange > 0 {
		return result, nil
	}

	expected := float64(len(data)) / float64(bins)
	for _, o := range observed {
		d := o - expected
		result.ChiSquare += d * d / expected
	}

	chiDist := distuv.ChiSquared{K: float64(bins - 1)}
	result.PValue = 1 - chiDist.CDF(result.ChiSquare)
	result.Uniform = result.PValue >= da.Alpha
	return result, nil
}

// calculateSkewness computes sample skewness using the adjusted Fisher-Pearson coefficient
func calculateSkewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 {
		return 0
	}

	n := float64(len(data))
	sumCubedDeviations := 0.0
	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumCubedDeviations += deviation * deviation * deviation
	}

	skewness := sumCubedDeviations / n
	return skewness * math.Sqrt(n*(n-1)) / (n - 2)
}
