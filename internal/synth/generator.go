package synth

import (
	"context"
	"fmt"

	"datasynth/adapters/rng"
	"datasynth/domain/core"
	"datasynth/domain/dataset"
	apperrors "datasynth/internal/errors"
	"datasynth/ports"
)

// Bounds of every base draw, inclusive.
const (
	DrawLow  = 1
	DrawHigh = 100
)

// Config controls one synthesis run
type Config struct {
	Rows      int
	Seed      int64
	Algorithm string
}

func DefaultConfig() Config {
	return Config{
		Rows:      100,
		Seed:      0,
		Algorithm: rng.DefaultAlgorithm,
	}
}

// Generate seeds a fresh stream from cfg and draws the dataset from it.
func Generate(cfg Config) (*dataset.Table, error) {
	if cfg.Rows <= 0 {
		return nil, invalidRows(cfg.Rows)
	}
	stream, err := rng.NewRNGAdapter().SeededStream(context.Background(), cfg.Algorithm, cfg.Seed)
	if err != nil {
		return nil, apperrors.GenerationError("failed to initialize random stream", err)
	}
	return GenerateDataset(stream, cfg.Rows)
}

// GenerateDataset draws five columns from stream:
//
//	A = U(1,100)
//	B = A + U(1,100)
//	C = B + U(1,100)
//	D = U(1,100)
//	E = U(1,100)
//
// Each column is drawn in full before the next, in the order listed. The
// order is part of the output contract: all columns share one stream, so
// reordering the draws changes every later value.
func GenerateDataset(stream ports.RandomStream, rows int) (*dataset.Table, error) {
	if stream == nil {
		return nil, apperrors.GenerationError("nil random stream", core.ErrGeneration)
	}
	if rows <= 0 {
		return nil, invalidRows(rows)
	}

	a := drawColumn(stream, rows)
	b := addColumns(a, drawColumn(stream, rows))
	c := addColumns(b, drawColumn(stream, rows))
	d := drawColumn(stream, rows)
	e := drawColumn(stream, rows)

	table, err := dataset.NewTable(
		dataset.Column{Name: dataset.ColumnA, Values: a},
		dataset.Column{Name: dataset.ColumnB, Values: b},
		dataset.Column{Name: dataset.ColumnC, Values: c},
		dataset.Column{Name: dataset.ColumnD, Values: d},
		dataset.Column{Name: dataset.ColumnE, Values: e},
	)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.InternalError(err.Error()), "failed to assemble dataset")
	}
	return table, nil
}

func drawColumn(stream ports.RandomStream, rows int) []int {
	out := make([]int, rows)
	for i := range out {
		out[i] = stream.UniformInt(DrawLow, DrawHigh)
	}
	return out
}

func addColumns(base, noise []int) []int {
	out := make([]int, len(base))
	for i := range base {
		out[i] = base[i] + noise[i]
	}
	return out
}

func invalidRows(rows int) error {
	return apperrors.GenerationError(fmt.Sprintf("got %d rows", rows), core.ErrInvalidRowCount)
}
