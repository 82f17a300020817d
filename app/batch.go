package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"datasynth/internal/errors"
	"datasynth/internal/synth"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const (
	DefaultParallelism = 4
	MaxBatchSeeds      = 10000
)

// BatchRequest generates one dataset per seed into Dir
type BatchRequest struct {
	Dir           string
	Seeds         []int64
	Rows          int
	Algorithm     string
	Format        string // csv when empty
	WriteManifest bool
	Parallelism   int
}

// BatchOutputPath names the file a batch writes for seed
func BatchOutputPath(dir string, seed int64, format string) string {
	return filepath.Join(dir, fmt.Sprintf("data_seed%d.%s", seed, format))
}

// RunBatch runs one synthesis per seed, at most Parallelism at a time.
// Results are in seed order. The first failure cancels runs not yet started.
func (s *SynthesisService) RunBatch(ctx context.Context, req BatchRequest) ([]*SynthesisResult, error) {
	if len(req.Seeds) == 0 {
		return nil, errors.InvalidInput("batch needs at least one seed")
	}
	if len(req.Seeds) > MaxBatchSeeds {
		return nil, errors.InvalidInput(fmt.Sprintf("batch of %d seeds exceeds limit of %d", len(req.Seeds), MaxBatchSeeds))
	}
	seen := make(map[int64]bool, len(req.Seeds))
	for _, seed := range req.Seeds {
		if seen[seed] {
			return nil, errors.InvalidInput(fmt.Sprintf("duplicate seed %d", seed))
		}
		seen[seed] = true
	}

	format, err := synth.InferFormat("", req.Format)
	if err != nil {
		return nil, err
	}
	// Each algorithm has its own seed domain; reject the batch before any file is written
	for _, seed := range req.Seeds {
		if _, err := s.rngPort.SeededStream(ctx, req.Algorithm, seed); err != nil {
			return nil, errors.Wrapf(errors.GenerationError("failed to initialize random stream", err), "seed %d", seed)
		}
	}
	parallelism := req.Parallelism
	if parallelism <= 0 {
		parallelism = DefaultParallelism
	}

	s.logger.Info("Starting batch of %d datasets in %s (parallelism %d)", len(req.Seeds), req.Dir, parallelism)

	results := make([]*SynthesisResult, len(req.Seeds))
	sem := semaphore.NewWeighted(int64(parallelism))
	g, gctx := errgroup.WithContext(ctx)

	for i, seed := range req.Seeds {
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			res, err := s.Run(gctx, SynthesisRequest{
				Output:        BatchOutputPath(req.Dir, seed, format),
				Seed:          seed,
				Rows:          req.Rows,
				Algorithm:     req.Algorithm,
				Format:        format,
				WriteManifest: req.WriteManifest,
			})
			if err != nil {
				return errors.Wrapf(err, "seed %d", seed)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "batch cancelled")
	}
	return results, nil
}

// ParseSeeds reads a seed list such as "0-9,42": comma-separated seeds or
// inclusive ranges. A leading minus is a sign, so "-5--1" is a range of
// negative seeds. Whether a seed is usable depends on the algorithm and is
// checked by RunBatch.
func ParseSeeds(list string) ([]int64, error) {
	var seeds []int64
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := cutRange(part)
		first, err := strconv.ParseInt(strings.TrimSpace(lo), 10, 64)
		if err != nil {
			return nil, errors.InvalidInput(fmt.Sprintf("invalid seed %q", part))
		}
		last := first
		if isRange {
			last, err = strconv.ParseInt(strings.TrimSpace(hi), 10, 64)
			if err != nil || last < first {
				return nil, errors.InvalidInput(fmt.Sprintf("invalid seed range %q", part))
			}
		}
		if last-first < 0 || last-first >= MaxBatchSeeds || len(seeds)+int(last-first+1) > MaxBatchSeeds {
			return nil, errors.InvalidInput(fmt.Sprintf("seed list exceeds limit of %d", MaxBatchSeeds))
		}
		for seed := first; seed <= last; seed++ {
			seeds = append(seeds, seed)
		}
	}
	if len(seeds) == 0 {
		return nil, errors.InvalidInput("empty seed list")
	}
	return seeds, nil
}

// cutRange splits "lo-hi" at the first minus that is not a sign
func cutRange(part string) (lo, hi string, isRange bool) {
	for i := 1; i < len(part); i++ {
		if part[i] == '-' {
			return part[:i], part[i+1:], true
		}
	}
	return part, "", false
}
