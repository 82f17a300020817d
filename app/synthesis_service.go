package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"datasynth/adapters/rng"
	"datasynth/domain/core"
	"datasynth/domain/dataset"
	"datasynth/domain/run"
	"datasynth/internal"
	"datasynth/internal/errors"
	"datasynth/internal/synth"
	"datasynth/ports"
)

// CodeVersion is stamped into run fingerprints; set at build time with -ldflags
var CodeVersion = "dev"

// WriterFactory resolves the TableWriter for an output format
type WriterFactory func(format string) (ports.TableWriter, error)

// SynthesisService runs seed → generate → combine → persist
type SynthesisService struct {
	rngPort   ports.RNGPort
	writerFor WriterFactory
	ledger    ports.RunLedgerPort
	logger    *internal.Logger
}

// SynthesisRequest defines the inputs of one run
type SynthesisRequest struct {
	Output        string
	Seed          int64
	Rows          int
	Algorithm     string
	Format        string // empty: infer from Output
	WriteManifest bool
}

// SynthesisResult is what a finished run produced
type SynthesisResult struct {
	Table        *dataset.Table
	Format       string
	Manifest     *run.Manifest
	ManifestPath string // empty unless the manifest was written
	RuntimeMs    int64
}

// NewSynthesisService creates a synthesis service writing through synth.WriterFor
func NewSynthesisService(rngPort ports.RNGPort, logger *internal.Logger) *SynthesisService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &SynthesisService{
		rngPort:   rngPort,
		writerFor: synth.WriterFor,
		logger:    logger,
	}
}

// WithWriterFactory replaces how writers are resolved
func (s *SynthesisService) WithWriterFactory(f WriterFactory) *SynthesisService {
	s.writerFor = f
	return s
}

// WithLedger records every successful run's manifest in ledger
func (s *SynthesisService) WithLedger(ledger ports.RunLedgerPort) *SynthesisService {
	s.ledger = ledger
	return s
}

// Run generates the dataset and persists it. Any failure aborts the run; the
// output file may be left partially written.
func (s *SynthesisService) Run(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error) {
	startTime := time.Now()

	format, err := synth.InferFormat(req.Output, req.Format)
	if err != nil {
		return nil, err
	}
	writer, err := s.writerFor(format)
	if err != nil {
		return nil, err
	}

	algorithm := strings.ToLower(strings.TrimSpace(req.Algorithm))
	if algorithm == "" {
		algorithm = rng.DefaultAlgorithm
	}

	s.logger.Debug("Seeding %s stream with seed %d", algorithm, req.Seed)
	stream, err := s.rngPort.SeededStream(ctx, algorithm, req.Seed)
	if err != nil {
		return nil, errors.GenerationError("failed to initialize random stream", err)
	}

	table, err := synth.GenerateDataset(stream, req.Rows)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate dataset")
	}
	s.logger.Trace("Generated %d rows x %d columns", table.Len(), table.Width())

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "run cancelled before writing")
	}
	if err := writer.Write(req.Output, table); err != nil {
		return nil, errors.Wrapf(err, "failed to write %s", req.Output)
	}

	outputHash, err := hashFile(req.Output)
	if err != nil {
		return nil, err
	}

	fingerprint := run.NewRunFingerprint(req.Seed, algorithm, req.Rows, format, CodeVersion)
	manifest := run.NewManifest(req.Output, dataset.ColumnOrder, outputHash, fingerprint)
	result := &SynthesisResult{
		Table:    table,
		Format:   format,
		Manifest: manifest,
	}

	if req.WriteManifest {
		path := run.ManifestPath(req.Output)
		if err := writeManifest(path, manifest); err != nil {
			return nil, err
		}
		result.ManifestPath = path
	}

	if s.ledger != nil {
		if err := s.ledger.RecordRun(ctx, manifest); err != nil {
			return nil, errors.IOError("failed to record run in ledger", err)
		}
	}

	result.RuntimeMs = time.Since(startTime).Milliseconds()
	s.logger.With(map[string]interface{}{
		"run_id":    manifest.RunID.String(),
		"output":    req.Output,
		"format":    format,
		"rows":      table.Len(),
		"seed":      req.Seed,
		"algorithm": algorithm,
		"sha256":    outputHash.String(),
	}).Info("Dataset written")

	return result, nil
}

func hashFile(path string) (core.Hash, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.IOError(fmt.Sprintf("failed to reopen %s", path), err)
	}
	defer f.Close()

	h, err := core.HashReader(f)
	if err != nil {
		return "", errors.IOError(fmt.Sprintf("failed to hash %s", path), err)
	}
	return h, nil
}

func writeManifest(path string, manifest *run.Manifest) error {
	if err := manifest.Validate(); err != nil {
		return errors.WithCode(errors.CodeInternalError, err)
	}
	raw, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode manifest")
	}
	if err := os.WriteFile(path, append(raw, '\n'), 0o644); err != nil {
		return errors.IOError(fmt.Sprintf("failed to write %s", path), err)
	}
	return nil
}
