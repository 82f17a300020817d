package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"datasynth/domain/core"
	"datasynth/domain/run"
	"datasynth/internal/errors"
	"datasynth/internal/synth"
)

// minCSVRowBytes is the shortest possible encoded row, "1,2,3,1,1\n"
const minCSVRowBytes = 10

// VerifyResult reports how an output compares to the manifest that describes it
type VerifyResult struct {
	Manifest        *run.Manifest
	FileHash        core.Hash
	RegeneratedHash core.Hash // empty for xlsx, whose archive embeds timestamps
}

// ReadManifest loads a manifest written next to an output
func ReadManifest(path string) (*run.Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.IOError(fmt.Sprintf("failed to read %s", path), err)
	}
	var manifest run.Manifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("malformed manifest %s: %w", path, err))
	}
	if err := manifest.Validate(); err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}
	return &manifest, nil
}

// Verify checks that the output still hashes to the recorded value and, for
// csv, that regenerating from the recorded seed reproduces the same bytes.
func (s *SynthesisService) Verify(ctx context.Context, manifest *run.Manifest) (*VerifyResult, error) {
	fileHash, err := hashFile(manifest.Output)
	if err != nil {
		return nil, err
	}
	result := &VerifyResult{Manifest: manifest, FileHash: fileHash}

	if !fileHash.Equals(manifest.OutputHash) {
		return result, errors.WithCode(errors.CodeVerifyFailed,
			fmt.Errorf("%w: %s changed since run %s", core.ErrHashMismatch, manifest.Output, manifest.RunID))
	}

	fp := manifest.Fingerprint
	if fp.Format != synth.FormatCSV {
		s.logger.Debug("Skipping regeneration check for %s output", fp.Format)
		return result, nil
	}

	// The file bounds how many rows it can hold, so an inflated row count fails before regeneration
	info, err := os.Stat(manifest.Output)
	if err != nil {
		return result, errors.IOError(fmt.Sprintf("failed to stat %s", manifest.Output), err)
	}
	if maxRows := info.Size() / minCSVRowBytes; int64(fp.Rows) > maxRows {
		return result, errors.WithCode(errors.CodeVerifyFailed,
			fmt.Errorf("%w: manifest claims %d rows but %s holds at most %d", core.ErrHashMismatch, fp.Rows, manifest.Output, maxRows))
	}

	stream, err := s.rngPort.SeededStream(ctx, fp.Algorithm, fp.Seed)
	if err != nil {
		return result, errors.GenerationError("failed to initialize random stream", err)
	}
	table, err := synth.GenerateDataset(stream, fp.Rows)
	if err != nil {
		return result, errors.Wrap(err, "failed to regenerate dataset")
	}

	var buf bytes.Buffer
	if err := synth.EncodeCSV(&buf, table); err != nil {
		return result, errors.Wrap(err, "failed to encode regenerated dataset")
	}
	result.RegeneratedHash = core.NewHash(buf.Bytes())

	if !result.RegeneratedHash.Equals(manifest.OutputHash) {
		return result, errors.WithCode(errors.CodeVerifyFailed,
			fmt.Errorf("%w: seed %d with %s no longer reproduces %s", core.ErrHashMismatch, fp.Seed, fp.Algorithm, manifest.Output))
	}

	s.logger.With(map[string]interface{}{
		"run_id": manifest.RunID.String(),
		"output": manifest.Output,
	}).Info("Output verified")
	return result, nil
}
