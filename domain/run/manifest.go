package run

import (
	"time"

	"datasynth/domain/core"
)

// ManifestSuffix is appended to the output path to name the manifest file
const ManifestSuffix = ".manifest.json"

// Manifest records one synthesis run: what was asked for and what was written
type Manifest struct {
	RunID       core.RunID     `json:"run_id"`
	Output      string         `json:"output"`
	Columns     []string       `json:"columns"`
	OutputHash  core.Hash      `json:"output_sha256"`
	Fingerprint RunFingerprint `json:"fingerprint"`
	CreatedAt   time.Time      `json:"created_at"`
}

// NewManifest creates a manifest for a finished run
func NewManifest(output string, columns []string, outputHash core.Hash, fingerprint RunFingerprint) *Manifest {
	return &Manifest{
		RunID:       core.NewRunID(),
		Output:      output,
		Columns:     append([]string(nil), columns...),
		OutputHash:  outputHash,
		Fingerprint: fingerprint,
		CreatedAt:   time.Now().UTC(),
	}
}

// ManifestPath returns where the manifest for output is written
func ManifestPath(output string) string {
	return output + ManifestSuffix
}

// Validate checks if the manifest is complete
func (m *Manifest) Validate() error {
	if core.ID(m.RunID).IsEmpty() {
		return core.NewValidationError("manifest", "run_id cannot be empty")
	}
	if m.Output == "" {
		return core.NewValidationError("manifest", "output cannot be empty")
	}
	if m.OutputHash.IsEmpty() {
		return core.NewValidationError("manifest", "output_sha256 cannot be empty")
	}
	if m.Fingerprint.Fingerprint.IsEmpty() {
		return core.NewValidationError("manifest", "fingerprint cannot be empty")
	}
	if m.Fingerprint.Rows <= 0 {
		return core.NewValidationError("manifest", "rows must be positive")
	}
	return nil
}

// Reproduces reports whether other describes the same parameters and the same bytes
func (m *Manifest) Reproduces(other *Manifest) bool {
	return m.Fingerprint.Fingerprint.Equals(other.Fingerprint.Fingerprint) &&
		m.OutputHash.Equals(other.OutputHash)
}
