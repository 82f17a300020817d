package run

import (
	"fmt"

	"datasynth/domain/core"
)

// RunFingerprint captures every parameter that determines the output bytes.
// Two runs with equal fingerprints write identical files.
type RunFingerprint struct {
	Seed        int64     `json:"seed"`
	Algorithm   string    `json:"algorithm"`
	Rows        int       `json:"rows"`
	Format      string    `json:"format"`
	CodeVersion string    `json:"code_version"`
	Fingerprint core.Hash `json:"fingerprint"`
}

// NewRunFingerprint creates a fingerprint from the determinism parameters
func NewRunFingerprint(seed int64, algorithm string, rows int, format, codeVersion string) RunFingerprint {
	return RunFingerprint{
		Seed:        seed,
		Algorithm:   algorithm,
		Rows:        rows,
		Format:      format,
		CodeVersion: codeVersion,
		Fingerprint: computeRunFingerprint(seed, algorithm, rows, format, codeVersion),
	}
}

// computeRunFingerprint generates deterministic hash from all determinism parameters
func computeRunFingerprint(seed int64, algorithm string, rows int, format, codeVersion string) core.Hash {
	data := fmt.Sprintf("seed:%d|algorithm:%s|rows:%d|format:%s|code:%s",
		seed, algorithm, rows, format, codeVersion)
	return core.NewHash([]byte(data))
}
