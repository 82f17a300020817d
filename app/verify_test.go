package app

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"datasynth/adapters/rng"
	"datasynth/domain/core"
	"datasynth/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestVerify_RoundTripThroughManifestFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "data.csv")
	svc := NewSynthesisService(rng.NewRNGAdapter(), quietLogger())

	res, err := svc.Run(context.Background(), SynthesisRequest{Output: out, Seed: 9, Rows: 40, WriteManifest: true})
	require.NoError(t, err)

	manifest, err := ReadManifest(res.ManifestPath)
	require.NoError(t, err)

	verified, err := svc.Verify(context.Background(), manifest)
	require.NoError(t, err)
	assert.Equal(t, res.Manifest.OutputHash, verified.FileHash)
	assert.Equal(t, res.Manifest.OutputHash, verified.RegeneratedHash)
}

func TestVerify_DetectsEditedFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "data.csv")
	svc := NewSynthesisService(rng.NewRNGAdapter(), quietLogger())

	res, err := svc.Run(context.Background(), SynthesisRequest{Output: out, Rows: 10})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(out, []byte("1,2,3,4,5\n"), 0o644))

	_, err = svc.Verify(context.Background(), res.Manifest)
	require.Error(t, err)
	assert.Equal(t, errors.CodeVerifyFailed, errors.GetCode(err))
	assert.True(t, stderrors.Is(err, core.ErrHashMismatch))
}

func TestVerify_DetectsTamperedFingerprint(t *testing.T) {
	out := filepath.Join(t.TempDir(), "data.csv")
	svc := NewSynthesisService(rng.NewRNGAdapter(), quietLogger())

	res, err := svc.Run(context.Background(), SynthesisRequest{Output: out, Rows: 10})
	require.NoError(t, err)
	res.Manifest.Fingerprint.Seed = 1

	_, err = svc.Verify(context.Background(), res.Manifest)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, core.ErrHashMismatch))
}

func TestVerify_RejectsInflatedRowCountWithoutRegenerating(t *testing.T) {
	out := filepath.Join(t.TempDir(), "data.csv")
	svc := NewSynthesisService(rng.NewRNGAdapter(), quietLogger())

	res, err := svc.Run(context.Background(), SynthesisRequest{Output: out, Rows: 10})
	require.NoError(t, err)
	res.Manifest.Fingerprint.Rows = 2000000000

	rngPort := &MockRNGPort{}
	_, err = NewSynthesisService(rngPort, quietLogger()).Verify(context.Background(), res.Manifest)
	require.Error(t, err)
	assert.Equal(t, errors.CodeVerifyFailed, errors.GetCode(err))
	assert.True(t, stderrors.Is(err, core.ErrHashMismatch))
	rngPort.AssertNotCalled(t, "SeededStream", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerify_XLSXChecksFileHashOnly(t *testing.T) {
	out := filepath.Join(t.TempDir(), "data.xlsx")
	svc := NewSynthesisService(rng.NewRNGAdapter(), quietLogger())

	res, err := svc.Run(context.Background(), SynthesisRequest{Output: out, Rows: 10})
	require.NoError(t, err)

	verified, err := svc.Verify(context.Background(), res.Manifest)
	require.NoError(t, err)
	assert.True(t, verified.RegeneratedHash.IsEmpty())
}

func TestReadManifest_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadManifest(filepath.Join(dir, "absent.json"))
	assert.Equal(t, errors.CodeIOError, errors.GetCode(err))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	_, err = ReadManifest(bad)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte("{}"), 0o644))
	_, err = ReadManifest(empty)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}
