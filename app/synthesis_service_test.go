package app

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"datasynth/adapters/rng"
	"datasynth/domain/core"
	"datasynth/domain/dataset"
	"datasynth/domain/run"
	"datasynth/internal"
	"datasynth/internal/errors"
	"datasynth/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRNGPort struct {
	mock.Mock
}

func (m *MockRNGPort) SeededStream(ctx context.Context, algorithm string, seed int64) (ports.RandomStream, error) {
	args := m.Called(ctx, algorithm, seed)
	stream, _ := args.Get(0).(ports.RandomStream)
	return stream, args.Error(1)
}

func (m *MockRNGPort) Algorithms() []string {
	return m.Called().Get(0).([]string)
}

type MockTableWriter struct {
	mock.Mock
}

func (m *MockTableWriter) Write(path string, table *dataset.Table) error {
	return m.Called(path, table).Error(0)
}

type MockRunLedger struct {
	mock.Mock
}

func (m *MockRunLedger) RecordRun(ctx context.Context, manifest *run.Manifest) error {
	return m.Called(ctx, manifest).Error(0)
}

func (m *MockRunLedger) GetRun(ctx context.Context, runID core.RunID) (*run.Manifest, error) {
	args := m.Called(ctx, runID)
	manifest, _ := args.Get(0).(*run.Manifest)
	return manifest, args.Error(1)
}

func (m *MockRunLedger) ListRuns(ctx context.Context, limit int) ([]*run.Manifest, error) {
	args := m.Called(ctx, limit)
	manifests, _ := args.Get(0).([]*run.Manifest)
	return manifests, args.Error(1)
}

func quietLogger() *internal.Logger {
	return internal.NewLoggerWithOutput(internal.LogLevelError, &bytes.Buffer{})
}

func TestRun_WritesCSVAndManifest(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "data.csv")

	svc := NewSynthesisService(rng.NewRNGAdapter(), quietLogger())
	res, err := svc.Run(context.Background(), SynthesisRequest{Output: out, Rows: 100, WriteManifest: true})
	require.NoError(t, err)

	assert.Equal(t, "csv", res.Format)
	assert.Equal(t, 100, res.Table.Len())
	assert.Equal(t, run.ManifestPath(out), res.ManifestPath)

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, core.NewHash(raw), res.Manifest.OutputHash)
	assert.True(t, strings.HasPrefix(string(raw), "45,95,127,94,54"))

	manifestRaw, err := os.ReadFile(res.ManifestPath)
	require.NoError(t, err)
	var decoded run.Manifest
	require.NoError(t, json.Unmarshal(manifestRaw, &decoded))
	assert.Equal(t, res.Manifest.RunID, decoded.RunID)
	assert.Equal(t, rng.AlgorithmMT19937, decoded.Fingerprint.Algorithm)
	assert.Equal(t, dataset.ColumnOrder, decoded.Columns)
}

func TestRun_IsIdempotent(t *testing.T) {
	out := filepath.Join(t.TempDir(), "data.csv")
	svc := NewSynthesisService(rng.NewRNGAdapter(), quietLogger())
	req := SynthesisRequest{Output: out, Seed: 42, Rows: 50, Algorithm: rng.AlgorithmGo}

	first, err := svc.Run(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.Run(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, first.Manifest.Reproduces(second.Manifest))
	assert.NotEqual(t, first.Manifest.RunID, second.Manifest.RunID)
	assert.Empty(t, first.ManifestPath)
	_, err = os.Stat(run.ManifestPath(out))
	assert.True(t, stderrors.Is(err, fs.ErrNotExist))
}

func TestRun_XLSXInferredFromExtension(t *testing.T) {
	out := filepath.Join(t.TempDir(), "data.xlsx")
	res, err := NewSynthesisService(rng.NewRNGAdapter(), quietLogger()).
		Run(context.Background(), SynthesisRequest{Output: out, Rows: 10})
	require.NoError(t, err)
	assert.Equal(t, "xlsx", res.Format)
	assert.FileExists(t, out)
}

func TestRun_GenerationErrorSkipsWrite(t *testing.T) {
	rngPort := &MockRNGPort{}
	rngPort.On("SeededStream", mock.Anything, "mt19937", int64(-5)).
		Return(nil, core.ErrSeedOutOfRange)
	writer := &MockTableWriter{}

	svc := NewSynthesisService(rngPort, quietLogger()).
		WithWriterFactory(func(string) (ports.TableWriter, error) { return writer, nil })
	_, err := svc.Run(context.Background(), SynthesisRequest{Output: "data.csv", Seed: -5, Rows: 10})

	require.Error(t, err)
	assert.Equal(t, errors.CodeGenerationError, errors.GetCode(err))
	assert.True(t, stderrors.Is(err, core.ErrGeneration))
	rngPort.AssertExpectations(t)
	writer.AssertNotCalled(t, "Write", mock.Anything, mock.Anything)
}

func TestRun_IOErrorIsSurfaced(t *testing.T) {
	writer := &MockTableWriter{}
	writer.On("Write", "locked.csv", mock.AnythingOfType("*dataset.Table")).
		Return(errors.IOError("failed to create locked.csv", fs.ErrPermission))

	svc := NewSynthesisService(rng.NewRNGAdapter(), quietLogger()).
		WithWriterFactory(func(string) (ports.TableWriter, error) { return writer, nil })
	_, err := svc.Run(context.Background(), SynthesisRequest{Output: "locked.csv", Rows: 10, WriteManifest: true})

	require.Error(t, err)
	assert.Equal(t, errors.CodeIOError, errors.GetCode(err))
	assert.True(t, stderrors.Is(err, fs.ErrPermission))
	writer.AssertExpectations(t)
}

func TestRun_MissingDirectory(t *testing.T) {
	out := filepath.Join(t.TempDir(), "no", "such", "dir", "data.csv")
	_, err := NewSynthesisService(rng.NewRNGAdapter(), quietLogger()).
		Run(context.Background(), SynthesisRequest{Output: out, Rows: 10})

	require.Error(t, err)
	assert.Equal(t, errors.CodeIOError, errors.GetCode(err))
}

func TestRun_InvalidRowsAndFormat(t *testing.T) {
	svc := NewSynthesisService(rng.NewRNGAdapter(), quietLogger())

	_, err := svc.Run(context.Background(), SynthesisRequest{Output: filepath.Join(t.TempDir(), "d.csv"), Rows: 0})
	assert.Equal(t, errors.CodeGenerationError, errors.GetCode(err))

	_, err = svc.Run(context.Background(), SynthesisRequest{Output: "d.csv", Rows: 10, Format: "parquet"})
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	writer := &MockTableWriter{}
	svc := NewSynthesisService(rng.NewRNGAdapter(), quietLogger()).
		WithWriterFactory(func(string) (ports.TableWriter, error) { return writer, nil })
	_, err := svc.Run(ctx, SynthesisRequest{Output: "data.csv", Rows: 10})

	require.Error(t, err)
	assert.True(t, stderrors.Is(err, context.Canceled))
	writer.AssertNotCalled(t, "Write", mock.Anything, mock.Anything)
}

func TestRun_RecordsManifestInLedger(t *testing.T) {
	ledger := &MockRunLedger{}
	ledger.On("RecordRun", mock.Anything, mock.AnythingOfType("*run.Manifest")).Return(nil)

	out := filepath.Join(t.TempDir(), "data.csv")
	res, err := NewSynthesisService(rng.NewRNGAdapter(), quietLogger()).
		WithLedger(ledger).
		Run(context.Background(), SynthesisRequest{Output: out, Rows: 10})
	require.NoError(t, err)

	ledger.AssertExpectations(t)
	recorded := ledger.Calls[0].Arguments.Get(1).(*run.Manifest)
	assert.Equal(t, res.Manifest.RunID, recorded.RunID)
}

func TestRun_LedgerFailureIsIOError(t *testing.T) {
	ledger := &MockRunLedger{}
	ledger.On("RecordRun", mock.Anything, mock.Anything).Return(stderrors.New("connection refused"))

	out := filepath.Join(t.TempDir(), "data.csv")
	_, err := NewSynthesisService(rng.NewRNGAdapter(), quietLogger()).
		WithLedger(ledger).
		Run(context.Background(), SynthesisRequest{Output: out, Rows: 10})

	require.Error(t, err)
	assert.Equal(t, errors.CodeIOError, errors.GetCode(err))
	assert.FileExists(t, out)
}
