package synth

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"

	"datasynth/domain/dataset"
	apperrors "datasynth/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func lineEnd() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}

func smallTable(t *testing.T) *dataset.Table {
	t.Helper()
	table, err := dataset.FromRows([][]int{{1, 3, 5, 7, 9}, {-2, 40, 600, 8, 100}})
	require.NoError(t, err)
	return table
}

func TestEncodeCSV_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeCSV(&buf, smallTable(t)))

	want := "1,3,5,7,9" + lineEnd() + "-2,40,600,8,100" + lineEnd()
	assert.Equal(t, want, buf.String())
}

func TestWriteCSV_Shape(t *testing.T) {
	table, err := Generate(DefaultConfig())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, WriteCSV(path, table))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(string(raw), lineEnd()), lineEnd())
	require.Len(t, lines, 100)
	for i, line := range lines {
		fields := strings.Split(line, ",")
		require.Len(t, fields, 5, "line %d", i+1)
		for _, f := range fields {
			v, err := strconv.Atoi(f)
			require.NoError(t, err, "line %d field %q", i+1, f)
			assert.Equal(t, strconv.Itoa(v), f, "field must be a plain integer")
		}
	}
	assert.Equal(t, "45,95,127,94,54", lines[0])
}

func TestWriteCSV_ByteIdenticalAcrossRuns(t *testing.T) {
	dir := t.TempDir()
	paths := []string{filepath.Join(dir, "one.csv"), filepath.Join(dir, "two.csv")}
	for _, p := range paths {
		table, err := Generate(DefaultConfig())
		require.NoError(t, err)
		require.NoError(t, WriteCSV(p, table))
	}

	first, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	second, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestWriteCSV_ReparseReserializeIsIdentical(t *testing.T) {
	table, err := Generate(DefaultConfig())
	require.NoError(t, err)

	var original bytes.Buffer
	require.NoError(t, EncodeCSV(&original, table))

	records, err := csv.NewReader(bytes.NewReader(original.Bytes())).ReadAll()
	require.NoError(t, err)
	rows := make([][]int, len(records))
	for i, rec := range records {
		rows[i] = make([]int, len(rec))
		for c, f := range rec {
			rows[i][c], err = strconv.Atoi(f)
			require.NoError(t, err)
		}
	}
	reparsed, err := dataset.FromRows(rows)
	require.NoError(t, err)

	var again bytes.Buffer
	require.NoError(t, EncodeCSV(&again, reparsed))
	assert.Equal(t, original.String(), again.String())
}

func TestWriteCSV_OverwritesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("stale\n", 500)), 0o644))

	require.NoError(t, WriteCSV(path, smallTable(t)))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "stale")
}

func TestWriteCSV_MissingParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "data.csv")

	err := WriteCSV(path, smallTable(t))
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeIOError, apperrors.GetCode(err))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestWriteCSV_RejectsInvalidTable(t *testing.T) {
	err := WriteCSV(filepath.Join(t.TempDir(), "x.csv"), nil)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))

	broken := &dataset.Table{Columns: []dataset.Column{{Name: "A", Values: []int{1}}}}
	err = WriteCSV(filepath.Join(t.TempDir(), "y.csv"), broken)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
}

func TestWriteXLSX_RowsMatchTable(t *testing.T) {
	table := smallTable(t)
	path := filepath.Join(t.TempDir(), "data.xlsx")
	require.NoError(t, WriteXLSX(path, table))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1", "3", "5", "7", "9"}, {"-2", "40", "600", "8", "100"}}, rows)
}

func TestEncodeXLSX_StreamsSameRows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeXLSX(&buf, smallTable(t)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1", "3", "5", "7", "9"}, {"-2", "40", "600", "8", "100"}}, rows)

	err = EncodeXLSX(&buf, nil)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
}

func TestWriteXLSX_MissingParentDirectory(t *testing.T) {
	err := WriteXLSX(filepath.Join(t.TempDir(), "missing", "data.xlsx"), smallTable(t))
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeIOError, apperrors.GetCode(err))
}

func TestInferFormat(t *testing.T) {
	tests := []struct {
		path, explicit, want string
		wantErr              bool
	}{
		{"data.csv", "", FormatCSV, false},
		{"out/DATA.XLSX", "", FormatXLSX, false},
		{"data.txt", "", FormatCSV, false},
		{"data", "", FormatCSV, false},
		{"data.csv", "XLSX", FormatXLSX, false},
		{"data.xlsx", "csv", FormatCSV, false},
		{"data.csv", "parquet", "", true},
	}
	for _, tt := range tests {
		got, err := InferFormat(tt.path, tt.explicit)
		if tt.wantErr {
			assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s / %q", tt.path, tt.explicit)
	}
}

func TestWriterFor(t *testing.T) {
	w, err := WriterFor(FormatCSV)
	require.NoError(t, err)
	assert.IsType(t, CSVWriter{}, w)

	w, err = WriterFor(FormatXLSX)
	require.NoError(t, err)
	assert.IsType(t, XLSXWriter{}, w)

	_, err = WriterFor("json")
	assert.Error(t, err)
}
