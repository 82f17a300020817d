package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"datasynth/domain/dataset"
	"datasynth/internal"
	apperrors "datasynth/internal/errors"
	"datasynth/ports"

	"github.com/xuri/excelize/v2"
)

// DataReader reads a written dataset back from a CSV or XLSX file
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	sheet    string
	logger   *internal.Logger
}

// NewDataReader creates a reader; the file type follows the extension, defaulting to csv
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "csv"
	if ext == ".xlsx" {
		fileType = "xlsx"
	}
	return &DataReader{
		filePath: filePath,
		fileType: fileType,
		sheet:    "Sheet1",
		logger:   internal.DefaultLogger,
	}
}

// WithSheet selects the worksheet read from xlsx files
func (r *DataReader) WithSheet(sheet string) *DataReader {
	if sheet != "" {
		r.sheet = sheet
	}
	return r
}

// WithLogger replaces the reader's logger
func (r *DataReader) WithLogger(logger *internal.Logger) *DataReader {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// ReadTable parses every row into a five-column integer table
func (r *DataReader) ReadTable() (*dataset.Table, error) {
	r.logger.Debug("[DataReader] Starting to read %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); err != nil {
		return nil, apperrors.IOError(fmt.Sprintf("%s file not accessible: %s", strings.ToUpper(r.fileType), r.filePath), err)
	}

	start := time.Now()
	var (
		records [][]string
		err     error
	)
	switch r.fileType {
	case "csv":
		records, err = r.readCSVRecords()
	case "xlsx":
		records, err = r.readExcelRecords()
	default:
		return nil, apperrors.InvalidInput(fmt.Sprintf("unsupported file type: %s", r.fileType))
	}
	if err != nil {
		return nil, err
	}
	r.logger.Debug("[DataReader] %s file read in %.2fms (%d rows)",
		r.fileType, float64(time.Since(start).Nanoseconds())/1e6, len(records))

	return ParseRecords(records)
}

func (r *DataReader) readCSVRecords() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, apperrors.IOError("failed to open CSV file", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = len(dataset.ColumnOrder)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.WithCode(apperrors.CodeInvalidInput, fmt.Errorf("failed to read CSV file: %w", err))
	}
	return records, nil
}

func (r *DataReader) readExcelRecords() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, apperrors.IOError("failed to open Excel file", err)
	}
	defer f.Close()

	rows, err := f.GetRows(r.sheet)
	if err != nil {
		return nil, apperrors.WithCode(apperrors.CodeInvalidInput, fmt.Errorf("failed to read %s: %w", r.sheet, err))
	}
	return rows, nil
}

// ParseRecords converts string records into a table. Every record must hold
// exactly five base-10 integers.
func ParseRecords(records [][]string) (*dataset.Table, error) {
	rows := make([][]int, len(records))
	for i, rec := range records {
		if len(rec) != len(dataset.ColumnOrder) {
			return nil, apperrors.InvalidInput(fmt.Sprintf("row %d has %d fields, want %d", i+1, len(rec), len(dataset.ColumnOrder)))
		}
		row := make([]int, len(rec))
		for c, field := range rec {
			v, err := strconv.Atoi(strings.TrimSpace(field))
			if err != nil {
				return nil, apperrors.WithCode(apperrors.CodeInvalidInput,
					fmt.Errorf("row %d column %s: %w", i+1, dataset.ColumnOrder[c], err))
			}
			row[c] = v
		}
		rows[i] = row
	}
	table, err := dataset.FromRows(rows)
	if err != nil {
		return nil, apperrors.WithCode(apperrors.CodeInvalidInput, err)
	}
	return table, nil
}

var _ ports.TableReader = (*DataReader)(nil)
