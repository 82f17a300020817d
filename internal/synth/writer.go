package synth

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"datasynth/domain/dataset"
	apperrors "datasynth/internal/errors"
	"datasynth/ports"

	"github.com/xuri/excelize/v2"
)

// Output formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// SheetName is the worksheet XLSX output is written to
const SheetName = "Sheet1"

// InferFormat returns the explicit format if set, otherwise derives it from the
// path extension: .xlsx selects xlsx, everything else csv.
func InferFormat(path, explicit string) (string, error) {
	format := strings.ToLower(strings.TrimSpace(explicit))
	if format == "" {
		if strings.ToLower(filepath.Ext(path)) == ".xlsx" {
			return FormatXLSX, nil
		}
		return FormatCSV, nil
	}
	switch format {
	case FormatCSV, FormatXLSX:
		return format, nil
	default:
		return "", apperrors.InvalidInput(fmt.Sprintf("unsupported format: %s", explicit))
	}
}

// WriterFor returns the TableWriter for a format
func WriterFor(format string) (ports.TableWriter, error) {
	switch format {
	case FormatCSV:
		return CSVWriter{}, nil
	case FormatXLSX:
		return XLSXWriter{}, nil
	default:
		return nil, apperrors.InvalidInput(fmt.Sprintf("unsupported format: %s", format))
	}
}

// CSVWriter writes headerless comma-separated integers
type CSVWriter struct{}

func (CSVWriter) Write(path string, table *dataset.Table) error {
	return WriteCSV(path, table)
}

// XLSXWriter writes the same rows to an Excel workbook
type XLSXWriter struct{}

func (XLSXWriter) Write(path string, table *dataset.Table) error {
	return WriteXLSX(path, table)
}

// WriteCSV creates or truncates path and writes one line per row.
// A failed write leaves whatever was written; rerun to regenerate.
func WriteCSV(path string, table *dataset.Table) error {
	if err := checkTable(table); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return apperrors.IOError(fmt.Sprintf("failed to create %s", path), err)
	}
	if err := EncodeCSV(f, table); err != nil {
		f.Close()
		return apperrors.IOError(fmt.Sprintf("failed to write %s", path), err)
	}
	if err := f.Close(); err != nil {
		return apperrors.IOError(fmt.Sprintf("failed to close %s", path), err)
	}
	return nil
}

// EncodeCSV serializes table to w. Fields are base-10 integers, rows end
// with the platform line terminator.
func EncodeCSV(w io.Writer, table *dataset.Table) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = runtime.GOOS == "windows"

	record := make([]string, table.Width())
	for i := 0; i < table.Len(); i++ {
		for c, col := range table.Columns {
			record[c] = strconv.Itoa(col.Values[i])
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the rows, without a header, to Sheet1 of a new workbook
func WriteXLSX(path string, table *dataset.Table) error {
	f, err := buildWorkbook(table)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return apperrors.IOError(fmt.Sprintf("failed to save %s", path), err)
	}
	return nil
}

// EncodeXLSX streams the workbook WriteXLSX would save to w
func EncodeXLSX(w io.Writer, table *dataset.Table) error {
	f, err := buildWorkbook(table)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return apperrors.IOError("failed to encode workbook", err)
	}
	return nil
}

func buildWorkbook(table *dataset.Table) (*excelize.File, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	if idx, err := f.GetSheetIndex(SheetName); err != nil || idx == -1 {
		idx, err := f.NewSheet(SheetName)
		if err != nil {
			f.Close()
			return nil, apperrors.Wrap(err, "failed to create worksheet")
		}
		f.SetActiveSheet(idx)
	}

	row := make([]interface{}, table.Width())
	for r := 0; r < table.Len(); r++ {
		for c, col := range table.Columns {
			row[c] = col.Values[r]
		}
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			f.Close()
			return nil, apperrors.Wrap(err, "failed to address row")
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			f.Close()
			return nil, apperrors.Wrapf(err, "failed to write row %d", r+1)
		}
	}
	return f, nil
}

func checkTable(table *dataset.Table) error {
	if table == nil {
		return apperrors.InvalidInput("nil table")
	}
	if err := table.Validate(); err != nil {
		return apperrors.WithCode(apperrors.CodeInvalidInput, err)
	}
	return nil
}
