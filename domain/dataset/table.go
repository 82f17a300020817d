package dataset

import (
	"fmt"

	"datasynth/domain/core"
)

// Column names in their fixed output order.
const (
	ColumnA = "A"
	ColumnB = "B"
	ColumnC = "C"
	ColumnD = "D"
	ColumnE = "E"
)

// ColumnOrder is the order columns are stored and serialized in.
var ColumnOrder = []string{ColumnA, ColumnB, ColumnC, ColumnD, ColumnE}

// Column is one variable's observations across all rows
type Column struct {
	Name   string
	Values []int
}

// Len returns the number of observations
func (c Column) Len() int {
	return len(c.Values)
}

// Floats returns the values as float64 for statistics
func (c Column) Floats() []float64 {
	out := make([]float64, len(c.Values))
	for i, v := range c.Values {
		out[i] = float64(v)
	}
	return out
}

// Table is a row-aligned set of columns in ColumnOrder.
// Tables are built once and never mutated afterwards.
type Table struct {
	Columns []Column
}

// NewTable assembles columns into a table and checks its invariants
func NewTable(columns ...Column) (*Table, error) {
	t := &Table{Columns: columns}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// FromRows builds a table from row-major data, naming columns by ColumnOrder
func FromRows(rows [][]int) (*Table, error) {
	columns := make([]Column, len(ColumnOrder))
	for c, name := range ColumnOrder {
		columns[c] = Column{Name: name, Values: make([]int, len(rows))}
	}
	for r, row := range rows {
		if len(row) != len(ColumnOrder) {
			return nil, fmt.Errorf("%w: row %d has %d fields, want %d", core.ErrShapeMismatch, r+1, len(row), len(ColumnOrder))
		}
		for c, v := range row {
			columns[c].Values[r] = v
		}
	}
	return NewTable(columns...)
}

// Validate checks the column order and that all columns have identical length
func (t *Table) Validate() error {
	if len(t.Columns) != len(ColumnOrder) {
		return fmt.Errorf("%w: got %d columns, want %d", core.ErrColumnOrder, len(t.Columns), len(ColumnOrder))
	}
	for i, col := range t.Columns {
		if col.Name != ColumnOrder[i] {
			return fmt.Errorf("%w: column %d is %q, want %q", core.ErrColumnOrder, i, col.Name, ColumnOrder[i])
		}
		if col.Len() != t.Columns[0].Len() {
			return fmt.Errorf("%w: column %s has %d values, column %s has %d",
				core.ErrShapeMismatch, col.Name, col.Len(), t.Columns[0].Name, t.Columns[0].Len())
		}
	}
	return nil
}

// Len returns the number of rows
func (t *Table) Len() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return t.Columns[0].Len()
}

// Width returns the number of columns
func (t *Table) Width() int {
	return len(t.Columns)
}

// Column looks up a column by name
func (t *Table) Column(name string) (Column, bool) {
	for _, col := range t.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return Column{}, false
}

// Row returns the i-th observation across all columns
func (t *Table) Row(i int) []int {
	row := make([]int, len(t.Columns))
	for c, col := range t.Columns {
		row[c] = col.Values[i]
	}
	return row
}

// Rows returns the table in row-major order
func (t *Table) Rows() [][]int {
	rows := make([][]int, t.Len())
	for i := range rows {
		rows[i] = t.Row(i)
	}
	return rows
}
