package ports

import (
	"datasynth/domain/dataset"
)

// TableReader loads a previously written dataset back into memory
type TableReader interface {
	ReadTable() (*dataset.Table, error)
}

// TableWriter persists a dataset to a destination path
type TableWriter interface {
	Write(path string, table *dataset.Table) error
}
