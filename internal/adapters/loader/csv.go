// Package loader reads tabular catalog sources from disk.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/0xcro3dile/catalogchat-go/internal/domain/catalog"
)

// LoadCSV parses a comma-separated file with a header row into a named table,
// preserving source row order. Cells are kept verbatim; all interpretation
// happens downstream.
func LoadCSV(path, name string) (catalog.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return catalog.Table{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	return ReadTable(file, name)
}

// ReadTable parses CSV content from a reader into a named table.
func ReadTable(r io.Reader, name string) (catalog.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // ragged rows are tolerated; missing cells read as empty

	header, err := reader.Read()
	if err != nil {
		return catalog.Table{}, fmt.Errorf("reading %s header: %w", name, err)
	}

	table := catalog.Table{Name: name, Columns: header}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return catalog.Table{}, fmt.Errorf("reading %s row: %w", name, err)
		}

		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}
