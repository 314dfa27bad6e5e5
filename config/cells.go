package config

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/rescount/resource"
)

// LoadCellList parses per-cell resource descriptors from CSV with the header
// cell_id,initial,inflow,outflow.
func LoadCellList(r io.Reader) ([]resource.CellResource, error) {
	var cells []resource.CellResource
	if err := gocsv.Unmarshal(r, &cells); err != nil {
		return nil, fmt.Errorf("parsing cell list: %w", err)
	}
	return cells, nil
}

// LoadCellListFile reads a cell list CSV from disk.
func LoadCellListFile(path string) ([]resource.CellResource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening cell list: %w", err)
	}
	defer f.Close()
	return LoadCellList(f)
}
