package catalog

import (
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// LoadXLSX loads a catalog from the first sheet of an XLSX workbook.
// The first row is the header and is subject to the same schema
// validation as the CSV path.
func LoadXLSX(path string, opts LoadOptions) (*Catalog, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: open xlsx %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("catalog: xlsx %s has no sheets", path)
	}

	sheet := f.Sheets[0]

	var header []string
	var rows [][]string
	for i, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		if i == 0 {
			header = cells
			continue
		}
		rows = append(rows, cells)
	}

	source := filepath.Base(path)
	if header == nil {
		return nil, &SchemaError{Source: source, Missing: requiredColumns}
	}

	return buildCatalog(header, rows, source, opts)
}
