package catalog

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/markdown-cli/internal/model"
)

// LoadOptions configures catalog loading.
type LoadOptions struct {
	Integrity IntegrityMode
}

// LoadFile loads a catalog from a CSV or XLSX file, dispatching on the
// file extension.
func LoadFile(ctx context.Context, path string, opts LoadOptions) (*Catalog, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "catalog: open %s", path)
		}
		defer f.Close()
		return ParseCSV(ctx, f, filepath.Base(path), opts)
	case ".xlsx":
		return LoadXLSX(path, opts)
	default:
		return nil, eris.Errorf("catalog: unsupported file type %q (want .csv or .xlsx)", filepath.Ext(path))
	}
}

// ParseCSV reads a catalog from CSV data. The first row must be a header
// containing every required column; otherwise a SchemaError naming the
// missing columns is returned and no partial catalog is produced.
func ParseCSV(ctx context.Context, r io.Reader, source string, opts LoadOptions) (*Catalog, error) {
	headerCh := make(chan []string, 1)
	rowCh, errCh := streamCSV(ctx, r, csvOptions{HeaderCh: headerCh, TrimSpace: true})

	var rows [][]string
	for row := range rowCh {
		rows = append(rows, row)
	}
	if err := <-errCh; err != nil {
		return nil, eris.Wrapf(err, "catalog: parse %s", source)
	}

	var header []string
	select {
	case header = <-headerCh:
	default:
		return nil, &SchemaError{Source: source, Missing: requiredColumns}
	}

	return buildCatalog(header, rows, source, opts)
}

// buildCatalog validates the header and converts raw rows into a catalog.
// Shared by the CSV and XLSX paths.
func buildCatalog(header []string, rows [][]string, source string, opts LoadOptions) (*Catalog, error) {
	colIdx := mapColumns(header)
	if missing := missingColumns(colIdx); len(missing) > 0 {
		return nil, &SchemaError{Source: source, Missing: missing}
	}

	mode := opts.Integrity
	if mode == "" {
		mode = IntegritySkip
	}

	products := make([]model.ProductRecord, 0, len(rows))
	for _, row := range rows {
		if isBlankRow(row) {
			continue
		}
		products = append(products, buildRecord(row, colIdx))
	}

	products, dropped, err := applyIntegrity(products, mode)
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: load %s", source)
	}
	if dropped > 0 {
		zap.L().Warn("catalog loaded with rows dropped",
			zap.String("source", source),
			zap.Int("dropped", dropped),
			zap.Int("kept", len(products)),
		)
	}

	return New(products), nil
}

func buildRecord(row []string, colIdx map[string]int) model.ProductRecord {
	p := model.ProductRecord{
		ProductID:         getCol(row, colIdx, "product_id"),
		ProductName:       getCol(row, colIdx, "product_name"),
		Category:          getCol(row, colIdx, "category"),
		Season:            getCol(row, colIdx, "season"),
		Brand:             getCol(row, colIdx, "brand"),
		OriginalPrice:     parseFloatOr(getCol(row, colIdx, "original_price"), 0),
		CompetitorPrice:   parseFloatOr(getCol(row, colIdx, "competitor_price"), 0),
		SeasonalityFactor: parseFloatOr(getCol(row, colIdx, "seasonality_factor"), 0),
		StockLevel:        parseIntOr(getCol(row, colIdx, "stock_level"), 0),
		CustomerRating:    parseFloatOr(getCol(row, colIdx, "customer_rating"), 0),
		ReturnRate:        parseFloatOr(getCol(row, colIdx, "return_rate"), 0),
		PromotionType:     getCol(row, colIdx, "promotion_type"),
		OptimalDiscount:   parseFloatOr(getCol(row, colIdx, "optimal_discount"), 0),
	}
	for i := range p.StageData {
		p.StageData[i] = model.StageInputs{
			Markdown: parseFloatOr(getCol(row, colIdx, fmt.Sprintf("markdown_%d", i+1)), 0),
			Sales:    parseFloatOr(getCol(row, colIdx, fmt.Sprintf("sales_after_%d", i+1)), 0),
		}
	}
	return p
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
