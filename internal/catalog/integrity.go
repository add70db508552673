package catalog

import (
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/markdown-cli/internal/model"
)

// IntegrityMode controls what happens when a row fails the range checks.
type IntegrityMode string

const (
	// IntegrityStrict fails the whole load on the first bad row.
	IntegrityStrict IntegrityMode = "strict"
	// IntegritySkip drops bad rows with a warning. Default.
	IntegritySkip IntegrityMode = "skip"
	// IntegrityOff keeps raw values untouched.
	IntegrityOff IntegrityMode = "off"
)

// ParseIntegrityMode validates a mode string, defaulting empty to skip.
func ParseIntegrityMode(s string) (IntegrityMode, error) {
	switch IntegrityMode(s) {
	case "":
		return IntegritySkip, nil
	case IntegrityStrict, IntegritySkip, IntegrityOff:
		return IntegrityMode(s), nil
	}
	return "", eris.Errorf("catalog: unknown integrity mode %q (want strict, skip, or off)", s)
}

// checkIntegrity returns the first out-of-range field of a record, or nil.
// A violation here would otherwise surface as negative or nonsensical
// revenue downstream with no flag.
func checkIntegrity(p model.ProductRecord) *DataIntegrityError {
	if p.OriginalPrice <= 0 {
		return &DataIntegrityError{ProductID: p.ProductID, Field: "original_price", Value: p.OriginalPrice}
	}
	if p.StockLevel < 0 {
		return &DataIntegrityError{ProductID: p.ProductID, Field: "stock_level", Value: float64(p.StockLevel)}
	}
	for i, sd := range p.StageData {
		if sd.Markdown < 0 || sd.Markdown > 1 {
			return &DataIntegrityError{ProductID: p.ProductID, Field: fmt.Sprintf("markdown_%d", i+1), Value: sd.Markdown}
		}
		if sd.Sales < 0 {
			return &DataIntegrityError{ProductID: p.ProductID, Field: fmt.Sprintf("sales_after_%d", i+1), Value: sd.Sales}
		}
	}
	return nil
}

// applyIntegrity enforces the configured mode over freshly parsed records.
// In skip mode it returns the surviving rows and the number dropped.
func applyIntegrity(products []model.ProductRecord, mode IntegrityMode) ([]model.ProductRecord, int, error) {
	if mode == IntegrityOff {
		return products, 0, nil
	}

	kept := products[:0]
	dropped := 0
	for _, p := range products {
		violation := checkIntegrity(p)
		if violation == nil {
			kept = append(kept, p)
			continue
		}
		if mode == IntegrityStrict {
			return nil, 0, violation
		}
		dropped++
		zap.L().Warn("dropping product with out-of-range data",
			zap.String("product_id", violation.ProductID),
			zap.String("field", violation.Field),
			zap.Float64("value", violation.Value),
		)
	}
	return kept, dropped, nil
}
