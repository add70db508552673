package catalog

import (
	"fmt"
	"strings"
)

// SchemaError reports required columns missing from an input dataset.
// It is fatal: no partial catalog is produced.
type SchemaError struct {
	Source  string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("catalog: %s: missing required column(s): %s",
		e.Source, strings.Join(e.Missing, ", "))
}

// DataIntegrityError reports a row whose figures cannot produce meaningful
// revenue (markdown outside [0,1], negative sales or stock, non-positive
// price). Whether it is fatal depends on the configured integrity mode.
type DataIntegrityError struct {
	ProductID string
	Field     string
	Value     float64
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("catalog: product %s: %s out of range (%v)",
		e.ProductID, e.Field, e.Value)
}
