// Package engine ties the catalog, the stage expansion, and the
// aggregations into one filter-then-derive pipeline. The catalog is
// immutable, so the full expansion is memoized per catalog version and
// every view is recomputed cheaply from shared read-only data.
package engine

import (
	"sync"

	"go.uber.org/zap"

	"github.com/sells-group/markdown-cli/internal/catalog"
	"github.com/sells-group/markdown-cli/internal/expand"
	"github.com/sells-group/markdown-cli/internal/model"
)

// Engine serves filtered views over one catalog. Safe for concurrent use:
// all derived data is read-only once computed.
type Engine struct {
	mu      sync.RWMutex
	catalog *catalog.Catalog
	version string
	metrics []model.StageMetric // memoized expansion of the full catalog
}

// New creates an engine over a loaded catalog.
func New(c *catalog.Catalog) *Engine {
	return &Engine{catalog: c}
}

// Catalog returns the current catalog.
func (e *Engine) Catalog() *catalog.Catalog {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.catalog
}

// Replace swaps in a new catalog. The memoized expansion keys on the
// catalog version, so stale derived rows cannot survive a replacement.
func (e *Engine) Replace(c *catalog.Catalog) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.catalog = c
}

// expanded returns the memoized full expansion, computing it on first use
// or after a catalog replacement.
func (e *Engine) expanded() (*catalog.Catalog, []model.StageMetric) {
	e.mu.RLock()
	c, version, metrics := e.catalog, e.version, e.metrics
	e.mu.RUnlock()
	if version == c.Version() && metrics != nil {
		return c, metrics
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.version != e.catalog.Version() || e.metrics == nil {
		e.metrics = expand.Records(e.catalog.Products())
		e.version = e.catalog.Version()
		zap.L().Debug("expanded catalog",
			zap.String("version", e.version),
			zap.Int("products", e.catalog.Len()),
			zap.Int("metric_rows", len(e.metrics)),
		)
	}
	return e.catalog, e.metrics
}

// View applies one filter to the catalog and takes each selected
// product's metric rows from the memoized expansion. Because metric rows
// are derived per product, this is identical to expanding the filtered
// catalog, so the product view and the metrics view always agree.
func (e *Engine) View(f Filter) *View {
	c, all := e.expanded()

	products := c.Products()
	if f.IsZero() {
		return &View{Filter: f, Products: products, Metrics: all}
	}

	var fp []model.ProductRecord
	var fm []model.StageMetric
	for i, p := range products {
		if !f.Matches(p.Category, p.Season) {
			continue
		}
		fp = append(fp, p)
		fm = append(fm, all[i*model.StageCount:(i+1)*model.StageCount]...)
	}
	return &View{Filter: f, Products: fp, Metrics: fm}
}
