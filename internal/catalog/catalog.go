// Package catalog loads the markdown product dataset from CSV, XLSX, or a
// stored snapshot and presents it as an immutable, content-versioned table.
package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/sells-group/markdown-cli/internal/model"
)

// Catalog is an immutable set of product records plus a version derived
// from the full row content. Derived caches key on Version, so replacing
// the catalog invalidates anything computed from an older one.
type Catalog struct {
	products []model.ProductRecord
	byID     map[string]int
	version  string
}

// New builds a catalog from records. The slice is owned by the catalog
// afterwards and must not be modified by the caller.
func New(products []model.ProductRecord) *Catalog {
	c := &Catalog{
		products: products,
		byID:     make(map[string]int, len(products)),
	}
	for i, p := range products {
		if _, dup := c.byID[p.ProductID]; !dup {
			c.byID[p.ProductID] = i
		}
	}
	c.version = hashProducts(products)
	return c
}

// Products returns the underlying records. Read-only by convention.
func (c *Catalog) Products() []model.ProductRecord {
	return c.products
}

// Len returns the number of products.
func (c *Catalog) Len() int {
	return len(c.products)
}

// Version returns the content hash of the catalog.
func (c *Catalog) Version() string {
	return c.version
}

// Product looks up a record by product ID.
func (c *Catalog) Product(id string) (model.ProductRecord, bool) {
	i, ok := c.byID[id]
	if !ok {
		return model.ProductRecord{}, false
	}
	return c.products[i], true
}

// Categories returns the distinct categories in sorted order.
func (c *Catalog) Categories() []string {
	return c.distinct(func(p model.ProductRecord) string { return p.Category })
}

// Seasons returns the distinct seasons in sorted order.
func (c *Catalog) Seasons() []string {
	return c.distinct(func(p model.ProductRecord) string { return p.Season })
}

func (c *Catalog) distinct(key func(model.ProductRecord) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range c.products {
		k := key(p)
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// hashProducts derives the catalog version from every field that feeds a
// downstream computation. Two catalogs with identical content share a
// version regardless of how they were loaded.
func hashProducts(products []model.ProductRecord) string {
	h := sha256.New()
	for _, p := range products {
		fmt.Fprintf(h, "%s|%s|%s|%s|%s|%g|%d|%g",
			p.ProductID, p.ProductName, p.Category, p.Season, p.Brand,
			p.OriginalPrice, p.StockLevel, p.OptimalDiscount)
		for _, sd := range p.StageData {
			fmt.Fprintf(h, "|%g|%g", sd.Markdown, sd.Sales)
		}
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
