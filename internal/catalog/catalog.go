// Package catalog holds the read-only product list a terminal sells from.
package catalog

import (
	"fmt"

	pkgerrors "github.com/smartwear/pos-backend/pkg/errors"
)

// Catalog is a validated, immutable product list indexed by id.
type Catalog struct {
	products []Product
	byID     map[int]int
}

// New validates products and builds the catalog. Order is preserved.
func New(products []Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]Product, 0, len(products)),
		byID:     make(map[int]int, len(products)),
	}
	for _, p := range products {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("duplicate product id %d", p.ID))
		}
		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p.clone())
	}
	return c, nil
}

// Products returns a copy of every product in catalog order.
func (c *Catalog) Products() []Product {
	out := make([]Product, len(c.products))
	for i, p := range c.products {
		out[i] = p.clone()
	}
	return out
}

// Len reports the number of products.
func (c *Catalog) Len() int {
	return len(c.products)
}

// Get looks a product up by id.
func (c *Catalog) Get(id int) (Product, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return Product{}, false
	}
	return c.products[idx].clone(), true
}

// Lookup is Get returning a NOT_FOUND error for unknown ids.
func (c *Catalog) Lookup(id int) (Product, error) {
	p, ok := c.Get(id)
	if !ok {
		return Product{}, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %d not found", id))
	}
	return p, nil
}

// Filter applies Filter to the catalog.
func (c *Catalog) Filter(category, query string) []Product {
	matches := Filter(c.products, category, query)
	for i := range matches {
		matches[i] = matches[i].clone()
	}
	return matches
}

// Categories applies Categories to the catalog.
func (c *Catalog) Categories() []string {
	return Categories(c.products)
}
