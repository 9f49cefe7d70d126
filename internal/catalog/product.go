package catalog

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/smartwear/pos-backend/pkg/errors"
)

// AllCategories is the category filter value that matches every product.
const AllCategories = "All"

// Product is an immutable catalog entry.
type Product struct {
	ID         int             `json:"id"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Category   string          `json:"category"`
	Colors     []string        `json:"colors"`
	Sizes      []string        `json:"sizes"`
	StockCount int             `json:"stock_count"`
	ImageURL   string          `json:"image_url,omitempty"`
}

// HasSize reports whether size is one of the product's sizes.
func (p Product) HasSize(size string) bool {
	return contains(p.Sizes, size)
}

// HasColor reports whether color is one of the product's colors.
func (p Product) HasColor(color string) bool {
	return contains(p.Colors, color)
}

// Validate checks the invariants every catalog entry must hold.
func (p Product) Validate() error {
	var problems []string
	if p.ID <= 0 {
		problems = append(problems, "id must be positive")
	}
	if strings.TrimSpace(p.Name) == "" {
		problems = append(problems, "name is required")
	}
	if p.UnitPrice.IsNegative() {
		problems = append(problems, "unit price must not be negative")
	}
	if strings.TrimSpace(p.Category) == "" || p.Category == AllCategories {
		problems = append(problems, "category is required and must not be the reserved value All")
	}
	if len(p.Colors) == 0 {
		problems = append(problems, "at least one color is required")
	}
	if len(p.Sizes) == 0 {
		problems = append(problems, "at least one size is required")
	}
	if hasDuplicates(p.Colors) || hasDuplicates(p.Sizes) {
		problems = append(problems, "colors and sizes must be distinct")
	}
	if p.StockCount < 0 {
		problems = append(problems, "stock count must not be negative")
	}
	if len(problems) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid product %d", p.ID)).
		WithDetails(map[string]any{"product_id": p.ID, "problems": problems})
}

func (p Product) clone() Product {
	out := p
	out.Colors = append([]string(nil), p.Colors...)
	out.Sizes = append([]string(nil), p.Sizes...)
	return out
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func hasDuplicates(values []string) bool {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			return true
		}
		seen[v] = struct{}{}
	}
	return false
}
