// Package pricing computes cart totals: subtotal, discount, tax and total.
package pricing

import (
	"github.com/shopspring/decimal"
)

// DefaultTaxRate is applied when no rate is configured.
var DefaultTaxRate = decimal.RequireFromString("0.10")

// Line is the pricing view of a cart line.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Quote is the full breakdown for a cart. Values are exact; use Rounded for display.
type Quote struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Taxable        decimal.Decimal `json:"taxable"`
	Tax            decimal.Decimal `json:"tax"`
	Total          decimal.Decimal `json:"total"`
	ItemCount      int             `json:"item_count"`
}

// Subtotal sums unit price times quantity over lines.
func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum
}

// ItemCount sums line quantities.
func ItemCount(lines []Line) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

// Compute runs the pipeline subtotal -> discount -> taxable -> tax -> total.
// Tax applies to the post-discount amount, which is clamped at zero.
func Compute(lines []Line, discount Discount, taxRate decimal.Decimal) Quote {
	subtotal := Subtotal(lines)
	discountAmount := discount.Amount(subtotal)
	taxable := decimal.Max(decimal.Zero, subtotal.Sub(discountAmount))
	tax := taxable.Mul(taxRate)
	return Quote{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		Taxable:        taxable,
		Tax:            tax,
		Total:          taxable.Add(tax),
		ItemCount:      ItemCount(lines),
	}
}

// Rounded returns the quote with every amount rounded to cents.
func (q Quote) Rounded() Quote {
	return Quote{
		Subtotal:       RoundMoney(q.Subtotal),
		DiscountAmount: RoundMoney(q.DiscountAmount),
		Taxable:        RoundMoney(q.Taxable),
		Tax:            RoundMoney(q.Tax),
		Total:          RoundMoney(q.Total),
		ItemCount:      q.ItemCount,
	}
}

// RoundMoney rounds half away from zero to two decimal places.
func RoundMoney(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}
