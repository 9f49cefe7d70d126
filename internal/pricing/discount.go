package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/smartwear/pos-backend/pkg/enums"
	pkgerrors "github.com/smartwear/pos-backend/pkg/errors"
)

var hundred = decimal.NewFromInt(100)

// Discount is the single cart-level discount. Percent values are in [0, 100];
// fixed values are currency amounts.
type Discount struct {
	Kind  enums.DiscountKind `json:"kind"`
	Value decimal.Decimal    `json:"value"`
}

// NoDiscount is the zero-valued "none" discount.
func NoDiscount() Discount {
	return Discount{Kind: enums.DiscountKindNone, Value: decimal.Zero}
}

// NewDiscount validates kind and value. A "none" discount always carries value 0.
func NewDiscount(kind enums.DiscountKind, value decimal.Decimal) (Discount, error) {
	if kind == "" {
		kind = enums.DiscountKindNone
	}
	if !kind.IsValid() {
		return Discount{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown discount kind %q", kind))
	}
	if kind == enums.DiscountKindNone {
		return NoDiscount(), nil
	}
	if value.IsNegative() {
		return Discount{}, pkgerrors.New(pkgerrors.CodeValidation, "discount value must not be negative")
	}
	if kind == enums.DiscountKindPercent && value.GreaterThan(hundred) {
		return Discount{}, pkgerrors.New(pkgerrors.CodeValidation, "percent discount must not exceed 100")
	}
	return Discount{Kind: kind, Value: value}, nil
}

// IsNone reports whether the discount has no effect on the subtotal.
func (d Discount) IsNone() bool {
	return d.Kind == "" || d.Kind == enums.DiscountKindNone
}

// Amount is the discount taken off subtotal before clamping.
func (d Discount) Amount(subtotal decimal.Decimal) decimal.Decimal {
	switch d.Kind {
	case enums.DiscountKindPercent:
		return subtotal.Mul(d.Value).Div(hundred)
	case enums.DiscountKindFixed:
		return d.Value
	default:
		return decimal.Zero
	}
}

// Label renders the discount for receipts and logs, e.g. "10%" or "$5.00".
func (d Discount) Label() string {
	switch d.Kind {
	case enums.DiscountKindPercent:
		return d.Value.String() + "%"
	case enums.DiscountKindFixed:
		return "$" + d.Value.StringFixed(2)
	default:
		return "none"
	}
}

// Preset is a named discount offered to cashiers.
type Preset struct {
	Code     string   `json:"code"`
	Label    string   `json:"label"`
	Discount Discount `json:"discount"`
}

var presets = []Preset{
	{Code: "NONE", Label: "No discount", Discount: NoDiscount()},
	{Code: "STAFF10", Label: "Staff 10%", Discount: Discount{Kind: enums.DiscountKindPercent, Value: decimal.NewFromInt(10)}},
	{Code: "VIP20", Label: "VIP 20%", Discount: Discount{Kind: enums.DiscountKindPercent, Value: decimal.NewFromInt(20)}},
	{Code: "FIXED5", Label: "$5 off", Discount: Discount{Kind: enums.DiscountKindFixed, Value: decimal.NewFromInt(5)}},
}

// Presets returns the canned discounts in display order.
func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

// LookupPreset finds a preset by code, ignoring case and surrounding space.
func LookupPreset(code string) (Preset, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	for _, p := range presets {
		if p.Code == normalized {
			return p, true
		}
	}
	return Preset{}, false
}
