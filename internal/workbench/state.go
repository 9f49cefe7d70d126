package workbench

import (
	"github.com/shopspring/decimal"

	"github.com/smartwear/pos-backend/internal/pricing"
	"github.com/smartwear/pos-backend/pkg/enums"
)

// CartLine is one product, size, color and quantity in the cart. The same
// product may appear on several lines.
type CartLine struct {
	LineID    string          `json:"line_id"`
	ProductID int             `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Color     string          `json:"color"`
	Size      string          `json:"size"`
	ImageURL  string          `json:"image_url,omitempty"`
}

// LineTotal is unit price times quantity.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Selection is the product being configured before it is added to the cart.
type Selection struct {
	ProductID int    `json:"product_id"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Quantity  int    `json:"quantity"`
}

// State is a terminal's cart session. Transitions never mutate a State in
// place; they return a new value.
type State struct {
	Cart          []CartLine          `json:"cart"`
	Pending       *Selection          `json:"pending,omitempty"`
	Discount      pricing.Discount    `json:"discount"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
}

// NewState is an empty cart paying cash with no discount.
func NewState() State {
	return State{
		Cart:          []CartLine{},
		Discount:      pricing.NoDiscount(),
		PaymentMethod: enums.DefaultPaymentMethod,
	}
}

// ItemCount sums quantities over the cart.
func (s State) ItemCount() int {
	n := 0
	for _, l := range s.Cart {
		n += l.Quantity
	}
	return n
}

// IsEmpty reports whether the cart has no lines.
func (s State) IsEmpty() bool {
	return len(s.Cart) == 0
}

// Line finds a cart line by id.
func (s State) Line(lineID string) (CartLine, bool) {
	for _, l := range s.Cart {
		if l.LineID == lineID {
			return l, true
		}
	}
	return CartLine{}, false
}

// PricingLines projects the cart for the pricing pipeline.
func (s State) PricingLines() []pricing.Line {
	out := make([]pricing.Line, 0, len(s.Cart))
	for _, l := range s.Cart {
		out = append(out, pricing.Line{UnitPrice: l.UnitPrice, Quantity: l.Quantity})
	}
	return out
}

func (s State) clone() State {
	out := s
	out.Cart = append(make([]CartLine, 0, len(s.Cart)), s.Cart...)
	if s.Pending != nil {
		pending := *s.Pending
		out.Pending = &pending
	}
	return out
}
