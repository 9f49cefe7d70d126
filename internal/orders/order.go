// Package orders holds the read-only history of completed sales that the
// returns desk searches.
package orders

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/smartwear/pos-backend/pkg/enums"
	pkgerrors "github.com/smartwear/pos-backend/pkg/errors"
)

// Line is one item of a historical order.
type Line struct {
	LineID    string          `json:"line_id"`
	ProductID int             `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Color     string          `json:"color"`
	Size      string          `json:"size"`
}

// HistoricalOrder is a completed sale. It is reference data and never mutated here.
type HistoricalOrder struct {
	OrderID  string            `json:"order_id"`
	PlacedAt time.Time         `json:"placed_at"`
	Lines    []Line            `json:"lines"`
	Total    decimal.Decimal   `json:"total"`
	Status   enums.OrderStatus `json:"status"`
}

// Line finds a line by id.
func (o HistoricalOrder) Line(lineID string) (Line, bool) {
	for _, l := range o.Lines {
		if l.LineID == lineID {
			return l, true
		}
	}
	return Line{}, false
}

// Clone returns a deep copy.
func (o HistoricalOrder) Clone() HistoricalOrder {
	out := o
	out.Lines = append([]Line(nil), o.Lines...)
	return out
}

// Validate checks id, status and line invariants.
func (o HistoricalOrder) Validate() error {
	if strings.TrimSpace(o.OrderID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if !o.Status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("order %s has invalid status %q", o.OrderID, o.Status))
	}
	seen := map[string]struct{}{}
	for _, l := range o.Lines {
		if l.LineID == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("order %s has a line without id", o.OrderID))
		}
		if _, dup := seen[l.LineID]; dup {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("order %s repeats line %s", o.OrderID, l.LineID))
		}
		seen[l.LineID] = struct{}{}
		if l.Quantity < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("order %s line %s has non-positive quantity", o.OrderID, l.LineID))
		}
		if l.UnitPrice.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("order %s line %s has negative price", o.OrderID, l.LineID))
		}
	}
	return nil
}

// Book indexes historical orders by id.
type Book struct {
	orders []HistoricalOrder
	byID   map[string]int
}

// NewBook validates orders and indexes them. Order ids must be unique.
func NewBook(orders []HistoricalOrder) (*Book, error) {
	b := &Book{
		orders: make([]HistoricalOrder, 0, len(orders)),
		byID:   make(map[string]int, len(orders)),
	}
	for _, o := range orders {
		if err := o.Validate(); err != nil {
			return nil, err
		}
		id := strings.TrimSpace(o.OrderID)
		if _, dup := b.byID[id]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("duplicate order id %s", id))
		}
		o = o.Clone()
		o.OrderID = id
		b.byID[id] = len(b.orders)
		b.orders = append(b.orders, o)
	}
	return b, nil
}

// Find looks an order up by exact id after trimming surrounding whitespace.
func (b *Book) Find(orderID string) (HistoricalOrder, bool) {
	idx, ok := b.byID[strings.TrimSpace(orderID)]
	if !ok {
		return HistoricalOrder{}, false
	}
	return b.orders[idx].Clone(), true
}

// List returns every order in load order.
func (b *Book) List() []HistoricalOrder {
	out := make([]HistoricalOrder, len(b.orders))
	for i, o := range b.orders {
		out[i] = o.Clone()
	}
	return out
}

// Len reports the number of orders.
func (b *Book) Len() int {
	return len(b.orders)
}
