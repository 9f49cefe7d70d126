// Package returns implements the returns desk: locate a historical order,
// pick lines to return and emit a refund summary.
package returns

import (
	"errors"
	"fmt"

	"github.com/smartwear/pos-backend/internal/events"
	"github.com/smartwear/pos-backend/internal/orders"
	"github.com/smartwear/pos-backend/pkg/enums"
	pkgerrors "github.com/smartwear/pos-backend/pkg/errors"
)

// Desk applies returns transitions against an order book.
type Desk struct {
	book *orders.Book
}

// NewDesk builds a desk that resolves orders through book.
func NewDesk(book *orders.Book) (*Desk, error) {
	if book == nil {
		return nil, errors.New("order book required")
	}
	return &Desk{book: book}, nil
}

// SearchOrder locates orderID (trimmed, exact match) with an empty selection.
// An unknown id leaves s unchanged.
func (d *Desk) SearchOrder(s State, orderID string) (State, error) {
	order, ok := d.book.Find(orderID)
	if !ok {
		return s, pkgerrors.New(pkgerrors.CodeNotFound, "order not found").
			WithDetails(map[string]any{"order_id": orderID})
	}
	return State{
		Phase:    enums.ReturnPhaseLocated,
		Order:    &order,
		Selected: map[string]int{},
	}, nil
}

// ToggleReturnLine selects an unselected line with its full original quantity
// and deselects a selected one.
func (d *Desk) ToggleReturnLine(s State, lineID string) (State, error) {
	line, err := locatedLine(s, lineID)
	if err != nil {
		return s, err
	}
	next := s.clone()
	if _, selected := next.Selected[lineID]; selected {
		delete(next.Selected, lineID)
	} else {
		next.Selected[lineID] = line.Quantity
	}
	return next, nil
}

// SetReturnQuantity changes how many units of a selected line are returned.
func (d *Desk) SetReturnQuantity(s State, lineID string, qty int) (State, error) {
	line, err := locatedLine(s, lineID)
	if err != nil {
		return s, err
	}
	if _, selected := s.Selected[lineID]; !selected {
		return s, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("line %s is not selected for return", lineID))
	}
	if qty < 1 || qty > line.Quantity {
		return s, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("return quantity must be between 1 and %d", line.Quantity)).
			WithDetails(map[string]any{"line_id": lineID, "max_quantity": line.Quantity})
	}
	next := s.clone()
	next.Selected[lineID] = qty
	return next, nil
}

// ProcessReturn summarizes the selection as a refund and returns the idle
// state to commit once the refund has been recorded.
func (d *Desk) ProcessReturn(s State) (State, events.RefundProcessed, error) {
	if !s.IsLocated() {
		return s, events.RefundProcessed{}, pkgerrors.New(pkgerrors.CodeStateConflict, "no order located")
	}
	selected := s.SelectedLines()
	if len(selected) == 0 {
		return s, events.RefundProcessed{}, pkgerrors.New(pkgerrors.CodeValidation, "no items selected")
	}

	refund := events.RefundProcessed{
		OrderID:     s.Order.OrderID,
		RefundTotal: s.RefundPreview(),
		Lines:       make([]events.RefundLine, 0, len(selected)),
	}
	for _, l := range selected {
		refund.Lines = append(refund.Lines, events.RefundLine{
			LineID:    l.LineID,
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.ReturnQuantity,
		})
	}
	return NewState(), refund, nil
}

// Cancel abandons the located order.
func (d *Desk) Cancel(State) State {
	return NewState()
}

func locatedLine(s State, lineID string) (orders.Line, error) {
	if !s.IsLocated() {
		return orders.Line{}, pkgerrors.New(pkgerrors.CodeStateConflict, "no order located")
	}
	line, ok := s.Order.Line(lineID)
	if !ok {
		return orders.Line{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("line %s is not part of order %s", lineID, s.Order.OrderID))
	}
	return line, nil
}
