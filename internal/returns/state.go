package returns

import (
	"github.com/shopspring/decimal"

	"github.com/smartwear/pos-backend/internal/orders"
	"github.com/smartwear/pos-backend/pkg/enums"
)

// State is the returns desk of a terminal session. Selected maps an order
// line id to the quantity being returned and only references lines of Order.
type State struct {
	Phase    enums.ReturnPhase       `json:"phase"`
	Order    *orders.HistoricalOrder `json:"order,omitempty"`
	Selected map[string]int          `json:"selected"`
}

// SelectedLine is an order line together with the quantity being returned.
type SelectedLine struct {
	orders.Line
	ReturnQuantity int             `json:"return_quantity"`
	RefundAmount   decimal.Decimal `json:"refund_amount"`
}

// NewState is an idle desk.
func NewState() State {
	return State{Phase: enums.ReturnPhaseIdle, Selected: map[string]int{}}
}

// IsLocated reports whether an order is loaded.
func (s State) IsLocated() bool {
	return s.Phase == enums.ReturnPhaseLocated && s.Order != nil
}

// SelectedLines lists the selected lines in the order's line order.
func (s State) SelectedLines() []SelectedLine {
	if !s.IsLocated() {
		return nil
	}
	out := make([]SelectedLine, 0, len(s.Selected))
	for _, l := range s.Order.Lines {
		qty, ok := s.Selected[l.LineID]
		if !ok {
			continue
		}
		out = append(out, SelectedLine{
			Line:           l,
			ReturnQuantity: qty,
			RefundAmount:   l.UnitPrice.Mul(decimal.NewFromInt(int64(qty))),
		})
	}
	return out
}

// RefundPreview sums unit price times selected quantity.
func (s State) RefundPreview() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.SelectedLines() {
		total = total.Add(l.RefundAmount)
	}
	return total
}

func (s State) clone() State {
	out := State{Phase: s.Phase, Selected: make(map[string]int, len(s.Selected))}
	if out.Phase == "" {
		out.Phase = enums.ReturnPhaseIdle
	}
	if s.Order != nil {
		order := s.Order.Clone()
		out.Order = &order
	}
	for k, v := range s.Selected {
		out.Selected[k] = v
	}
	return out
}
