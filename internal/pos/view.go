package pos

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/smartwear/pos-backend/internal/events"
	"github.com/smartwear/pos-backend/internal/orders"
	"github.com/smartwear/pos-backend/internal/pricing"
	"github.com/smartwear/pos-backend/internal/returns"
	"github.com/smartwear/pos-backend/internal/sessions"
	"github.com/smartwear/pos-backend/internal/workbench"
	"github.com/smartwear/pos-backend/pkg/enums"
)

// View is what a terminal renders for a session: cart, pending selection,
// the rounded quote and the returns desk.
type View struct {
	SessionID     string               `json:"session_id"`
	TerminalID    string               `json:"terminal_id"`
	Cart          []workbench.CartLine `json:"cart"`
	Pending       *workbench.Selection `json:"pending,omitempty"`
	Discount      DiscountView         `json:"discount"`
	PaymentMethod enums.PaymentMethod  `json:"payment_method"`
	Quote         pricing.Quote        `json:"quote"`
	Returns       ReturnsView          `json:"returns"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

type DiscountView struct {
	pricing.Discount
	Label string `json:"label"`
}

type ReturnsView struct {
	Phase         enums.ReturnPhase       `json:"phase"`
	Order         *orders.HistoricalOrder `json:"order,omitempty"`
	Selected      []returns.SelectedLine  `json:"selected"`
	RefundPreview decimal.Decimal         `json:"refund_preview"`
}

// CheckoutResult pairs the recorded sale with the session after the cart reset.
type CheckoutResult struct {
	Sale    events.SaleCompleted `json:"sale"`
	Session View                 `json:"session"`
}

// RefundResult pairs the recorded refund with the session back at idle.
type RefundResult struct {
	Refund  events.RefundProcessed `json:"refund"`
	Session View                   `json:"session"`
}

func (s *service) view(rec sessions.Record) View {
	selected := rec.Returns.SelectedLines()
	if selected == nil {
		selected = []returns.SelectedLine{}
	}
	cart := rec.Workbench.Cart
	if cart == nil {
		cart = []workbench.CartLine{}
	}
	return View{
		SessionID:     rec.ID,
		TerminalID:    rec.TerminalID,
		Cart:          cart,
		Pending:       rec.Workbench.Pending,
		Discount:      DiscountView{Discount: rec.Workbench.Discount, Label: rec.Workbench.Discount.Label()},
		PaymentMethod: rec.Workbench.PaymentMethod,
		Quote:         s.bench.Quote(rec.Workbench).Rounded(),
		Returns: ReturnsView{
			Phase:         rec.Returns.Phase,
			Order:         rec.Returns.Order,
			Selected:      selected,
			RefundPreview: pricing.RoundMoney(rec.Returns.RefundPreview()),
		},
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}
