// Package events defines the outbound sale and refund summaries and the
// collaborators that record them.
package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/smartwear/pos-backend/pkg/enums"
)

// SaleLine is a cart line as sold.
type SaleLine struct {
	LineID    string          `json:"line_id"`
	ProductID int             `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Color     string          `json:"color"`
	Size      string          `json:"size"`
}

// SaleCompleted is emitted once per successful checkout.
type SaleCompleted struct {
	SaleID         string              `json:"sale_id"`
	SessionID      string              `json:"session_id"`
	TerminalID     string              `json:"terminal_id"`
	TotalAmount    decimal.Decimal     `json:"total_amount"`
	ItemCount      int                 `json:"item_count"`
	PaymentMethod  enums.PaymentMethod `json:"payment_method"`
	Subtotal       decimal.Decimal     `json:"subtotal"`
	DiscountKind   enums.DiscountKind  `json:"discount_kind"`
	DiscountValue  decimal.Decimal     `json:"discount_value"`
	DiscountAmount decimal.Decimal     `json:"discount_amount"`
	Tax            decimal.Decimal     `json:"tax"`
	Lines          []SaleLine          `json:"lines"`
	OccurredAt     time.Time           `json:"occurred_at"`
}

// RefundLine is an order line selected for return with the quantity refunded.
type RefundLine struct {
	LineID    string          `json:"line_id"`
	ProductID int             `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// RefundProcessed is emitted once per processed return.
type RefundProcessed struct {
	RefundID    string          `json:"refund_id"`
	SessionID   string          `json:"session_id"`
	TerminalID  string          `json:"terminal_id"`
	OrderID     string          `json:"order_id"`
	RefundTotal decimal.Decimal `json:"refund_total"`
	Lines       []RefundLine    `json:"lines"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

// Recorder receives the outbound events. Implementations must be safe for
// concurrent use.
type Recorder interface {
	RecordSale(ctx context.Context, sale SaleCompleted) error
	RecordRefund(ctx context.Context, refund RefundProcessed) error
}
