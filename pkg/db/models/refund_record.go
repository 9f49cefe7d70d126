package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RefundRecord is the ledger row written for every processed return.
type RefundRecord struct {
	ID          string          `gorm:"column:id;primaryKey"`
	SessionID   string          `gorm:"column:session_id;not null;index"`
	TerminalID  string          `gorm:"column:terminal_id;not null"`
	OrderID     string          `gorm:"column:order_id;not null;index"`
	RefundTotal decimal.Decimal `gorm:"column:refund_total;type:numeric(12,2);not null"`
	Lines       []RefundLine    `gorm:"column:lines;serializer:json;type:jsonb;not null"`
	OccurredAt  time.Time       `gorm:"column:occurred_at;not null;index"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (RefundRecord) TableName() string { return "refund_records" }

// RefundLine is the JSON snapshot of a returned order line.
type RefundLine struct {
	LineID    string          `json:"line_id"`
	ProductID int             `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}
