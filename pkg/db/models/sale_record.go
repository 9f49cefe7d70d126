package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/smartwear/pos-backend/pkg/enums"
)

// SaleRecord is the ledger row written for every completed checkout.
type SaleRecord struct {
	ID             string              `gorm:"column:id;primaryKey"`
	SessionID      string              `gorm:"column:session_id;not null;index"`
	TerminalID     string              `gorm:"column:terminal_id;not null"`
	PaymentMethod  enums.PaymentMethod `gorm:"column:payment_method;not null"`
	ItemCount      int                 `gorm:"column:item_count;not null"`
	Subtotal       decimal.Decimal     `gorm:"column:subtotal;type:numeric(12,4);not null"`
	DiscountKind   enums.DiscountKind  `gorm:"column:discount_kind;not null"`
	DiscountValue  decimal.Decimal     `gorm:"column:discount_value;type:numeric(12,4);not null"`
	DiscountAmount decimal.Decimal     `gorm:"column:discount_amount;type:numeric(12,4);not null"`
	Tax            decimal.Decimal     `gorm:"column:tax;type:numeric(12,4);not null"`
	Total          decimal.Decimal     `gorm:"column:total;type:numeric(12,4);not null"`
	Lines          []SaleLine          `gorm:"column:lines;serializer:json;type:jsonb;not null"`
	OccurredAt     time.Time           `gorm:"column:occurred_at;not null;index"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
}

func (SaleRecord) TableName() string { return "sale_records" }

// SaleLine is the JSON snapshot of a cart line at checkout.
type SaleLine struct {
	LineID    string          `json:"line_id"`
	ProductID int             `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Color     string          `json:"color"`
	Size      string          `json:"size"`
}
