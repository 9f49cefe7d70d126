package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/smartwear/pos-backend/pkg/enums"
)

// HistoricalOrder is a past sale that the returns desk can look up.
type HistoricalOrder struct {
	OrderID   string                `gorm:"column:order_id;primaryKey"`
	PlacedAt  time.Time             `gorm:"column:placed_at;not null"`
	Total     decimal.Decimal       `gorm:"column:total;type:numeric(12,2);not null"`
	Status    enums.OrderStatus     `gorm:"column:status;not null"`
	Lines     []HistoricalOrderLine `gorm:"foreignKey:OrderID;references:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time             `gorm:"column:created_at;autoCreateTime"`
}

func (HistoricalOrder) TableName() string { return "historical_orders" }

// HistoricalOrderLine is one item of a HistoricalOrder. Position keeps the
// original line order.
type HistoricalOrderLine struct {
	ID        uint            `gorm:"column:id;primaryKey"`
	OrderID   string          `gorm:"column:order_id;not null;uniqueIndex:ux_historical_order_lines_line"`
	LineID    string          `gorm:"column:line_id;not null;uniqueIndex:ux_historical_order_lines_line"`
	Position  int             `gorm:"column:position;not null;default:0"`
	ProductID int             `gorm:"column:product_id;not null"`
	Name      string          `gorm:"column:name;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	Color     string          `gorm:"column:color;not null"`
	Size      string          `gorm:"column:size;not null"`
}

func (HistoricalOrderLine) TableName() string { return "historical_order_lines" }
