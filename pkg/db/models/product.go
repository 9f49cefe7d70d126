package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry offered at the terminal.
type Product struct {
	ID         int             `gorm:"column:id;primaryKey;autoIncrement:false"`
	Name       string          `gorm:"column:name;not null"`
	UnitPrice  decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Category   string          `gorm:"column:category;not null;index"`
	Colors     []string        `gorm:"column:colors;serializer:json;type:jsonb;not null"`
	Sizes      []string        `gorm:"column:sizes;serializer:json;type:jsonb;not null"`
	StockCount int             `gorm:"column:stock_count;not null;default:0"`
	ImageURL   *string         `gorm:"column:image_url"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string { return "products" }
