package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/smartwear/pos-backend/pkg/enums"
)

// DemoOrders returns the sample order history used by the returns desk.
func DemoOrders() []HistoricalOrder {
	return []HistoricalOrder{
		{
			OrderID:  "ORD-7829",
			PlacedAt: time.Date(2026, time.January, 14, 15, 32, 0, 0, time.UTC),
			Status:   enums.OrderStatusCompleted,
			Total:    decimal.RequireFromString("82.49"),
			Lines: []Line{
				{LineID: "7829-1", ProductID: 1, Name: "Premium Cotton T-Shirt", UnitPrice: decimal.RequireFromString("25.00"), Quantity: 1, Color: "#000000", Size: "M"},
				{LineID: "7829-2", ProductID: 2, Name: "Slim Fit Denim Jeans", UnitPrice: decimal.RequireFromString("49.99"), Quantity: 1, Color: "#1e3a8a", Size: "32"},
			},
		},
		{
			OrderID:  "ORD-7830",
			PlacedAt: time.Date(2026, time.January, 15, 11, 5, 0, 0, time.UTC),
			Status:   enums.OrderStatusCompleted,
			Total:    decimal.RequireFromString("99.00"),
			Lines: []Line{
				{LineID: "7830-1", ProductID: 5, Name: "Minimalist Hoodie", UnitPrice: decimal.RequireFromString("45.00"), Quantity: 2, Color: "#808080", Size: "L"},
			},
		},
		{
			OrderID:  "ORD-7831",
			PlacedAt: time.Date(2026, time.January, 16, 17, 48, 0, 0, time.UTC),
			Status:   enums.OrderStatusReturned,
			Total:    decimal.RequireFromString("60.50"),
			Lines: []Line{
				{LineID: "7831-1", ProductID: 3, Name: "Canvas Sneaker Pro", UnitPrice: decimal.RequireFromString("55.00"), Quantity: 1, Color: "#ffffff", Size: "9"},
			},
		},
	}
}
