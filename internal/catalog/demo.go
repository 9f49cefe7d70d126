package catalog

import "github.com/shopspring/decimal"

// DemoProducts returns the storefront's starter catalog.
func DemoProducts() []Product {
	return []Product{
		{ID: 1, Name: "Premium Cotton T-Shirt", UnitPrice: decimal.RequireFromString("25.00"), Category: "T-Shirts",
			Colors: []string{"#000000", "#ffffff", "#1e3a8a"}, Sizes: []string{"S", "M", "L", "XL"}, StockCount: 40,
			ImageURL: "https://images.unsplash.com/photo-1521572163474-6864f9cf17ab?auto=format&fit=crop&q=80&w=800"},
		{ID: 2, Name: "Slim Fit Denim Jeans", UnitPrice: decimal.RequireFromString("49.99"), Category: "Pants",
			Colors: []string{"#1e3a8a", "#000000"}, Sizes: []string{"30", "32", "34", "36"}, StockCount: 25,
			ImageURL: "https://images.unsplash.com/photo-1542272454315-4c01d7abdf4a?auto=format&fit=crop&q=80&w=800"},
		{ID: 3, Name: "Canvas Sneaker Pro", UnitPrice: decimal.RequireFromString("55.00"), Category: "Footwear",
			Colors: []string{"#ffffff", "#000000", "#ff0000"}, Sizes: []string{"7", "8", "9", "10", "11"}, StockCount: 18,
			ImageURL: "https://images.unsplash.com/photo-1549298916-b41d501d3772?auto=format&fit=crop&q=80&w=800"},
		{ID: 4, Name: "Vintage Floral Dress", UnitPrice: decimal.RequireFromString("65.00"), Category: "Dresses",
			Colors: []string{"#ffb7b2"}, Sizes: []string{"XS", "S", "M", "L"}, StockCount: 12,
			ImageURL: "https://images.unsplash.com/photo-1515372039744-b8f02a3ae446?auto=format&fit=crop&q=80&w=800"},
		{ID: 5, Name: "Minimalist Hoodie", UnitPrice: decimal.RequireFromString("45.00"), Category: "Outerwear",
			Colors: []string{"#808080", "#000000"}, Sizes: []string{"S", "M", "L", "XL"}, StockCount: 30,
			ImageURL: "https://images.unsplash.com/photo-1556905055-8f358a7a47b2?auto=format&fit=crop&q=80&w=800"},
		{ID: 6, Name: "Leather Crossbody Bag", UnitPrice: decimal.RequireFromString("89.00"), Category: "Accessories",
			Colors: []string{"#8B4513", "#000000"}, Sizes: []string{"One Size"}, StockCount: 8,
			ImageURL: "https://images.unsplash.com/photo-1548036328-c9fa89d128fa?auto=format&fit=crop&q=80&w=800"},
		{ID: 7, Name: "Summer Linen Shorts", UnitPrice: decimal.RequireFromString("35.00"), Category: "Shorts",
			Colors: []string{"#F5F5DC", "#1e3a8a"}, Sizes: []string{"S", "M", "L"}, StockCount: 22,
			ImageURL: "https://images.unsplash.com/photo-1591195853828-11db59a44f6b?auto=format&fit=crop&q=80&w=800"},
		{ID: 8, Name: "Urban Backpack", UnitPrice: decimal.RequireFromString("59.00"), Category: "Accessories",
			Colors: []string{"#000000"}, Sizes: []string{"One Size"}, StockCount: 15,
			ImageURL: "https://images.unsplash.com/photo-1553062407-98eeb64c6a62?auto=format&fit=crop&q=80&w=800"},
	}
}
