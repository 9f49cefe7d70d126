// Package seed writes and loads the reference data the terminal boots with:
// the product catalog and the historical order book.
package seed

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/smartwear/pos-backend/internal/catalog"
	"github.com/smartwear/pos-backend/internal/orders"
	"github.com/smartwear/pos-backend/pkg/logger"
)

// Result counts the rows a Demo run inserted.
type Result struct {
	Products int64
	Orders   int64
}

// Demo inserts the demo catalog and orders. Rows that already exist are left alone,
// so running it twice is harmless.
func Demo(ctx context.Context, db *gorm.DB, logg *logger.Logger) (Result, error) {
	if db == nil {
		return Result{}, errors.New("db required")
	}
	var res Result
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		added, err := catalog.NewRepository(tx).Seed(ctx, catalog.DemoProducts())
		if err != nil {
			return fmt.Errorf("seed products: %w", err)
		}
		res.Products = added

		added, err = orders.NewRepository(tx).Seed(ctx, orders.DemoOrders())
		if err != nil {
			return fmt.Errorf("seed orders: %w", err)
		}
		res.Orders = added
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{"products": res.Products, "orders": res.Orders}), "demo data seeded")
	}
	return res, nil
}

// Load reads the catalog and order book. An empty table falls back to the
// built-in demo set so a fresh database still boots a usable terminal.
func Load(ctx context.Context, db *gorm.DB, logg *logger.Logger) (*catalog.Catalog, *orders.Book, error) {
	if db == nil {
		return nil, nil, errors.New("db required")
	}

	products, err := catalog.NewRepository(db).List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load products: %w", err)
	}
	if len(products) == 0 {
		warn(ctx, logg, "catalog table empty, using demo products")
		products = catalog.DemoProducts()
	}
	cat, err := catalog.New(products)
	if err != nil {
		return nil, nil, fmt.Errorf("build catalog: %w", err)
	}

	history, err := orders.NewRepository(db).List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load orders: %w", err)
	}
	if len(history) == 0 {
		warn(ctx, logg, "order table empty, using demo orders")
		history = orders.DemoOrders()
	}
	book, err := orders.NewBook(history)
	if err != nil {
		return nil, nil, fmt.Errorf("build order book: %w", err)
	}
	return cat, book, nil
}

func warn(ctx context.Context, logg *logger.Logger, msg string) {
	if logg != nil {
		logg.Warn(ctx, msg)
	}
}
