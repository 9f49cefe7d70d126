package catalog

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/smartwear/pos-backend/pkg/db/models"
)

// Repository loads and seeds products.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// List returns every product ordered by id.
func (r *Repository) List(ctx context.Context) ([]Product, error) {
	var rows []models.Product
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromModel(row))
	}
	return out, nil
}

// Seed inserts products whose ids are not stored yet and returns how many were added.
func (r *Repository) Seed(ctx context.Context, products []Product) (int64, error) {
	if len(products) == 0 {
		return 0, nil
	}
	rows := make([]models.Product, 0, len(products))
	for _, p := range products {
		rows = append(rows, toModel(p))
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(&rows)
	return res.RowsAffected, res.Error
}

func toModel(p Product) models.Product {
	row := models.Product{
		ID:         p.ID,
		Name:       p.Name,
		UnitPrice:  p.UnitPrice,
		Category:   p.Category,
		Colors:     append([]string(nil), p.Colors...),
		Sizes:      append([]string(nil), p.Sizes...),
		StockCount: p.StockCount,
	}
	if p.ImageURL != "" {
		url := p.ImageURL
		row.ImageURL = &url
	}
	return row
}

func fromModel(row models.Product) Product {
	p := Product{
		ID:         row.ID,
		Name:       row.Name,
		UnitPrice:  row.UnitPrice,
		Category:   row.Category,
		Colors:     row.Colors,
		Sizes:      row.Sizes,
		StockCount: row.StockCount,
	}
	if row.ImageURL != nil {
		p.ImageURL = *row.ImageURL
	}
	return p
}
