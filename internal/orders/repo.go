package orders

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/smartwear/pos-backend/pkg/db/models"
)

// Repository loads and seeds historical orders with their lines.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
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

// List returns every order, oldest first, with lines in their original order.
func (r *Repository) List(ctx context.Context) ([]HistoricalOrder, error) {
	var rows []models.HistoricalOrder
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Order("placed_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]HistoricalOrder, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromModel(row))
	}
	return out, nil
}

// FindByID loads a single order. It returns gorm.ErrRecordNotFound when absent.
func (r *Repository) FindByID(ctx context.Context, orderID string) (*HistoricalOrder, error) {
	var row models.HistoricalOrder
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("order_id = ?", orderID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	order := fromModel(row)
	return &order, nil
}

// Seed inserts orders whose ids are not stored yet and returns how many were added.
func (r *Repository) Seed(ctx context.Context, orders []HistoricalOrder) (int64, error) {
	var added int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, o := range orders {
			row := toModel(o)
			lines := row.Lines
			row.Lines = nil
			res := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "order_id"}}, DoNothing: true}).Create(&row)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				continue
			}
			if len(lines) > 0 {
				if err := tx.Create(&lines).Error; err != nil {
					return err
				}
			}
			added++
		}
		return nil
	})
	return added, err
}

func toModel(o HistoricalOrder) models.HistoricalOrder {
	row := models.HistoricalOrder{
		OrderID:  o.OrderID,
		PlacedAt: o.PlacedAt,
		Total:    o.Total,
		Status:   o.Status,
		Lines:    make([]models.HistoricalOrderLine, 0, len(o.Lines)),
	}
	for i, l := range o.Lines {
		row.Lines = append(row.Lines, models.HistoricalOrderLine{
			OrderID:   o.OrderID,
			LineID:    l.LineID,
			Position:  i,
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			Color:     l.Color,
			Size:      l.Size,
		})
	}
	return row
}

func fromModel(row models.HistoricalOrder) HistoricalOrder {
	o := HistoricalOrder{
		OrderID:  row.OrderID,
		PlacedAt: row.PlacedAt,
		Total:    row.Total,
		Status:   row.Status,
		Lines:    make([]Line, 0, len(row.Lines)),
	}
	for _, l := range row.Lines {
		o.Lines = append(o.Lines, Line{
			LineID:    l.LineID,
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			Color:     l.Color,
			Size:      l.Size,
		})
	}
	return o
}
