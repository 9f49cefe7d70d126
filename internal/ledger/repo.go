package ledger

import (
	"context"

	"gorm.io/gorm"

	"github.com/smartwear/pos-backend/internal/repo"
	"github.com/smartwear/pos-backend/pkg/db/models"
	"github.com/smartwear/pos-backend/pkg/pagination"
)

// Repository persists sale and refund records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateSale(ctx context.Context, record *models.SaleRecord) error
	CreateRefund(ctx context.Context, record *models.RefundRecord) error
	ListSales(ctx context.Context, limit int, cursor *pagination.Cursor) ([]models.SaleRecord, error)
	ListRefunds(ctx context.Context, limit int, cursor *pagination.Cursor) ([]models.RefundRecord, error)
}

type repository struct {
	repo.Base
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: r.Rebind(tx)}
}

func (r *repository) CreateSale(ctx context.Context, record *models.SaleRecord) error {
	return r.DB(ctx).Create(record).Error
}

func (r *repository) CreateRefund(ctx context.Context, record *models.RefundRecord) error {
	return r.DB(ctx).Create(record).Error
}

func (r *repository) ListSales(ctx context.Context, limit int, cursor *pagination.Cursor) ([]models.SaleRecord, error) {
	var rows []models.SaleRecord
	if err := newestFirst(r.DB(ctx), limit, cursor).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListRefunds(ctx context.Context, limit int, cursor *pagination.Cursor) ([]models.RefundRecord, error) {
	var rows []models.RefundRecord
	if err := newestFirst(r.DB(ctx), limit, cursor).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func newestFirst(q *gorm.DB, limit int, cursor *pagination.Cursor) *gorm.DB {
	if cursor != nil {
		q = q.Where("occurred_at < ? OR (occurred_at = ? AND id < ?)", cursor.At, cursor.At, cursor.ID)
	}
	return q.Order("occurred_at DESC").Order("id DESC").Limit(limit)
}
