package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/smartwear/pos-backend/internal/events"
	"github.com/smartwear/pos-backend/pkg/db"
	"github.com/smartwear/pos-backend/pkg/db/models"
	"github.com/smartwear/pos-backend/pkg/enums"
	pkgerrors "github.com/smartwear/pos-backend/pkg/errors"
	"github.com/smartwear/pos-backend/pkg/pagination"
)

// Service records outbound events as ledger rows and lists them back.
type Service interface {
	events.Recorder
	ListSales(ctx context.Context, params pagination.Params) (*SalePage, error)
	ListRefunds(ctx context.Context, params pagination.Params) (*RefundPage, error)
}

type service struct {
	repo Repository
}

// NewService builds a ledger service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, errors.New("ledger repository required")
	}
	return &service{repo: repo}, nil
}

// RecordSale stores the sale. Replaying an already stored sale id is a no-op.
func (s *service) RecordSale(ctx context.Context, sale events.SaleCompleted) error {
	if sale.SaleID == "" {
		return errors.New("sale id is required")
	}
	record := &models.SaleRecord{
		ID:             sale.SaleID,
		SessionID:      sale.SessionID,
		TerminalID:     sale.TerminalID,
		PaymentMethod:  sale.PaymentMethod,
		ItemCount:      sale.ItemCount,
		Subtotal:       sale.Subtotal,
		DiscountKind:   sale.DiscountKind,
		DiscountValue:  sale.DiscountValue,
		DiscountAmount: sale.DiscountAmount,
		Tax:            sale.Tax,
		Total:          sale.TotalAmount,
		Lines:          make([]models.SaleLine, 0, len(sale.Lines)),
		OccurredAt:     sale.OccurredAt.UTC(),
	}
	if record.DiscountKind == "" {
		record.DiscountKind = enums.DiscountKindNone
	}
	for _, l := range sale.Lines {
		record.Lines = append(record.Lines, models.SaleLine(l))
	}
	if err := s.repo.CreateSale(ctx, record); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil
		}
		return fmt.Errorf("insert sale record: %w", err)
	}
	return nil
}

// RecordRefund stores the refund. Replaying an already stored refund id is a no-op.
func (s *service) RecordRefund(ctx context.Context, refund events.RefundProcessed) error {
	if refund.RefundID == "" {
		return errors.New("refund id is required")
	}
	record := &models.RefundRecord{
		ID:          refund.RefundID,
		SessionID:   refund.SessionID,
		TerminalID:  refund.TerminalID,
		OrderID:     refund.OrderID,
		RefundTotal: refund.RefundTotal,
		Lines:       make([]models.RefundLine, 0, len(refund.Lines)),
		OccurredAt:  refund.OccurredAt.UTC(),
	}
	for _, l := range refund.Lines {
		record.Lines = append(record.Lines, models.RefundLine(l))
	}
	if err := s.repo.CreateRefund(ctx, record); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil
		}
		return fmt.Errorf("insert refund record: %w", err)
	}
	return nil
}

func (s *service) ListSales(ctx context.Context, params pagination.Params) (*SalePage, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.ListSales(ctx, limit+1, cursor)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	page := &SalePage{Items: make([]SaleDTO, 0, len(rows))}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{At: last.OccurredAt, ID: last.ID})
	}
	for _, row := range rows {
		page.Items = append(page.Items, saleFromModel(row))
	}
	return page, nil
}

func (s *service) ListRefunds(ctx context.Context, params pagination.Params) (*RefundPage, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.ListRefunds(ctx, limit+1, cursor)
	if err != nil {
		return nil, fmt.Errorf("list refunds: %w", err)
	}
	page := &RefundPage{Items: make([]RefundDTO, 0, len(rows))}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{At: last.OccurredAt, ID: last.ID})
	}
	for _, row := range rows {
		page.Items = append(page.Items, refundFromModel(row))
	}
	return page, nil
}

// SaleDTO is the admin view of a sale record.
type SaleDTO struct {
	ID             string              `json:"id"`
	SessionID      string              `json:"session_id"`
	TerminalID     string              `json:"terminal_id"`
	PaymentMethod  enums.PaymentMethod `json:"payment_method"`
	ItemCount      int                 `json:"item_count"`
	Subtotal       decimal.Decimal     `json:"subtotal"`
	DiscountKind   enums.DiscountKind  `json:"discount_kind"`
	DiscountValue  decimal.Decimal     `json:"discount_value"`
	DiscountAmount decimal.Decimal     `json:"discount_amount"`
	Tax            decimal.Decimal     `json:"tax"`
	Total          decimal.Decimal     `json:"total"`
	Lines          []models.SaleLine   `json:"lines"`
	OccurredAt     time.Time           `json:"occurred_at"`
}

// RefundDTO is the admin view of a refund record.
type RefundDTO struct {
	ID          string              `json:"id"`
	SessionID   string              `json:"session_id"`
	TerminalID  string              `json:"terminal_id"`
	OrderID     string              `json:"order_id"`
	RefundTotal decimal.Decimal     `json:"refund_total"`
	Lines       []models.RefundLine `json:"lines"`
	OccurredAt  time.Time           `json:"occurred_at"`
}

type SalePage struct {
	Items      []SaleDTO `json:"items"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

type RefundPage struct {
	Items      []RefundDTO `json:"items"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

func saleFromModel(row models.SaleRecord) SaleDTO {
	return SaleDTO{
		ID:             row.ID,
		SessionID:      row.SessionID,
		TerminalID:     row.TerminalID,
		PaymentMethod:  row.PaymentMethod,
		ItemCount:      row.ItemCount,
		Subtotal:       row.Subtotal,
		DiscountKind:   row.DiscountKind,
		DiscountValue:  row.DiscountValue,
		DiscountAmount: row.DiscountAmount,
		Tax:            row.Tax,
		Total:          row.Total,
		Lines:          row.Lines,
		OccurredAt:     row.OccurredAt,
	}
}

func refundFromModel(row models.RefundRecord) RefundDTO {
	return RefundDTO{
		ID:          row.ID,
		SessionID:   row.SessionID,
		TerminalID:  row.TerminalID,
		OrderID:     row.OrderID,
		RefundTotal: row.RefundTotal,
		Lines:       row.Lines,
		OccurredAt:  row.OccurredAt,
	}
}
