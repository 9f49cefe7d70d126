// Package pos runs terminal sessions: it loads a session, applies one
// workbench or returns transition and stores the result.
package pos

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/smartwear/pos-backend/internal/events"
	"github.com/smartwear/pos-backend/internal/pricing"
	"github.com/smartwear/pos-backend/internal/returns"
	"github.com/smartwear/pos-backend/internal/sessions"
	"github.com/smartwear/pos-backend/internal/workbench"
	"github.com/smartwear/pos-backend/pkg/enums"
	pkgerrors "github.com/smartwear/pos-backend/pkg/errors"
	"github.com/smartwear/pos-backend/pkg/ids"
	"github.com/smartwear/pos-backend/pkg/logger"
	"github.com/smartwear/pos-backend/pkg/metrics"
)

const (
	opSelectProduct     = "select_product"
	opUpdateSelection   = "update_selection"
	opConfirmAddToCart  = "confirm_add_to_cart"
	opSetDiscount       = "set_discount"
	opSetPaymentMethod  = "set_payment_method"
	opCheckout          = "checkout"
	opSearchOrder       = "search_order"
	opToggleReturnLine  = "toggle_return_line"
	opSetReturnQuantity = "set_return_quantity"
	opProcessReturn     = "process_return"
)

// SelectionUpdate changes the pending selection. Nil fields are left alone;
// size, color and quantity are applied in that order.
type SelectionUpdate struct {
	Size     *string
	Color    *string
	Quantity *int
}

// Service exposes the terminal operations for a session.
type Service interface {
	Open(ctx context.Context, terminalID string) (View, error)
	Get(ctx context.Context, sessionID string) (View, error)

	SelectProduct(ctx context.Context, sessionID string, productID int) (View, error)
	UpdateSelection(ctx context.Context, sessionID string, update SelectionUpdate) (View, error)
	ClearSelection(ctx context.Context, sessionID string) (View, error)
	ConfirmAddToCart(ctx context.Context, sessionID string) (View, error)
	RemoveLine(ctx context.Context, sessionID, lineID string) (View, error)
	SetDiscount(ctx context.Context, sessionID string, discount pricing.Discount) (View, error)
	SetPaymentMethod(ctx context.Context, sessionID string, method enums.PaymentMethod) (View, error)
	Reset(ctx context.Context, sessionID string) (View, error)
	Checkout(ctx context.Context, sessionID string, method enums.PaymentMethod) (CheckoutResult, error)

	SearchOrder(ctx context.Context, sessionID, orderID string) (View, error)
	ToggleReturnLine(ctx context.Context, sessionID, lineID string) (View, error)
	SetReturnQuantity(ctx context.Context, sessionID, lineID string, qty int) (View, error)
	ProcessReturn(ctx context.Context, sessionID string) (RefundResult, error)
	CancelReturn(ctx context.Context, sessionID string) (View, error)
}

// Params collects the service collaborators. Metrics, Logger, IDs and Clock
// are optional.
type Params struct {
	Workbench *workbench.Workbench
	Desk      *returns.Desk
	Store     sessions.Store
	Locker    sessions.Locker
	Recorder  events.Recorder
	Metrics   *metrics.POSMetrics
	Logger    *logger.Logger
	IDs       ids.Generator
	Clock     func() time.Time
}

type service struct {
	bench    *workbench.Workbench
	desk     *returns.Desk
	store    sessions.Store
	locker   sessions.Locker
	recorder events.Recorder
	metrics  *metrics.POSMetrics
	logg     *logger.Logger
	ids      ids.Generator
	now      func() time.Time
}

// NewService builds the session service.
func NewService(p Params) (Service, error) {
	if p.Workbench == nil {
		return nil, errors.New("workbench required")
	}
	if p.Desk == nil {
		return nil, errors.New("returns desk required")
	}
	if p.Store == nil {
		return nil, errors.New("session store required")
	}
	if p.Locker == nil {
		return nil, errors.New("session locker required")
	}
	if p.Recorder == nil {
		return nil, errors.New("event recorder required")
	}
	if p.Logger == nil {
		p.Logger = logger.Nop()
	}
	if p.IDs == nil {
		p.IDs = ids.UUID{}
	}
	if p.Clock == nil {
		p.Clock = time.Now
	}
	return &service{
		bench:    p.Workbench,
		desk:     p.Desk,
		store:    p.Store,
		locker:   p.Locker,
		recorder: p.Recorder,
		metrics:  p.Metrics,
		logg:     p.Logger,
		ids:      p.IDs,
		now:      p.Clock,
	}, nil
}

func (s *service) Open(ctx context.Context, terminalID string) (View, error) {
	terminalID = strings.TrimSpace(terminalID)
	if terminalID == "" {
		return View{}, pkgerrors.New(pkgerrors.CodeValidation, "terminal id is required")
	}
	now := s.now().UTC()
	rec := sessions.Record{
		ID:         s.ids.NewID(),
		TerminalID: terminalID,
		Workbench:  workbench.NewState(),
		Returns:    returns.NewState(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.Save(ctx, rec); err != nil {
		return View{}, err
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"session_id": rec.ID, "terminal_id": terminalID}), "pos session opened")
	return s.view(rec), nil
}

func (s *service) Get(ctx context.Context, sessionID string) (View, error) {
	rec, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return View{}, err
	}
	return s.view(rec), nil
}

func (s *service) SelectProduct(ctx context.Context, sessionID string, productID int) (View, error) {
	return s.apply(ctx, sessionID, opSelectProduct, func(rec *sessions.Record) error {
		next, err := s.bench.SelectProduct(rec.Workbench, productID)
		rec.Workbench = next
		return err
	})
}

func (s *service) UpdateSelection(ctx context.Context, sessionID string, update SelectionUpdate) (View, error) {
	return s.apply(ctx, sessionID, opUpdateSelection, func(rec *sessions.Record) error {
		state := rec.Workbench
		var err error
		if update.Size != nil {
			if state, err = s.bench.SetSize(state, *update.Size); err != nil {
				return err
			}
		}
		if update.Color != nil {
			if state, err = s.bench.SetColor(state, *update.Color); err != nil {
				return err
			}
		}
		if update.Quantity != nil {
			if state, err = s.bench.SetQuantity(state, *update.Quantity); err != nil {
				return err
			}
		}
		rec.Workbench = state
		return nil
	})
}

func (s *service) ClearSelection(ctx context.Context, sessionID string) (View, error) {
	return s.apply(ctx, sessionID, "", func(rec *sessions.Record) error {
		rec.Workbench = s.bench.ClearSelection(rec.Workbench)
		return nil
	})
}

func (s *service) ConfirmAddToCart(ctx context.Context, sessionID string) (View, error) {
	return s.apply(ctx, sessionID, opConfirmAddToCart, func(rec *sessions.Record) error {
		next, _, err := s.bench.ConfirmAddToCart(rec.Workbench)
		rec.Workbench = next
		return err
	})
}

func (s *service) RemoveLine(ctx context.Context, sessionID, lineID string) (View, error) {
	return s.apply(ctx, sessionID, "", func(rec *sessions.Record) error {
		rec.Workbench = s.bench.RemoveLine(rec.Workbench, lineID)
		return nil
	})
}

func (s *service) SetDiscount(ctx context.Context, sessionID string, discount pricing.Discount) (View, error) {
	return s.apply(ctx, sessionID, opSetDiscount, func(rec *sessions.Record) error {
		next, err := s.bench.SetDiscount(rec.Workbench, discount)
		rec.Workbench = next
		return err
	})
}

func (s *service) SetPaymentMethod(ctx context.Context, sessionID string, method enums.PaymentMethod) (View, error) {
	return s.apply(ctx, sessionID, opSetPaymentMethod, func(rec *sessions.Record) error {
		next, err := s.bench.SetPaymentMethod(rec.Workbench, method)
		rec.Workbench = next
		return err
	})
}

func (s *service) Reset(ctx context.Context, sessionID string) (View, error) {
	return s.apply(ctx, sessionID, "", func(rec *sessions.Record) error {
		rec.Workbench = s.bench.Reset(rec.Workbench)
		return nil
	})
}

// Checkout records the sale and only then commits the emptied cart. A
// recorder failure leaves the session untouched.
func (s *service) Checkout(ctx context.Context, sessionID string, method enums.PaymentMethod) (CheckoutResult, error) {
	lease, err := s.lock(ctx, sessionID)
	if err != nil {
		return CheckoutResult{}, err
	}
	defer s.release(ctx, lease)

	rec, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return CheckoutResult{}, err
	}
	next, sale, err := s.bench.Checkout(rec.Workbench, method)
	if err != nil {
		s.metrics.IncRejection(opCheckout)
		return CheckoutResult{}, err
	}

	sub, err := s.reserve(ctx, &rec, &rec.PendingSale, sale)
	if err != nil {
		return CheckoutResult{}, err
	}
	sale.SaleID = sub.ID
	sale.SessionID = rec.ID
	sale.TerminalID = rec.TerminalID
	sale.OccurredAt = sub.OccurredAt

	ctx = s.logg.WithFields(ctx, map[string]any{"session_id": rec.ID, "terminal_id": rec.TerminalID, "sale_id": sale.SaleID})
	if err := s.recorder.RecordSale(ctx, sale); err != nil {
		s.logg.Error(ctx, "record sale failed", err)
		return CheckoutResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sale could not be recorded")
	}

	rec.Workbench = next
	rec.PendingSale = nil
	rec.UpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, rec); err != nil {
		return CheckoutResult{}, err
	}

	s.metrics.ObserveCheckout(string(sale.PaymentMethod), sale.TotalAmount.InexactFloat64())
	s.logg.Info(s.logg.WithField(ctx, "total", pricing.RoundMoney(sale.TotalAmount).StringFixed(2)), "sale completed")
	return CheckoutResult{Sale: sale, Session: s.view(rec)}, nil
}

func (s *service) SearchOrder(ctx context.Context, sessionID, orderID string) (View, error) {
	return s.apply(ctx, sessionID, opSearchOrder, func(rec *sessions.Record) error {
		next, err := s.desk.SearchOrder(rec.Returns, orderID)
		rec.Returns = next
		return err
	})
}

func (s *service) ToggleReturnLine(ctx context.Context, sessionID, lineID string) (View, error) {
	return s.apply(ctx, sessionID, opToggleReturnLine, func(rec *sessions.Record) error {
		next, err := s.desk.ToggleReturnLine(rec.Returns, lineID)
		rec.Returns = next
		return err
	})
}

func (s *service) SetReturnQuantity(ctx context.Context, sessionID, lineID string, qty int) (View, error) {
	return s.apply(ctx, sessionID, opSetReturnQuantity, func(rec *sessions.Record) error {
		next, err := s.desk.SetReturnQuantity(rec.Returns, lineID, qty)
		rec.Returns = next
		return err
	})
}

// ProcessReturn records the refund and only then returns the desk to idle.
// A recorder failure leaves the order located with its selection.
func (s *service) ProcessReturn(ctx context.Context, sessionID string) (RefundResult, error) {
	lease, err := s.lock(ctx, sessionID)
	if err != nil {
		return RefundResult{}, err
	}
	defer s.release(ctx, lease)

	rec, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return RefundResult{}, err
	}
	next, refund, err := s.desk.ProcessReturn(rec.Returns)
	if err != nil {
		s.metrics.IncRejection(opProcessReturn)
		return RefundResult{}, err
	}

	sub, err := s.reserve(ctx, &rec, &rec.PendingRefund, refund)
	if err != nil {
		return RefundResult{}, err
	}
	refund.RefundID = sub.ID
	refund.SessionID = rec.ID
	refund.TerminalID = rec.TerminalID
	refund.OccurredAt = sub.OccurredAt

	ctx = s.logg.WithFields(ctx, map[string]any{"session_id": rec.ID, "order_id": refund.OrderID, "refund_id": refund.RefundID})
	if err := s.recorder.RecordRefund(ctx, refund); err != nil {
		s.logg.Error(ctx, "record refund failed", err)
		return RefundResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "refund could not be recorded")
	}

	rec.Returns = next
	rec.PendingRefund = nil
	rec.UpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, rec); err != nil {
		return RefundResult{}, err
	}

	s.metrics.ObserveRefund(refund.RefundTotal.InexactFloat64())
	s.logg.Info(s.logg.WithField(ctx, "refund_total", pricing.RoundMoney(refund.RefundTotal).StringFixed(2)), "refund processed")
	return RefundResult{Refund: refund, Session: s.view(rec)}, nil
}

func (s *service) CancelReturn(ctx context.Context, sessionID string) (View, error) {
	return s.apply(ctx, sessionID, "", func(rec *sessions.Record) error {
		rec.Returns = s.desk.Cancel(rec.Returns)
		return nil
	})
}

// apply loads the session under its lock, runs fn on a copy and saves it
// when fn succeeds. Rejections are counted under op when op is set.
func (s *service) apply(ctx context.Context, sessionID, op string, fn func(rec *sessions.Record) error) (View, error) {
	lease, err := s.lock(ctx, sessionID)
	if err != nil {
		return View{}, err
	}
	defer s.release(ctx, lease)

	rec, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return View{}, err
	}
	next := rec
	if err := fn(&next); err != nil {
		if op != "" {
			s.metrics.IncRejection(op)
		}
		return View{}, err
	}
	next.UpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, next); err != nil {
		return View{}, err
	}
	return s.view(next), nil
}

// reserve returns the id held in pending when it was minted for the same
// payload, so a retried submission reuses it. Otherwise a new id is minted
// and saved on the session before anything is recorded.
func (s *service) reserve(ctx context.Context, rec *sessions.Record, pending **sessions.Submission, payload any) (sessions.Submission, error) {
	fp, err := fingerprint(payload)
	if err != nil {
		return sessions.Submission{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fingerprint submission")
	}
	if cur := *pending; cur != nil && cur.Fingerprint == fp {
		return *cur, nil
	}
	sub := sessions.Submission{ID: s.ids.NewID(), Fingerprint: fp, OccurredAt: s.now().UTC()}
	*pending = &sub
	if err := s.store.Save(ctx, *rec); err != nil {
		return sessions.Submission{}, err
	}
	return sub, nil
}

func fingerprint(payload any) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

func (s *service) lock(ctx context.Context, sessionID string) (sessions.Lease, error) {
	lease, err := s.locker.TryLock(ctx, "session:"+sessionID)
	if err != nil {
		if errors.Is(err, sessions.ErrLocked) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "another request is already in progress for this session")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire session lock")
	}
	return lease, nil
}

func (s *service) release(ctx context.Context, lease sessions.Lease) {
	if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "release session lock failed")
	}
}
