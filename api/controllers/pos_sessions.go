package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/smartwear/pos-backend/api/middleware"
	"github.com/smartwear/pos-backend/api/responses"
	"github.com/smartwear/pos-backend/api/validators"
	"github.com/smartwear/pos-backend/internal/pos"
	"github.com/smartwear/pos-backend/internal/pricing"
	"github.com/smartwear/pos-backend/pkg/enums"
	pkgerrors "github.com/smartwear/pos-backend/pkg/errors"
	"github.com/smartwear/pos-backend/pkg/logger"
)

// sessionAction runs one service call for the {sessionId} in the path.
type sessionAction func(r *http.Request, sessionID string) (any, error)

func sessionHandler(svc pos.Service, logg *logger.Logger, action sessionAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pos service unavailable"))
			return
		}
		sessionID, err := validators.PathParam(r, "sessionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithSessionID(ctx, sessionID)
			r = r.WithContext(ctx)
		}
		result, err := action(r, sessionID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type openSessionRequest struct {
	TerminalID string `json:"terminal_id" validate:"omitempty,max=64"`
}

// OpenSession starts a session for the terminal in the body or, when omitted,
// the X-Terminal-Id header.
func OpenSession(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pos service unavailable"))
			return
		}
		var payload openSessionRequest
		if err := validators.DecodeOptionalJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		terminalID := strings.TrimSpace(payload.TerminalID)
		if terminalID == "" {
			terminalID = middleware.TerminalIDFromContext(r.Context())
		}
		view, err := svc.Open(r.Context(), terminalID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

func GetSession(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return sessionHandler(svc, logg, func(r *http.Request, id string) (any, error) {
		return svc.Get(r.Context(), id)
	})
}

type selectProductRequest struct {
	ProductID int `json:"product_id" validate:"required,gte=1"`
}

func SelectProduct(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return sessionHandler(svc, logg, func(r *http.Request, id string) (any, error) {
		var payload selectProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return nil, err
		}
		return svc.SelectProduct(r.Context(), id, payload.ProductID)
	})
}

type updateSelectionRequest struct {
	Size     *string `json:"size,omitempty"`
	Color    *string `json:"color,omitempty"`
	Quantity *int    `json:"quantity,omitempty"`
}

func UpdateSelection(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return sessionHandler(svc, logg, func(r *http.Request, id string) (any, error) {
		var payload updateSelectionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return nil, err
		}
		if payload.Size == nil && payload.Color == nil && payload.Quantity == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "size, color or quantity is required")
		}
		return svc.UpdateSelection(r.Context(), id, pos.SelectionUpdate{
			Size:     payload.Size,
			Color:    payload.Color,
			Quantity: payload.Quantity,
		})
	})
}

func ClearSelection(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return sessionHandler(svc, logg, func(r *http.Request, id string) (any, error) {
		return svc.ClearSelection(r.Context(), id)
	})
}

func ConfirmAddToCart(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return sessionHandler(svc, logg, func(r *http.Request, id string) (any, error) {
		return svc.ConfirmAddToCart(r.Context(), id)
	})
}

func RemoveLine(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return sessionHandler(svc, logg, func(r *http.Request, id string) (any, error) {
		lineID, err := validators.PathParam(r, "lineId")
		if err != nil {
			return nil, err
		}
		return svc.RemoveLine(r.Context(), id, lineID)
	})
}

type discountRequest struct {
	Preset string          `json:"preset,omitempty"`
	Kind   string          `json:"kind,omitempty" validate:"omitempty,discount_kind"`
	Value  decimal.Decimal `json:"value"`
}

func (d discountRequest) toDiscount() (pricing.Discount, error) {
	if d.Preset != "" {
		preset, ok := pricing.LookupPreset(d.Preset)
		if !ok {
			return pricing.Discount{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown discount preset").
				WithDetails(map[string]any{"preset": d.Preset})
		}
		return preset.Discount, nil
	}
	if d.Kind == "" {
		return pricing.Discount{}, pkgerrors.New(pkgerrors.CodeValidation, "kind or preset is required")
	}
	kind, err := enums.ParseDiscountKind(strings.ToLower(d.Kind))
	if err != nil {
		return pricing.Discount{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid discount kind")
	}
	return pricing.NewDiscount(kind, d.Value)
}

// SetDiscount replaces the cart discount with an explicit kind/value or a preset code.
func SetDiscount(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return sessionHandler(svc, logg, func(r *http.Request, id string) (any, error) {
		var payload discountRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return nil, err
		}
		discount, err := payload.toDiscount()
		if err != nil {
			return nil, err
		}
		return svc.SetDiscount(r.Context(), id, discount)
	})
}

type paymentMethodRequest struct {
	PaymentMethod string `json:"payment_method" validate:"required,payment_method"`
}

func SetPaymentMethod(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return sessionHandler(svc, logg, func(r *http.Request, id string) (any, error) {
		var payload paymentMethodRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return nil, err
		}
		method, err := enums.ParsePaymentMethod(strings.ToLower(payload.PaymentMethod))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
		}
		return svc.SetPaymentMethod(r.Context(), id, method)
	})
}

func ResetCart(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return sessionHandler(svc, logg, func(r *http.Request, id string) (any, error) {
		return svc.Reset(r.Context(), id)
	})
}

type checkoutRequest struct {
	PaymentMethod string `json:"payment_method,omitempty" validate:"omitempty,payment_method"`
}

// Checkout completes the sale. Without a body the session's payment method is used.
func Checkout(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return sessionHandler(svc, logg, func(r *http.Request, id string) (any, error) {
		var payload checkoutRequest
		if err := validators.DecodeOptionalJSONBody(r, &payload); err != nil {
			return nil, err
		}
		var method enums.PaymentMethod
		if payload.PaymentMethod != "" {
			parsed, err := enums.ParsePaymentMethod(strings.ToLower(payload.PaymentMethod))
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
			}
			method = parsed
		}
		return svc.Checkout(r.Context(), id, method)
	})
}

type searchOrderRequest struct {
	OrderID string `json:"order_id" validate:"required,max=64"`
}

func SearchOrder(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return sessionHandler(svc, logg, func(r *http.Request, id string) (any, error) {
		var payload searchOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return nil, err
		}
		return svc.SearchOrder(r.Context(), id, payload.OrderID)
	})
}

func ToggleReturnLine(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return sessionHandler(svc, logg, func(r *http.Request, id string) (any, error) {
		lineID, err := validators.PathParam(r, "lineId")
		if err != nil {
			return nil, err
		}
		return svc.ToggleReturnLine(r.Context(), id, lineID)
	})
}

type returnQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required"`
}

func SetReturnQuantity(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return sessionHandler(svc, logg, func(r *http.Request, id string) (any, error) {
		lineID, err := validators.PathParam(r, "lineId")
		if err != nil {
			return nil, err
		}
		var payload returnQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return nil, err
		}
		return svc.SetReturnQuantity(r.Context(), id, lineID, payload.Quantity)
	})
}

func ProcessReturn(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return sessionHandler(svc, logg, func(r *http.Request, id string) (any, error) {
		return svc.ProcessReturn(r.Context(), id)
	})
}

func CancelReturn(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return sessionHandler(svc, logg, func(r *http.Request, id string) (any, error) {
		return svc.CancelReturn(r.Context(), id)
	})
}
