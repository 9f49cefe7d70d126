// Package workbench implements the cart side of a terminal session: product
// selection, cart lines, discount, payment method and checkout.
package workbench

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/smartwear/pos-backend/internal/catalog"
	"github.com/smartwear/pos-backend/internal/events"
	"github.com/smartwear/pos-backend/internal/pricing"
	"github.com/smartwear/pos-backend/pkg/enums"
	pkgerrors "github.com/smartwear/pos-backend/pkg/errors"
	"github.com/smartwear/pos-backend/pkg/ids"
)

// Options tunes pricing and stock behavior.
type Options struct {
	TaxRate decimal.Decimal
	// StockTracking caps quantities at stock and refuses out-of-stock products.
	StockTracking bool
}

// Workbench applies cart transitions against a catalog.
type Workbench struct {
	catalog       *catalog.Catalog
	lineIDs       ids.Generator
	taxRate       decimal.Decimal
	stockTracking bool
}

// New wires a workbench. A zero tax rate in opts is kept as zero.
func New(cat *catalog.Catalog, lineIDs ids.Generator, opts Options) (*Workbench, error) {
	if cat == nil {
		return nil, errors.New("catalog required")
	}
	if lineIDs == nil {
		return nil, errors.New("line id generator required")
	}
	return &Workbench{
		catalog:       cat,
		lineIDs:       lineIDs,
		taxRate:       opts.TaxRate,
		stockTracking: opts.StockTracking,
	}, nil
}

// Catalog exposes the catalog the workbench sells from.
func (w *Workbench) Catalog() *catalog.Catalog {
	return w.catalog
}

// TaxRate is the rate applied by Quote.
func (w *Workbench) TaxRate() decimal.Decimal {
	return w.taxRate
}

// SelectProduct starts configuring productID with its first size, first
// color and quantity 1, replacing any pending selection.
func (w *Workbench) SelectProduct(s State, productID int) (State, error) {
	product, err := w.catalog.Lookup(productID)
	if err != nil {
		return s, err
	}
	next := s.clone()
	next.Pending = &Selection{
		ProductID: product.ID,
		Size:      product.Sizes[0],
		Color:     product.Colors[0],
		Quantity:  1,
	}
	return next, nil
}

// SetSize changes the pending selection's size.
func (w *Workbench) SetSize(s State, size string) (State, error) {
	product, err := w.pendingProduct(s)
	if err != nil {
		return s, err
	}
	if !product.HasSize(size) {
		return s, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("size %q is not offered for %s", size, product.Name)).
			WithDetails(map[string]any{"sizes": product.Sizes})
	}
	next := s.clone()
	next.Pending.Size = size
	return next, nil
}

// SetColor changes the pending selection's color.
func (w *Workbench) SetColor(s State, color string) (State, error) {
	product, err := w.pendingProduct(s)
	if err != nil {
		return s, err
	}
	if !product.HasColor(color) {
		return s, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("color %q is not offered for %s", color, product.Name)).
			WithDetails(map[string]any{"colors": product.Colors})
	}
	next := s.clone()
	next.Pending.Color = color
	return next, nil
}

// SetQuantity sets the pending quantity, clamped to at least 1 and, with stock
// tracking on and stock available, at most the stock count.
func (w *Workbench) SetQuantity(s State, n int) (State, error) {
	product, err := w.pendingProduct(s)
	if err != nil {
		return s, err
	}
	next := s.clone()
	next.Pending.Quantity = w.clampQuantity(product, n)
	return next, nil
}

// ConfirmAddToCart appends the pending selection as a new cart line and clears it.
func (w *Workbench) ConfirmAddToCart(s State) (State, CartLine, error) {
	product, err := w.pendingProduct(s)
	if err != nil {
		return s, CartLine{}, err
	}
	pending := s.Pending
	if pending.Size == "" || pending.Color == "" {
		return s, CartLine{}, pkgerrors.New(pkgerrors.CodeValidation, "size and color must be selected")
	}
	if w.stockTracking && product.StockCount == 0 {
		return s, CartLine{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s is out of stock", product.Name))
	}

	line := CartLine{
		LineID:    w.lineIDs.NewID(),
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: product.UnitPrice,
		Quantity:  w.clampQuantity(product, pending.Quantity),
		Color:     pending.Color,
		Size:      pending.Size,
		ImageURL:  product.ImageURL,
	}
	next := s.clone()
	next.Cart = append(next.Cart, line)
	next.Pending = nil
	return next, line, nil
}

// ClearSelection drops the pending selection.
func (w *Workbench) ClearSelection(s State) State {
	next := s.clone()
	next.Pending = nil
	return next
}

// RemoveLine deletes the line with lineID. Unknown ids leave the cart unchanged.
func (w *Workbench) RemoveLine(s State, lineID string) State {
	next := s.clone()
	next.Cart = next.Cart[:0]
	for _, l := range s.Cart {
		if l.LineID != lineID {
			next.Cart = append(next.Cart, l)
		}
	}
	return next
}

// SetDiscount replaces the active discount.
func (w *Workbench) SetDiscount(s State, d pricing.Discount) (State, error) {
	valid, err := pricing.NewDiscount(d.Kind, d.Value)
	if err != nil {
		return s, err
	}
	next := s.clone()
	next.Discount = valid
	return next, nil
}

// SetPaymentMethod records how the customer will pay.
func (w *Workbench) SetPaymentMethod(s State, method enums.PaymentMethod) (State, error) {
	if !method.IsValid() {
		return s, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported payment method %q", method))
	}
	next := s.clone()
	next.PaymentMethod = method
	return next, nil
}

// Reset empties the cart, the pending selection and the discount. The payment
// method is kept.
func (w *Workbench) Reset(s State) State {
	next := NewState()
	if s.PaymentMethod.IsValid() {
		next.PaymentMethod = s.PaymentMethod
	}
	return next
}

// Quote prices the current cart. It is computed on demand and never cached.
func (w *Workbench) Quote(s State) pricing.Quote {
	return pricing.Compute(s.PricingLines(), s.Discount, w.taxRate)
}

// Checkout summarizes the cart as a sale and returns the state to use once the
// sale has been recorded. An empty method falls back to the state's method.
// The caller must only commit the returned state after the sale is recorded.
func (w *Workbench) Checkout(s State, method enums.PaymentMethod) (State, events.SaleCompleted, error) {
	if s.IsEmpty() {
		return s, events.SaleCompleted{}, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	if method == "" {
		method = s.PaymentMethod
	}
	if !method.IsValid() {
		return s, events.SaleCompleted{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported payment method %q", method))
	}

	quote := w.Quote(s)
	sale := events.SaleCompleted{
		TotalAmount:    quote.Total,
		ItemCount:      quote.ItemCount,
		PaymentMethod:  method,
		Subtotal:       quote.Subtotal,
		DiscountKind:   s.Discount.Kind,
		DiscountValue:  s.Discount.Value,
		DiscountAmount: quote.DiscountAmount,
		Tax:            quote.Tax,
		Lines:          make([]events.SaleLine, 0, len(s.Cart)),
	}
	if sale.DiscountKind == "" {
		sale.DiscountKind = enums.DiscountKindNone
	}
	for _, l := range s.Cart {
		sale.Lines = append(sale.Lines, events.SaleLine{
			LineID:    l.LineID,
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			Color:     l.Color,
			Size:      l.Size,
		})
	}

	next := s.clone()
	next.Cart = []CartLine{}
	next.Discount = pricing.NoDiscount()
	next.PaymentMethod = method
	return next, sale, nil
}

func (w *Workbench) pendingProduct(s State) (catalog.Product, error) {
	if s.Pending == nil {
		return catalog.Product{}, pkgerrors.New(pkgerrors.CodeValidation, "no product selected")
	}
	return w.catalog.Lookup(s.Pending.ProductID)
}

func (w *Workbench) clampQuantity(product catalog.Product, n int) int {
	if n < 1 {
		n = 1
	}
	if w.stockTracking && product.StockCount >= 1 && n > product.StockCount {
		n = product.StockCount
	}
	return n
}
