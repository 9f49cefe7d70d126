package workbench

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartwear/pos-backend/internal/catalog"
	"github.com/smartwear/pos-backend/internal/pricing"
	"github.com/smartwear/pos-backend/pkg/enums"
	pkgerrors "github.com/smartwear/pos-backend/pkg/errors"
	"github.com/smartwear/pos-backend/pkg/ids"
)

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	products := []catalog.Product{
		{ID: 1, Name: "Tee", UnitPrice: money("25.00"), Category: "T-Shirts", Colors: []string{"black", "white"}, Sizes: []string{"S", "M"}, StockCount: 10},
		{ID: 2, Name: "Jeans", UnitPrice: money("49.99"), Category: "Pants", Colors: []string{"blue"}, Sizes: []string{"32", "34"}, StockCount: 3},
		{ID: 3, Name: "Sold Out Cap", UnitPrice: money("15.00"), Category: "Accessories", Colors: []string{"red"}, Sizes: []string{"One Size"}, StockCount: 0},
	}
	c, err := catalog.New(products)
	require.NoError(t, err)
	return c
}

func newWorkbench(t *testing.T, stockTracking bool) *Workbench {
	t.Helper()
	w, err := New(testCatalog(t), ids.NewSequence("line", 1), Options{TaxRate: pricing.DefaultTaxRate, StockTracking: stockTracking})
	require.NoError(t, err)
	return w
}

func addProduct(t *testing.T, w *Workbench, s State, productID int) State {
	t.Helper()
	s, err := w.SelectProduct(s, productID)
	require.NoError(t, err)
	s, _, err = w.ConfirmAddToCart(s)
	require.NoError(t, err)
	return s
}

func TestSelectProductDefaultsToFirstSizeAndColor(t *testing.T) {
	w := newWorkbench(t, true)
	s, err := w.SelectProduct(NewState(), 1)
	require.NoError(t, err)
	require.NotNil(t, s.Pending)
	assert.Equal(t, Selection{ProductID: 1, Size: "S", Color: "black", Quantity: 1}, *s.Pending)

	s, err = w.SelectProduct(s, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Pending.ProductID, "new selection replaces the pending one")

	_, err = w.SelectProduct(s, 404)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestSetSizeAndColorValidateAgainstProduct(t *testing.T) {
	w := newWorkbench(t, true)
	s, _ := w.SelectProduct(NewState(), 1)

	s, err := w.SetSize(s, "M")
	require.NoError(t, err)
	s, err = w.SetColor(s, "white")
	require.NoError(t, err)
	assert.Equal(t, "M", s.Pending.Size)
	assert.Equal(t, "white", s.Pending.Color)

	unchanged, err := w.SetSize(s, "XXL")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
	assert.Equal(t, "M", unchanged.Pending.Size)

	_, err = w.SetColor(s, "green")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = w.SetSize(NewState(), "M")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), "no pending selection")
}

func TestSetQuantityClamps(t *testing.T) {
	w := newWorkbench(t, true)
	s, _ := w.SelectProduct(NewState(), 2)

	s, err := w.SetQuantity(s, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Pending.Quantity)

	s, _ = w.SetQuantity(s, -5)
	assert.Equal(t, 1, s.Pending.Quantity)

	s, _ = w.SetQuantity(s, 50)
	assert.Equal(t, 3, s.Pending.Quantity, "clamped at stock")

	untracked := newWorkbench(t, false)
	s, _ = untracked.SelectProduct(NewState(), 2)
	s, _ = untracked.SetQuantity(s, 50)
	assert.Equal(t, 50, s.Pending.Quantity)

	s, _ = w.SelectProduct(NewState(), 3)
	s, _ = w.SetQuantity(s, 4)
	assert.Equal(t, 4, s.Pending.Quantity, "no upper bound without stock")
}

func TestConfirmAddToCartAppendsLineAndClearsSelection(t *testing.T) {
	w := newWorkbench(t, true)
	s, _ := w.SelectProduct(NewState(), 1)
	s, _ = w.SetSize(s, "M")
	s, _ = w.SetQuantity(s, 2)

	s, line, err := w.ConfirmAddToCart(s)
	require.NoError(t, err)
	assert.Nil(t, s.Pending)
	require.Len(t, s.Cart, 1)
	assert.Equal(t, "line-1", line.LineID)
	assert.Equal(t, line, s.Cart[0])
	assert.Equal(t, 2, line.Quantity)
	assert.True(t, line.LineTotal().Equal(money("50")))

	s = addProduct(t, w, s, 1)
	require.Len(t, s.Cart, 2)
	assert.Equal(t, "line-2", s.Cart[1].LineID, "same product gets its own line")
	assert.Equal(t, 3, s.ItemCount())
}

func TestConfirmAddToCartRejections(t *testing.T) {
	w := newWorkbench(t, true)

	_, _, err := w.ConfirmAddToCart(NewState())
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	s, _ := w.SelectProduct(NewState(), 3)
	after, _, err := w.ConfirmAddToCart(s)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), "out of stock")
	assert.Empty(t, after.Cart)
	assert.NotNil(t, after.Pending)

	blank := s
	blank.Pending = &Selection{ProductID: 1, Quantity: 1}
	_, _, err = w.ConfirmAddToCart(blank)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), "size and color unset")

	untracked := newWorkbench(t, false)
	s, _ = untracked.SelectProduct(NewState(), 3)
	s, _, err = untracked.ConfirmAddToCart(s)
	require.NoError(t, err)
	assert.Len(t, s.Cart, 1)
}

func TestAddThenRemoveRestoresCart(t *testing.T) {
	w := newWorkbench(t, true)
	before := addProduct(t, w, NewState(), 2)

	after, line, err := w.ConfirmAddToCart(mustSelect(t, w, before, 1))
	require.NoError(t, err)
	restored := w.RemoveLine(after, line.LineID)

	assert.Equal(t, before.Cart, restored.Cart)
}

func TestRemoveUnknownLineIsNoop(t *testing.T) {
	w := newWorkbench(t, true)
	s := addProduct(t, w, NewState(), 1)
	assert.Equal(t, s.Cart, w.RemoveLine(s, "nope").Cart)
}

func TestTransitionsDoNotMutateInput(t *testing.T) {
	w := newWorkbench(t, true)
	s := addProduct(t, w, NewState(), 1)
	s = addProduct(t, w, s, 2)
	snapshot := s.clone()

	_ = w.RemoveLine(s, s.Cart[0].LineID)
	sel, _ := w.SelectProduct(s, 1)
	_, _ = w.SetQuantity(sel, 3)
	_, _, _ = w.Checkout(s, enums.PaymentMethodCard)

	assert.Equal(t, snapshot, s)
}

func TestDiscountAndPaymentMethod(t *testing.T) {
	w := newWorkbench(t, true)
	s := NewState()
	assert.Equal(t, enums.PaymentMethodCash, s.PaymentMethod)

	s, err := w.SetDiscount(s, pricing.Discount{Kind: enums.DiscountKindPercent, Value: money("10")})
	require.NoError(t, err)
	s, err = w.SetDiscount(s, pricing.Discount{Kind: enums.DiscountKindFixed, Value: money("5")})
	require.NoError(t, err)
	assert.Equal(t, enums.DiscountKindFixed, s.Discount.Kind, "replacing overwrites")

	_, err = w.SetDiscount(s, pricing.Discount{Kind: enums.DiscountKindPercent, Value: money("150")})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	s, err = w.SetPaymentMethod(s, enums.PaymentMethodCard)
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentMethodCard, s.PaymentMethod)

	_, err = w.SetPaymentMethod(s, "crypto")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestScenarioAQuoteWithPercentDiscount(t *testing.T) {
	w := newWorkbench(t, true)
	s := addProduct(t, w, NewState(), 1)
	s = addProduct(t, w, s, 2)
	s, err := w.SetDiscount(s, pricing.Discount{Kind: enums.DiscountKindPercent, Value: money("10")})
	require.NoError(t, err)

	q := w.Quote(s)
	assert.True(t, q.Subtotal.Equal(money("74.99")))
	assert.True(t, q.DiscountAmount.Equal(money("7.499")))
	assert.True(t, q.Taxable.Equal(money("67.491")))
	assert.True(t, q.Tax.Equal(money("6.7491")))
	assert.True(t, q.Total.Equal(money("74.2401")))
	assert.Equal(t, "74.24", q.Rounded().Total.StringFixed(2))
}

func TestScenarioBCheckoutOfEmptyCartIsRejected(t *testing.T) {
	w := newWorkbench(t, true)
	s := NewState()
	after, sale, err := w.Checkout(s, enums.PaymentMethodCash)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
	assert.Equal(t, s, after)
	assert.Zero(t, sale.ItemCount)
}

func TestCheckoutBuildsSaleAndResetsCartAndDiscount(t *testing.T) {
	w := newWorkbench(t, true)
	s := addProduct(t, w, NewState(), 1)
	s, _ = w.SelectProduct(s, 2)
	s, _ = w.SetQuantity(s, 2)
	s, _, _ = w.ConfirmAddToCart(s)
	s, _ = w.SetDiscount(s, pricing.Discount{Kind: enums.DiscountKindFixed, Value: money("5")})

	next, sale, err := w.Checkout(s, enums.PaymentMethodCard)
	require.NoError(t, err)

	assert.Equal(t, 3, sale.ItemCount)
	assert.Equal(t, enums.PaymentMethodCard, sale.PaymentMethod)
	assert.True(t, sale.Subtotal.Equal(money("124.98")))
	assert.True(t, sale.DiscountAmount.Equal(money("5")))
	assert.True(t, sale.TotalAmount.Equal(money("131.978")))
	assert.Len(t, sale.Lines, 2)

	assert.Empty(t, next.Cart)
	assert.True(t, next.Discount.IsNone())
	assert.Equal(t, enums.PaymentMethodCard, next.PaymentMethod)
}

func TestCheckoutUsesStatePaymentMethodByDefault(t *testing.T) {
	w := newWorkbench(t, true)
	s := addProduct(t, w, NewState(), 1)
	_, sale, err := w.Checkout(s, "")
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentMethodCash, sale.PaymentMethod)
}

func TestResetKeepsPaymentMethod(t *testing.T) {
	w := newWorkbench(t, true)
	s := addProduct(t, w, NewState(), 1)
	s, _ = w.SetPaymentMethod(s, enums.PaymentMethodCard)
	s, _ = w.SetDiscount(s, pricing.Discount{Kind: enums.DiscountKindPercent, Value: money("20")})
	s, _ = w.SelectProduct(s, 2)

	s = w.Reset(s)
	assert.Empty(t, s.Cart)
	assert.Nil(t, s.Pending)
	assert.True(t, s.Discount.IsNone())
	assert.Equal(t, enums.PaymentMethodCard, s.PaymentMethod)
}

func TestClearSelection(t *testing.T) {
	w := newWorkbench(t, true)
	s, _ := w.SelectProduct(NewState(), 1)
	assert.Nil(t, w.ClearSelection(s).Pending)
}

func mustSelect(t *testing.T, w *Workbench, s State, productID int) State {
	t.Helper()
	s, err := w.SelectProduct(s, productID)
	require.NoError(t, err)
	return s
}
