package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/smartwear/pos-backend/api/controllers"
	"github.com/smartwear/pos-backend/api/middleware"
	"github.com/smartwear/pos-backend/internal/catalog"
	"github.com/smartwear/pos-backend/internal/ledger"
	"github.com/smartwear/pos-backend/internal/orders"
	"github.com/smartwear/pos-backend/internal/pos"
	"github.com/smartwear/pos-backend/internal/pricing"
	"github.com/smartwear/pos-backend/internal/returns"
	"github.com/smartwear/pos-backend/internal/sessions"
	"github.com/smartwear/pos-backend/internal/workbench"
	"github.com/smartwear/pos-backend/pkg/config"
	"github.com/smartwear/pos-backend/pkg/db/models"
	"github.com/smartwear/pos-backend/pkg/ids"
	"github.com/smartwear/pos-backend/pkg/logger"
	"github.com/smartwear/pos-backend/pkg/metrics"
	pkgredis "github.com/smartwear/pos-backend/pkg/redis"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type memoryIdempotencyStore struct {
	mu   sync.Mutex
	data map[string]string
}

func (m *memoryIdempotencyStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", pkgredis.Nil
	}
	return v, nil
}

func (m *memoryIdempotencyStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = fmt.Sprint(value)
	return true, nil
}

func (m *memoryIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "test:idempotency:" + scope + ":" + id
}

type testEnv struct {
	handler http.Handler
	ledger  ledger.Service
}

func newTestEnv(t *testing.T, pingers map[string]controllers.Pinger) testEnv {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, conn.AutoMigrate(models.All()...))

	ledgerSvc, err := ledger.NewService(ledger.NewRepository(conn))
	require.NoError(t, err)

	cat, err := catalog.New(catalog.DemoProducts())
	require.NoError(t, err)
	bench, err := workbench.New(cat, ids.NewSequence("line", 1), workbench.Options{TaxRate: pricing.DefaultTaxRate, StockTracking: true})
	require.NoError(t, err)
	book, err := orders.NewBook(orders.DemoOrders())
	require.NoError(t, err)
	desk, err := returns.NewDesk(book)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	posSvc, err := pos.NewService(pos.Params{
		Workbench: bench,
		Desk:      desk,
		Store:     sessions.NewMemoryStore(0),
		Locker:    sessions.NewMemoryLocker(),
		Recorder:  ledgerSvc,
		Metrics:   metrics.NewPOSMetrics(reg),
		Logger:    logger.Nop(),
		IDs:       ids.NewSequence("id", 1),
	})
	require.NoError(t, err)

	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	store := &memoryIdempotencyStore{data: map[string]string{}}
	handler := NewRouter(cfg, logger.Nop(), pingers, reg, store, cat, posSvc, ledgerSvc)
	return testEnv{handler: handler, ledger: ledgerSvc}
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (e testEnv) do(t *testing.T, method, path, role, body string, headers ...string) (int, envelope) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set(middleware.ActorRoleHeader, role)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)

	var env envelope
	if rr.Body.Len() > 0 && strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	}
	return rr.Code, env
}

type sessionView struct {
	SessionID string `json:"session_id"`
	Cart      []struct {
		LineID string `json:"line_id"`
	} `json:"cart"`
	Quote struct {
		Total string `json:"total"`
	} `json:"quote"`
	Returns struct {
		Phase         string `json:"phase"`
		RefundPreview string `json:"refund_preview"`
	} `json:"returns"`
}

func decodeView(t *testing.T, raw json.RawMessage) sessionView {
	t.Helper()
	var v sessionView
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t, map[string]controllers.Pinger{"db": stubPinger{}, "redis": nil})

	code, _ := env.do(t, http.MethodGet, "/health/live", "", "")
	assert.Equal(t, http.StatusOK, code)

	code, body := env.do(t, http.MethodGet, "/health/ready", "", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body.Data), `"redis":"disabled"`)
}

func TestReadyReportsDownDependency(t *testing.T) {
	env := newTestEnv(t, map[string]controllers.Pinger{"db": stubPinger{err: fmt.Errorf("boom")}})

	code, body := env.do(t, http.MethodGet, "/health/ready", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "DEPENDENCY_ERROR", body.Error.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	env.handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAPIRequiresActorRole(t *testing.T) {
	env := newTestEnv(t, nil)

	code, body := env.do(t, http.MethodGet, "/api/v1/catalog", "", "")
	assert.Equal(t, http.StatusForbidden, code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "FORBIDDEN", body.Error.Code)

	code, _ = env.do(t, http.MethodGet, "/api/v1/catalog", "manager", "")
	assert.Equal(t, http.StatusForbidden, code)
}

func TestCatalogRoutes(t *testing.T) {
	env := newTestEnv(t, nil)

	code, body := env.do(t, http.MethodGet, "/api/v1/catalog", "cashier", "")
	require.Equal(t, http.StatusOK, code)
	var products []catalog.Product
	require.NoError(t, json.Unmarshal(body.Data, &products))
	assert.Len(t, products, 8)

	code, body = env.do(t, http.MethodGet, "/api/v1/catalog?q=hoodie", "cashier", "")
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(body.Data, &products))
	require.Len(t, products, 1)
	assert.Equal(t, "Minimalist Hoodie", products[0].Name)

	code, _ = env.do(t, http.MethodGet, "/api/v1/catalog/categories", "admin", "")
	assert.Equal(t, http.StatusOK, code)

	code, body = env.do(t, http.MethodGet, "/api/v1/discounts", "cashier", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body.Data), "STAFF10")
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	env := newTestEnv(t, nil)

	code, _ := env.do(t, http.MethodGet, "/api/admin/v1/sales", "cashier", "")
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = env.do(t, http.MethodGet, "/api/admin/v1/refunds", "admin", "")
	assert.Equal(t, http.StatusOK, code)

	code, body := env.do(t, http.MethodGet, "/api/admin/v1/sales?limit=0", "admin", "")
	assert.Equal(t, http.StatusBadRequest, code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
}

func TestCheckoutFlowOverHTTP(t *testing.T) {
	env := newTestEnv(t, nil)

	code, body := env.do(t, http.MethodPost, "/api/v1/pos/sessions", "cashier", "", middleware.TerminalIDHeader, "T1")
	require.Equal(t, http.StatusCreated, code)
	id := decodeView(t, body.Data).SessionID
	require.NotEmpty(t, id)
	base := "/api/v1/pos/sessions/" + id

	for _, productID := range []int{1, 2} {
		code, _ = env.do(t, http.MethodPost, base+"/selection", "cashier", fmt.Sprintf(`{"product_id":%d}`, productID))
		require.Equal(t, http.StatusOK, code)
		code, _ = env.do(t, http.MethodPost, base+"/selection/confirm", "cashier", "")
		require.Equal(t, http.StatusOK, code)
	}

	code, body = env.do(t, http.MethodPut, base+"/discount", "cashier", `{"preset":"staff10"}`)
	require.Equal(t, http.StatusOK, code)
	view := decodeView(t, body.Data)
	assert.Len(t, view.Cart, 2)
	assert.Equal(t, "74.24", view.Quote.Total)

	code, _ = env.do(t, http.MethodPut, base+"/payment-method", "cashier", `{"payment_method":"bitcoin"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = env.do(t, http.MethodPost, base+"/checkout", "cashier", `{"payment_method":"CARD"}`, "Idempotency-Key", "k-1")
	require.Equal(t, http.StatusOK, code, string(body.Data))
	first := string(body.Data)

	code, body = env.do(t, http.MethodPost, base+"/checkout", "cashier", `{"payment_method":"CARD"}`, "Idempotency-Key", "k-1")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, first, string(body.Data), "replay returns the first response")

	code, body = env.do(t, http.MethodGet, "/api/admin/v1/sales", "admin", "")
	require.Equal(t, http.StatusOK, code)
	var page ledger.SalePage
	require.NoError(t, json.Unmarshal(body.Data, &page))
	require.Len(t, page.Items, 1, "replayed checkout must not record a second sale")
	assert.True(t, decimal.RequireFromString("74.2401").Equal(page.Items[0].Total), page.Items[0].Total.String())

	code, body = env.do(t, http.MethodPost, base+"/checkout", "cashier", "")
	assert.Equal(t, http.StatusBadRequest, code, "cart is empty after checkout")
	require.NotNil(t, body.Error)
}

func TestReturnsFlowOverHTTP(t *testing.T) {
	env := newTestEnv(t, nil)

	code, body := env.do(t, http.MethodPost, "/api/v1/pos/sessions", "cashier", `{"terminal_id":"T2"}`)
	require.Equal(t, http.StatusCreated, code)
	base := "/api/v1/pos/sessions/" + decodeView(t, body.Data).SessionID

	code, body = env.do(t, http.MethodPost, base+"/returns/search", "cashier", `{"order_id":"ORD-0000"}`)
	assert.Equal(t, http.StatusNotFound, code)
	require.NotNil(t, body.Error)

	code, _ = env.do(t, http.MethodPost, base+"/returns/lines/7830-1/toggle", "cashier", "")
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, body = env.do(t, http.MethodPost, base+"/returns/search", "cashier", `{"order_id":"ORD-7830"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "located", decodeView(t, body.Data).Returns.Phase)

	code, _ = env.do(t, http.MethodPost, base+"/returns/lines/7830-1/toggle", "cashier", "")
	require.Equal(t, http.StatusOK, code)

	code, body = env.do(t, http.MethodPatch, base+"/returns/lines/7830-1", "cashier", `{"quantity":1}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "45", decodeView(t, body.Data).Returns.RefundPreview)

	code, body = env.do(t, http.MethodPost, base+"/returns/process", "cashier", "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body.Data), `"refund"`)

	code, body = env.do(t, http.MethodGet, "/api/admin/v1/refunds", "admin", "")
	require.Equal(t, http.StatusOK, code)
	var page ledger.RefundPage
	require.NoError(t, json.Unmarshal(body.Data, &page))
	assert.Len(t, page.Items, 1)

	code, _ = env.do(t, http.MethodDelete, base+"/returns", "cashier", "")
	assert.Equal(t, http.StatusOK, code)
}

func TestUnknownSessionIsNotFound(t *testing.T) {
	env := newTestEnv(t, nil)
	code, body := env.do(t, http.MethodGet, "/api/v1/pos/sessions/nope", "cashier", "")
	assert.Equal(t, http.StatusNotFound, code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "NOT_FOUND", body.Error.Code)
}

func TestCatalogCategoryFilter(t *testing.T) {
	env := newTestEnv(t, nil)

	code, body := env.do(t, http.MethodGet, "/api/v1/catalog?category=Nope", "cashier", "")
	require.Equal(t, http.StatusOK, code)
	var products []catalog.Product
	require.NoError(t, json.Unmarshal(body.Data, &products))
	assert.Empty(t, products)
}
