package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smartwear/pos-backend/api/controllers"
	"github.com/smartwear/pos-backend/api/middleware"
	"github.com/smartwear/pos-backend/internal/catalog"
	"github.com/smartwear/pos-backend/internal/ledger"
	"github.com/smartwear/pos-backend/internal/pos"
	"github.com/smartwear/pos-backend/pkg/config"
	"github.com/smartwear/pos-backend/pkg/enums"
	"github.com/smartwear/pos-backend/pkg/logger"
	pkgredis "github.com/smartwear/pos-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	pingers map[string]controllers.Pinger,
	gatherer prometheus.Gatherer,
	idempotencyStore pkgredis.IdempotencyStore,
	cat *catalog.Catalog,
	posService pos.Service,
	ledgerService ledger.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, pingers))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Actor(logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Route("/v1", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.MemberRoleCashier, enums.MemberRoleAdmin))

			r.Get("/catalog", controllers.CatalogList(cat, logg))
			r.Get("/catalog/categories", controllers.CatalogCategories(cat, logg))
			r.Get("/discounts", controllers.DiscountPresets())

			r.Route("/pos/sessions", func(r chi.Router) {
				r.Post("/", controllers.OpenSession(posService, logg))

				r.Route("/{sessionId}", func(r chi.Router) {
					r.Get("/", controllers.GetSession(posService, logg))

					r.Post("/selection", controllers.SelectProduct(posService, logg))
					r.Patch("/selection", controllers.UpdateSelection(posService, logg))
					r.Delete("/selection", controllers.ClearSelection(posService, logg))
					r.Post("/selection/confirm", controllers.ConfirmAddToCart(posService, logg))

					r.Delete("/lines/{lineId}", controllers.RemoveLine(posService, logg))
					r.Put("/discount", controllers.SetDiscount(posService, logg))
					r.Put("/payment-method", controllers.SetPaymentMethod(posService, logg))
					r.Post("/checkout", controllers.Checkout(posService, logg))
					r.Post("/reset", controllers.ResetCart(posService, logg))

					r.Route("/returns", func(r chi.Router) {
						r.Delete("/", controllers.CancelReturn(posService, logg))
						r.Post("/search", controllers.SearchOrder(posService, logg))
						r.Post("/lines/{lineId}/toggle", controllers.ToggleReturnLine(posService, logg))
						r.Patch("/lines/{lineId}", controllers.SetReturnQuantity(posService, logg))
						r.Post("/process", controllers.ProcessReturn(posService, logg))
					})
				})
			})
		})

		r.Route("/admin/v1", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.MemberRoleAdmin))
			r.Get("/sales", controllers.AdminListSales(ledgerService, logg))
			r.Get("/refunds", controllers.AdminListRefunds(ledgerService, logg))
		})
	})

	return r
}
