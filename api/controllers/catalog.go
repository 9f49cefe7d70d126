package controllers

import (
	"net/http"

	"github.com/smartwear/pos-backend/api/responses"
	"github.com/smartwear/pos-backend/api/validators"
	"github.com/smartwear/pos-backend/internal/catalog"
	"github.com/smartwear/pos-backend/internal/pricing"
	pkgerrors "github.com/smartwear/pos-backend/pkg/errors"
	"github.com/smartwear/pos-backend/pkg/logger"
)

const maxQueryLen = 100

// CatalogList filters the catalog by ?category= (default All) and a
// case-insensitive ?q= name search.
func CatalogList(cat *catalog.Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cat == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}
		category := validators.ParseQueryString(r, "category", maxQueryLen)
		if category == "" {
			category = catalog.AllCategories
		}
		query := validators.ParseQueryString(r, "q", maxQueryLen)
		responses.WriteSuccess(w, cat.Filter(category, query))
	}
}

func CatalogCategories(cat *catalog.Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cat == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}
		responses.WriteSuccess(w, cat.Categories())
	}
}

func DiscountPresets() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, pricing.Presets())
	}
}
