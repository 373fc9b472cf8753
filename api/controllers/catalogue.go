package controllers

import (
	"net/http"

	"github.com/prodataworld/prodata-backend/api/middleware"
	"github.com/prodataworld/prodata-backend/api/responses"
	"github.com/prodataworld/prodata-backend/api/validators"
	"github.com/prodataworld/prodata-backend/internal/alerts"
	product "github.com/prodataworld/prodata-backend/internal/products"
	pkgerrors "github.com/prodataworld/prodata-backend/pkg/errors"
	"github.com/prodataworld/prodata-backend/pkg/logger"
)

// BundleSizes lists the in-stock sizes for a network, priced for the caller.
// Anonymous callers see customer pricing.
func BundleSizes(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		network := validators.SanitizeString(r.URL.Query().Get("network"), 32)
		sizes, err := svc.BundleSizes(r.Context(), network, middleware.RoleFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sizes)
	}
}

type alertView struct {
	ID      uint   `json:"id"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

func ActiveAlerts(svc alerts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "alerts service unavailable"))
			return
		}

		rows, err := svc.ListActive(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]alertView, 0, len(rows))
		for _, row := range rows {
			out = append(out, alertView{ID: row.ID, Title: row.Title, Message: row.Message})
		}
		responses.WriteSuccess(w, out)
	}
}
