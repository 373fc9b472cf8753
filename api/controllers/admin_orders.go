package controllers

import (
	"net/http"
	"strings"

	"github.com/prodataworld/prodata-backend/api/responses"
	"github.com/prodataworld/prodata-backend/api/validators"
	"github.com/prodataworld/prodata-backend/internal/orders"
	"github.com/prodataworld/prodata-backend/pkg/enums"
	pkgerrors "github.com/prodataworld/prodata-backend/pkg/errors"
	"github.com/prodataworld/prodata-backend/pkg/logger"
)

type orderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending processing completed cancelled"`
}

type bulkOrderStatusRequest struct {
	OrderIDs []uint `json:"order_ids" validate:"required,min=1,max=500,dive,gt=0"`
	Status   string `json:"status" validate:"required,oneof=pending processing completed cancelled"`
}

type repushResponse struct {
	OrderID   uint     `json:"order_id"`
	Status    string   `json:"order_pusher_status"`
	Providers []string `json:"providers"`
	Reference string   `json:"reference_id,omitempty"`
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
}

// AdminOrdersList pages every reseller's orders.
func AdminOrdersList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		filters, params, err := parseOrderQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		userID, err := validators.ParseQueryUint(r, "user_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters.UserID = userID

		page, err := svc.ListAll(r.Context(), filters, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newPageView(page, newOrderView))
	}
}

func AdminOrderStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload orderStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.UpdateStatus(r.Context(), id, enums.OrderStatus(strings.TrimSpace(payload.Status)))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, "Order status updated", newOrderView(order))
	}
}

func AdminOrdersBulkStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		var payload bulkOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		count, err := svc.BulkUpdateStatus(r.Context(), payload.OrderIDs, enums.OrderStatus(payload.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, "Order statuses updated", map[string]int64{"updated": count})
	}
}

// AdminOrderRepush sends an open order to its providers again.
func AdminOrderRepush(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		outcome, err := svc.Repush(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		providers := outcome.Providers
		if providers == nil {
			providers = []string{}
		}
		responses.WriteMessage(w, http.StatusOK, "Order re-pushed", repushResponse{
			OrderID:   id,
			Status:    string(outcome.Status),
			Providers: providers,
			Reference: outcome.Reference,
			Succeeded: outcome.Succeeded,
			Failed:    outcome.Failed,
		})
	}
}
