package controllers

import (
	"net/http"
	"strings"

	"github.com/prodataworld/prodata-backend/api/middleware"
	"github.com/prodataworld/prodata-backend/api/responses"
	"github.com/prodataworld/prodata-backend/api/validators"
	"github.com/prodataworld/prodata-backend/internal/orders"
	"github.com/prodataworld/prodata-backend/pkg/enums"
	pkgerrors "github.com/prodataworld/prodata-backend/pkg/errors"
	"github.com/prodataworld/prodata-backend/pkg/logger"
	"github.com/prodataworld/prodata-backend/pkg/pagination"
)

type placeOrderRequest struct {
	BeneficiaryNumber string `json:"beneficiary_number" validate:"required,phone"`
	NetworkID         uint   `json:"network_id" validate:"required,gt=0"`
	Size              string `json:"size" validate:"required,max=32"`
}

// NormalOrderPlace buys one bundle for one beneficiary, paid from the wallet.
func NormalOrderPlace(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		userID := middleware.UserIDFromContext(r.Context())

		var payload placeOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.PlaceAPIOrder(r.Context(), userID, orders.APIOrderInput{
			BeneficiaryNumber: validators.SanitizeString(payload.BeneficiaryNumber, 20),
			ProductID:         payload.NetworkID,
			Size:              validators.SanitizeString(payload.Size, 32),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusCreated, "Order created successfully", newOrderView(order))
	}
}

// NormalOrdersList pages the caller's orders, latest first.
func NormalOrdersList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
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

		page, err := svc.List(r.Context(), middleware.UserIDFromContext(r.Context()), filters, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newPageView(page, newOrderView))
	}
}

func NormalOrderGet(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
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

		order, err := svc.Get(r.Context(), middleware.UserIDFromContext(r.Context()), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderView(order))
	}
}

// Checkout turns every cart item into its own paid order.
func Checkout(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		result, err := svc.Checkout(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusCreated, result.Message, newOrderViews(result.Orders))
	}
}

func parseOrderQuery(r *http.Request) (orders.ListFilters, pagination.Params, error) {
	params, err := validators.ParsePagination(r)
	if err != nil {
		return orders.ListFilters{}, params, err
	}
	orderID, err := validators.ParseQueryUint(r, "order_id")
	if err != nil {
		return orders.ListFilters{}, params, err
	}

	query := r.URL.Query()
	filters := orders.ListFilters{
		OrderID:           orderID,
		BeneficiaryNumber: validators.SanitizeString(query.Get("beneficiary_number"), 20),
		Network:           validators.SanitizeString(query.Get("network"), 32),
	}
	if raw := strings.ToLower(strings.TrimSpace(query.Get("status"))); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return orders.ListFilters{}, params, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filters.Status = status
	}
	return filters, params, nil
}
