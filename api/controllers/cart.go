package controllers

import (
	"net/http"

	"github.com/prodataworld/prodata-backend/api/middleware"
	"github.com/prodataworld/prodata-backend/api/responses"
	"github.com/prodataworld/prodata-backend/api/validators"
	cartsvc "github.com/prodataworld/prodata-backend/internal/cart"
	pkgerrors "github.com/prodataworld/prodata-backend/pkg/errors"
	"github.com/prodataworld/prodata-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

type addCartItemRequest struct {
	ProductVariantID  uint   `json:"product_variant_id" validate:"required,gt=0"`
	BeneficiaryNumber string `json:"beneficiary_number" validate:"required,phone"`
	Quantity          int    `json:"quantity" validate:"omitempty,min=1,max=100"`
}

type cartResponse struct {
	Items []cartItemView  `json:"items"`
	Total decimal.Decimal `json:"total"`
}

func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		summary, err := svc.List(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := cartResponse{Items: make([]cartItemView, 0, len(summary.Items)), Total: summary.Total}
		for i := range summary.Items {
			item := &summary.Items[i]
			resp.Items = append(resp.Items, newCartItemView(item, cartsvc.ItemPrice(*item)))
		}
		responses.WriteSuccess(w, resp)
	}
}

// CartAdd stages a bundle priced from the caller's role catalogue.
func CartAdd(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		item, err := svc.Add(ctx, middleware.UserIDFromContext(ctx), middleware.RoleFromContext(ctx), cartsvc.AddInput{
			ProductVariantID:  payload.ProductVariantID,
			BeneficiaryNumber: validators.SanitizeString(payload.BeneficiaryNumber, 20),
			Quantity:          payload.Quantity,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusCreated, "Item added to cart", newCartItemView(item, cartsvc.ItemPrice(*item)))
	}
}

func CartRemove(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		itemID, err := validators.ParseIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Remove(r.Context(), middleware.UserIDFromContext(r.Context()), itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, "Item removed from cart", nil)
	}
}
