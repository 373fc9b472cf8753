package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/prodataworld/prodata-backend/api/responses"
	"github.com/prodataworld/prodata-backend/api/validators"
	"github.com/prodataworld/prodata-backend/internal/wallet"
	pkgerrors "github.com/prodataworld/prodata-backend/pkg/errors"
	"github.com/prodataworld/prodata-backend/pkg/logger"
)

type walletAdjustRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note" validate:"max=255"`
}

// AdminWalletCredit adds to a user's balance.
func AdminWalletCredit(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return adminWalletAdjust(svc, logg, true)
}

// AdminWalletDebit takes from a user's balance; it never overdraws.
func AdminWalletDebit(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return adminWalletAdjust(svc, logg, false)
}

func adminWalletAdjust(svc wallet.Service, logg *logger.Logger, credit bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wallet service unavailable"))
			return
		}
		userID, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload walletAdjustRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		txn, err := svc.AdminAdjust(r.Context(), wallet.AdjustInput{
			UserID: userID,
			Amount: payload.Amount,
			Credit: credit,
			Note:   validators.SanitizeString(payload.Note, 255),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		message := "Wallet debited"
		if credit {
			message = "Wallet credited"
		}
		responses.WriteMessage(w, http.StatusCreated, message, newTransactionView(txn))
	}
}
