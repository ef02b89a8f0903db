package controllers

import (
	"net/http"

	"github.com/feastly/feastly-backend/api/responses"
	"github.com/feastly/feastly-backend/api/validators"
	paymentsvc "github.com/feastly/feastly-backend/internal/payments"
	"github.com/feastly/feastly-backend/pkg/logger"
)

// PaymentsConfirm handles the browser callback after the gateway's checkout
// widget reports a successful capture. The webhook remains the authority; this
// path just settles the order faster for the customer.
func PaymentsConfirm(svc *paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload paymentsvc.CallbackRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.ConfirmCallback(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
