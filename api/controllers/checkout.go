package controllers

import (
	"net/http"

	"github.com/chowpack/chowpack-engine/api/responses"
	"github.com/chowpack/chowpack-engine/api/validators"
	checkoutsvc "github.com/chowpack/chowpack-engine/internal/checkout"
	"github.com/chowpack/chowpack-engine/pkg/logger"
)

// Checkout runs the full validation sequence and submits the order. Soft
// stops (missing pack types, short balance) come back as 200s with a status;
// validation failures use the error envelope so the client can toast them.
func Checkout(checkouts checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload checkoutsvc.Request
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := checkouts.Checkout(r.Context(), identityFromRequest(r), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CheckoutQuote exposes the derived money breakdown on its own.
func CheckoutQuote(checkouts checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quote, err := checkouts.Quote(r.Context(), identityFromRequest(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}
