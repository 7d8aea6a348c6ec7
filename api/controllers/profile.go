package controllers

import (
	"net/http"

	"github.com/chowpack/chowpack-engine/api/middleware"
	"github.com/chowpack/chowpack-engine/api/responses"
	profilesvc "github.com/chowpack/chowpack-engine/internal/profile"
	"github.com/chowpack/chowpack-engine/pkg/logger"
)

// ProfileDeliveryDetails returns the saved address/phone prefill and their
// recent-use histories.
func ProfileDeliveryDetails(profiles profilesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		details, err := profiles.Details(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, details)
	}
}
