package handlers

import (
	"net/http"

	"github.com/algolovers/newsletter-console-services/api/middleware"
	services "github.com/algolovers/newsletter-console-services/api/services"
	"github.com/algolovers/newsletter-console-services/models"
	"github.com/rs/zerolog"
)

// @Summary Get the authenticated user
// @Description Returns the caller's details and the token used for the request.
// @Tags user
// @Produce json
// @Success 200 {object} models.Result{data=models.AuthorizedUserDetails}
// @Failure 401 {object} models.Result
// @Router /user/authorizedUserDetails [get]
func AuthorizedUserDetails(svc *services.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.UserFromContext(r.Context())
		if !ok {
			middleware.AuthEntryPoint(w, r, errMissingUser)
			return
		}

		status, result := svc.AuthorizedUserDetails(user, middleware.TokenFromContext(r.Context()))
		services.WriteResponse(w, status, result)
	}
}

// @Summary Invalidate all tokens of the authenticated user
// @Description Rotates the caller's validity code so that every token issued so far is rejected, and clears the session cookie.
// @Tags user
// @Produce json
// @Success 200 {object} models.Result
// @Failure 401 {object} models.Result
// @Failure 500 {object} models.Result
// @Router /user/invalidateTokens [post]
func InvalidateTokens(svc *services.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.UserFromContext(r.Context())
		if !ok {
			middleware.AuthEntryPoint(w, r, errMissingUser)
			return
		}

		if err := svc.InvalidateTokens(r.Context(), user); err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("Failed to invalidate tokens")
			services.HandleErrResponse(w, http.StatusInternalServerError, err)
			return
		}

		http.SetCookie(w, svc.ClearCookie())
		services.WriteResponse(w, http.StatusOK, models.NewResult(true, nil, "Tokens invalidated successfully"))
	}
}
