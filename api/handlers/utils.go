package handlers

import (
	"errors"
	"net/http"

	"github.com/algolovers/newsletter-console-services/api/middleware"
	services "github.com/algolovers/newsletter-console-services/api/services"
	"github.com/algolovers/newsletter-console-services/models"
	"github.com/rs/zerolog"
)

var errMissingUser = errors.New("no authenticated user on request")

// serviceFunc is a service operation acting on a validated request for the authenticated user.
type serviceFunc[T any] func(svc *services.Service, r *http.Request, req T, user *models.User) (int, models.Result)

// handleRequest decodes and validates a JSON body of type T, then writes the Result of fn.
func handleRequest[T any](svc *services.Service, fn serviceFunc[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.UserFromContext(r.Context())
		if !ok {
			middleware.AuthEntryPoint(w, r, errMissingUser)
			return
		}

		var req T
		if err := services.DecodeAndValidate(r, &req); err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("Invalid request payload")
			services.HandleErrResponse(w, http.StatusBadRequest, err)
			return
		}

		status, result := fn(svc, r, req, user)
		services.WriteResponse(w, status, result)
	}
}
