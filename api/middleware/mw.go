package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/algolovers/newsletter-console-services/internal/authn"
	"github.com/algolovers/newsletter-console-services/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type contextKey string
type tokenKey string

const ClaimsKey contextKey = "claims"
const UserKey contextKey = "user"
const TokenKey tokenKey = "token"

const unauthorisedMessage = "Unauthorised Request"

// UserFinder loads the user a token was issued to.
type UserFinder interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// UserFromContext returns the authenticated user placed in the context by JWTMiddleware.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserKey).(*models.User)
	return user, ok && user != nil
}

// TokenFromContext returns the raw token of the current request.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(TokenKey).(string)
	return token
}

// JWTMiddleware authenticates requests with an application token taken from the Authorization
// header, or from the cookie named cookieName when no header is sent.
func JWTMiddleware(jwtSvc *authn.JwtService, users UserFinder, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				logger := zerolog.Ctx(r.Context()).With().
					Str("handler", "JWTMiddleware").Logger()

				token, err := extractToken(r, cookieName)
				if err != nil {
					logger.Debug().Err(err).Msg("no usable token on request")
					AuthEntryPoint(w, r, err)
					return
				}

				// Parse the token for JWT claims
				claims, err := jwtSvc.ParseToken(token)
				if err != nil {
					logger.Warn().Err(err).Msg("invalid jwt token")
					AuthEntryPoint(w, r, err)
					return
				}

				user, err := users.GetUserByID(r.Context(), claims.Subject)
				if err != nil {
					logger.Error().Err(err).Str("subject", claims.Subject).Msg("could not load token subject")
					AuthEntryPoint(w, r, err)
					return
				}

				if !jwtSvc.ValidateToken(claims, user) {
					logger.Warn().Str("subject", claims.Subject).Msg("token rejected for user")
					AuthEntryPoint(w, r, authn.ErrStaleToken)
					return
				}

				// Add the user, token and claims to the context
				ctx := context.WithValue(r.Context(), TokenKey, token)
				ctx = context.WithValue(ctx, ClaimsKey, *claims)
				ctx = context.WithValue(ctx, UserKey, user)

				next.ServeHTTP(w, r.WithContext(ctx))
			},
		)
	}
}

// TokenSubjectKey keys rate limiting by the subject of a correctly signed token, else by client
// address. It runs ahead of JWTMiddleware, so unauthenticated traffic is limited before any
// user lookup.
func TokenSubjectKey(jwtSvc *authn.JwtService, cookieName string) KeyFunc {
	return func(r *http.Request) string {
		if token, err := extractToken(r, cookieName); err == nil {
			if claims, err := jwtSvc.ParseToken(token); err == nil {
				return "user:" + claims.Subject
			}
		}
		return clientKey(r)
	}
}

func extractToken(r *http.Request, cookieName string) (string, error) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader || token == "" {
			return "", errors.New("invalid token format")
		}
		return token, nil
	}

	cookie, err := r.Cookie(cookieName)
	if err != nil || cookie.Value == "" {
		return "", errors.New("authorization header missing")
	}
	return cookie.Value, nil
}

// AuthEntryPoint rejects an unauthenticated request.
func AuthEntryPoint(w http.ResponseWriter, r *http.Request, err error) {
	zerolog.Ctx(r.Context()).Debug().Err(err).Str("path", r.URL.Path).Msg("unauthorised request")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(models.NewResult(false, nil, unauthorisedMessage))
}

// WithLogger adds a logger to the context and logs request information.
func WithLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			logger := log.With().
				Str("host", r.Host).
				Str("method", r.Method).
				Str("url", r.URL.String()).
				Str("remote_addr", r.RemoteAddr).
				Time("timestamp", time.Now()).
				Logger()

			// Add the logger to the context
			ctx := logger.WithContext(r.Context())
			next.ServeHTTP(w, r.WithContext(ctx))
		},
	)
}
