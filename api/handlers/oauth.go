package handlers

import (
	"context"
	"crypto/subtle"
	"net/http"

	services "github.com/algolovers/newsletter-console-services/api/services"
	"github.com/algolovers/newsletter-console-services/internal/authn"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	stateCookieName = "oauth2_state"
	stateMaxAge     = 300
)

// OAuthProvider runs the authorization code flow against an identity provider.
type OAuthProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*authn.OAuthProfile, error)
}

// OAuth2Authorization starts a login by redirecting to the provider's consent page.
func OAuth2Authorization(svc *services.Service, provider OAuthProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := uuid.NewString()

		http.SetCookie(w, &http.Cookie{
			Name:     stateCookieName,
			Value:    state,
			Path:     "/",
			MaxAge:   stateMaxAge,
			HttpOnly: true,
			Secure:   svc.Config.JWT.SecureCookie,
			SameSite: http.SameSiteLaxMode,
		})

		http.Redirect(w, r, provider.AuthCodeURL(state), http.StatusFound)
	}
}

// OAuth2Callback completes a login. On success the user receives the application cookie and is
// redirected to the user details endpoint, otherwise to the failure page.
func OAuth2Callback(svc *services.Service, provider OAuthProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := zerolog.Ctx(r.Context()).With().Str("handler", "OAuth2Callback").Logger()

		fail := func(msg string, err error) {
			logger.Warn().Err(err).Msg(msg)
			clearStateCookie(w, svc)
			http.Redirect(w, r, svc.Config.OAuth.FailureURL, http.StatusFound)
		}

		query := r.URL.Query()
		if providerErr := query.Get("error"); providerErr != "" {
			fail("provider returned an error: "+providerErr, nil)
			return
		}

		stateCookie, err := r.Cookie(stateCookieName)
		state := query.Get("state")
		if err != nil || state == "" || subtle.ConstantTimeCompare([]byte(stateCookie.Value), []byte(state)) != 1 {
			fail("oauth state mismatch", err)
			return
		}

		profile, err := provider.Exchange(r.Context(), query.Get("code"))
		if err != nil {
			fail("oauth code exchange failed", err)
			return
		}

		user, err := svc.FindOrCreateOAuthUser(r.Context(), profile)
		if err != nil {
			fail("could not load user for oauth profile", err)
			return
		}

		cookie, err := svc.GenerateCookieForAuthenticatedUser(user)
		if err != nil {
			fail("could not issue token", err)
			return
		}

		clearStateCookie(w, svc)
		http.SetCookie(w, cookie)

		logger.Info().Str("user_id", user.ID).Msg("user signed in")
		http.Redirect(w, r, svc.Config.OAuth.SuccessPath, http.StatusFound)
	}
}

func clearStateCookie(w http.ResponseWriter, svc *services.Service) {
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   svc.Config.JWT.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
