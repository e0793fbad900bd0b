package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	services "github.com/algolovers/newsletter-console-services/api/services"
	"github.com/algolovers/newsletter-console-services/internal/authn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type providerStub struct {
	profile *authn.OAuthProfile
	err     error
}

func (p providerStub) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + url.QueryEscape(state)
}

func (p providerStub) Exchange(_ context.Context, code string) (*authn.OAuthProfile, error) {
	if p.err != nil {
		return nil, p.err
	}
	if code == "" {
		return nil, errors.New("missing code")
	}
	return p.profile, nil
}

func cookieNamed(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestOAuth2Authorization_RedirectsWithState(t *testing.T) {
	svc, _ := newTestService(t)

	w := httptest.NewRecorder()
	OAuth2Authorization(svc, providerStub{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/oauth2/authorization/google", nil))

	require.Equal(t, http.StatusFound, w.Code)
	state := cookieNamed(w, stateCookieName)
	require.NotNil(t, state)
	assert.True(t, state.HttpOnly)
	assert.Contains(t, w.Header().Get("Location"), "state="+state.Value)
}

func callback(t *testing.T, provider OAuthProvider, query string, stateCookie string) (*httptest.ResponseRecorder, *services.MockNewsletterDB) {
	svc, mockDB := newTestService(t)
	req := httptest.NewRequest(http.MethodGet, "/login/oauth2/code/google?"+query, nil)
	if stateCookie != "" {
		req.AddCookie(&http.Cookie{Name: stateCookieName, Value: stateCookie})
	}

	user := editor()
	mockDB.On("GetUserByEmail", mock.Anything, user.EmailAddress).Return(user, nil)

	w := httptest.NewRecorder()
	OAuth2Callback(svc, provider).ServeHTTP(w, req)
	return w, mockDB
}

func TestOAuth2Callback(t *testing.T) {
	okProvider := providerStub{profile: &authn.OAuthProfile{Email: "editor@example.com", Name: "Editor"}}

	t.Run("success sets token cookie", func(t *testing.T) {
		w, _ := callback(t, okProvider, "state=abc&code=xyz", "abc")

		require.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/api/user/authorizedUserDetails", w.Header().Get("Location"))

		token := cookieNamed(w, "newsletter_token")
		require.NotNil(t, token)
		assert.True(t, token.HttpOnly)
		assert.Equal(t, 3600, token.MaxAge)
		assert.NotEmpty(t, token.Value)

		state := cookieNamed(w, stateCookieName)
		require.NotNil(t, state)
		assert.Equal(t, -1, state.MaxAge)
	})

	t.Run("state mismatch", func(t *testing.T) {
		w, _ := callback(t, okProvider, "state=abc&code=xyz", "other")

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "http://frontend/oauth2Failure", w.Header().Get("Location"))
		assert.Nil(t, cookieNamed(w, "newsletter_token"))
	})

	t.Run("missing state cookie", func(t *testing.T) {
		w, _ := callback(t, okProvider, "state=abc&code=xyz", "")
		assert.Equal(t, "http://frontend/oauth2Failure", w.Header().Get("Location"))
	})

	t.Run("provider error", func(t *testing.T) {
		w, _ := callback(t, okProvider, "error=access_denied&state=abc", "abc")
		assert.Equal(t, "http://frontend/oauth2Failure", w.Header().Get("Location"))
	})

	t.Run("exchange failure", func(t *testing.T) {
		w, _ := callback(t, providerStub{err: errors.New("invalid id token")}, "state=abc&code=xyz", "abc")
		assert.Equal(t, "http://frontend/oauth2Failure", w.Header().Get("Location"))
		assert.Nil(t, cookieNamed(w, "newsletter_token"))
	})
}
