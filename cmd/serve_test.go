package cmd

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/algolovers/newsletter-console-services/api/middleware"
	"github.com/algolovers/newsletter-console-services/api/services"
	"github.com/algolovers/newsletter-console-services/internal/appconfig"
	"github.com/algolovers/newsletter-console-services/internal/authn"
	"github.com/algolovers/newsletter-console-services/internal/cache"
	"github.com/algolovers/newsletter-console-services/internal/events"
	"github.com/algolovers/newsletter-console-services/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stubProvider struct{}

func (stubProvider) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + state
}

func (stubProvider) Exchange(context.Context, string) (*authn.OAuthProfile, error) {
	return &authn.OAuthProfile{Email: "jane@example.com", Name: "Jane"}, nil
}

func newTestRouter(t *testing.T, limiter *middleware.RateLimiter) (http.Handler, *services.MockNewsletterDB, *authn.JwtService) {
	t.Helper()

	cfg, err := appconfig.ParseConfig([]byte("host: localhost:8080\n"), nil)
	require.NoError(t, err)

	secret := base64.StdEncoding.EncodeToString([]byte(strings.Repeat("k", 32)))
	jwtSvc, err := authn.NewJwtService(secret, time.Hour)
	require.NoError(t, err)

	c, err := cache.NewMemoryCache(8)
	require.NoError(t, err)

	mockDB := new(services.MockNewsletterDB)
	svc := &services.Service{
		Config: cfg,
		DB:     mockDB,
		Groups: services.NewGroupCacheService(mockDB, c, events.NoopNotifier{}),
		Jwt:    jwtSvc,
	}

	return newRouter(svc, stubProvider{}, limiter), mockDB, jwtSvc
}

func TestRouter_APIRequiresToken(t *testing.T) {
	r, _, _ := newTestRouter(t, middleware.NewRateLimiter(0, 0))

	req := httptest.NewRequest(http.MethodPost, "/api/groups/getGroup", strings.NewReader(`{"groupId":"x"}`))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"success":false,"message":"Unauthorised Request"}`, rr.Body.String())
}

func TestRouter_AuthorizedUserDetails(t *testing.T) {
	r, mockDB, jwtSvc := newTestRouter(t, middleware.NewRateLimiter(0, 0))

	user := &models.User{
		ID:                  "6f1f8e5c-8d4b-4b53-9c59-0b8f0a0b6c11",
		EmailAddress:        "jane@example.com",
		DisplayName:         "Jane",
		Authorities:         []models.Authority{models.AuthorityUser},
		AccountValidityCode: "code-1",
	}
	mockDB.On("GetUserByID", mock.Anything, user.ID).Return(user, nil)

	token, err := jwtSvc.GenerateToken(user, user.AccountValidityCode)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/user/authorizedUserDetails", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Success bool                         `json:"success"`
		Data    models.AuthorizedUserDetails `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, token, body.Data.Token)
	assert.Equal(t, "jane@example.com", body.Data.EmailAddress)
}

func TestRouter_AnonymousAPITrafficIsLimited(t *testing.T) {
	r, mockDB, _ := newTestRouter(t, middleware.NewRateLimiter(1, 1))

	call := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/groups/getGroup", strings.NewReader(`{"groupId":"x"}`))
		req.RemoteAddr = "192.0.2.10:5555"
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusUnauthorized, call())
	assert.Equal(t, http.StatusTooManyRequests, call())
	mockDB.AssertNotCalled(t, "GetUserByID", mock.Anything, mock.Anything)
}

func TestRouter_WrongMethod(t *testing.T) {
	r, _, _ := newTestRouter(t, middleware.NewRateLimiter(0, 0))

	req := httptest.NewRequest(http.MethodGet, "/api/groups/createGroup", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestRouter_OAuthAuthorizationRedirects(t *testing.T) {
	r, _, _ := newTestRouter(t, middleware.NewRateLimiter(0, 0))

	req := httptest.NewRequest(http.MethodGet, "/oauth2/authorization/google", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusFound, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Header().Get("Location"), "https://accounts.example.com/auth?state="))
}

func TestRouter_PublicEndpoints(t *testing.T) {
	r, _, _ := newTestRouter(t, middleware.NewRateLimiter(0, 0))

	for _, target := range []string{"/metrics", "/api/docs/doc.json"} {
		t.Run(target, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, target, nil)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusOK, rr.Code)
		})
	}
}

func TestInitializePublisher_NoBroker(t *testing.T) {
	n, err := initializePublisher(appconfig.PulsarConfig{}, "instance")
	require.NoError(t, err)
	assert.IsType(t, events.NoopNotifier{}, n)
}
