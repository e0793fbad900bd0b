package services

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/algolovers/newsletter-console-services/internal/appconfig"
	"github.com/algolovers/newsletter-console-services/internal/authn"
	"github.com/algolovers/newsletter-console-services/internal/cache"
	"github.com/algolovers/newsletter-console-services/models"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testGroupID = "b1c8f6a2-2d1e-4b2a-9f3e-6d5c4b3a2f33"
	ownerID     = "6f1f8e5c-8d4b-4b53-9c59-0b8f0a0b6c11"
	editorID    = "0e6a3d0c-7e57-4b2f-8a55-3c2f5f7a9d22"
	viewerID    = "3a9e4c1d-5b6f-4e7a-8c9d-0e1f2a3b4c55"
)

var testSecret = base64.StdEncoding.EncodeToString([]byte(strings.Repeat("s", 32)))

type testEnv struct {
	svc      *Service
	db       *MockNewsletterDB
	notifier *MockNotifier
	cache    *cache.MemoryCache
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mockDB := new(MockNewsletterDB)
	notifier := new(MockNotifier)

	c, err := cache.NewMemoryCache(16)
	require.NoError(t, err)

	cfg, err := appconfig.ParseConfig([]byte("host: localhost:8080\n"), nil)
	require.NoError(t, err)

	jwtSvc, err := authn.NewJwtService(testSecret, time.Hour)
	require.NoError(t, err)

	return &testEnv{
		svc: &Service{
			Config: cfg,
			DB:     mockDB,
			Groups: NewGroupCacheService(mockDB, c, notifier),
			Jwt:    jwtSvc,
		},
		db:       mockDB,
		notifier: notifier,
		cache:    c,
	}
}

func owner() *models.User {
	return &models.User{ID: ownerID, EmailAddress: "owner@example.com", DisplayName: "Owner",
		Authorities: []models.Authority{models.AuthorityUser}, AccountValidityCode: "owner-code"}
}

func editor() *models.User {
	return &models.User{ID: editorID, EmailAddress: "editor@example.com", DisplayName: "Editor",
		Authorities: []models.Authority{models.AuthorityUser}, AccountValidityCode: "editor-code"}
}

func viewer() *models.User {
	return &models.User{ID: viewerID, EmailAddress: "viewer@example.com", DisplayName: "Viewer",
		Authorities: []models.Authority{models.AuthorityUser}, AccountValidityCode: "viewer-code"}
}

// testGroup is owned by owner, editable by editor and readable by viewer
func testGroup() *models.Group {
	return &models.Group{
		ID:         testGroupID,
		GroupName:  "Weekly digest",
		GroupOwner: *owner(),
		GroupMembers: []models.GroupMember{
			{User: *owner(), HasEditAccess: true},
			{User: *editor(), HasEditAccess: true},
			{User: *viewer(), HasEditAccess: false},
		},
		Questions: []models.Question{
			{ID: "q2", Question: "Second", QuestionType: models.QuestionTypeText, QuestionIndex: 2, Options: []string{}},
			{ID: "q1", Question: "First", QuestionType: models.QuestionTypeDropdown, QuestionIndex: 1, Options: []string{"a"}},
		},
	}
}

func anyCtx() interface{} {
	return mock.MatchedBy(func(context.Context) bool { return true })
}

// flakyCache is a memory cache whose writes or deletes can be made to fail.
type flakyCache struct {
	*cache.MemoryCache
	failSet    bool
	failDelete bool
}

func (f *flakyCache) Set(ctx context.Context, key string, value []byte) error {
	if f.failSet {
		return errors.New("cache write refused")
	}
	return f.MemoryCache.Set(ctx, key, value)
}

func (f *flakyCache) Delete(ctx context.Context, key string) error {
	if f.failDelete {
		return errors.New("cache delete refused")
	}
	return f.MemoryCache.Delete(ctx, key)
}
