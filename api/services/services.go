package services

import (
	"context"

	"github.com/algolovers/newsletter-console-services/internal/appconfig"
	"github.com/algolovers/newsletter-console-services/internal/authn"
	"github.com/algolovers/newsletter-console-services/models"
)

// GroupStore persists groups together with their members and questions.
type GroupStore interface {
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	SaveGroup(ctx context.Context, group *models.Group) error
	DeleteGroup(ctx context.Context, groupID string) error
	ReplaceQuestions(ctx context.Context, groupID string, questions []models.Question) error
}

// UserStore persists users.
type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, emailAddress string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateValidityCode(ctx context.Context, userID, code string) error
}

// NewsletterStore is the full persistence layer used by the services.
type NewsletterStore interface {
	GroupStore
	UserStore
}

// Service contains all shared dependencies for handlers.
type Service struct {
	Config *appconfig.Config
	DB     NewsletterStore
	Groups *GroupCacheService
	Jwt    *authn.JwtService
}
