package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/algolovers/newsletter-console-services/db"
	"github.com/algolovers/newsletter-console-services/internal/authn"
	"github.com/algolovers/newsletter-console-services/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrUserNotFound is returned when an operation names a user that does not exist.
var ErrUserNotFound = errors.New("user not found")

func newValidityCode() string {
	return uuid.NewString()
}

// FindOrCreateOAuthUser returns the user for a verified OAuth profile, registering it on first login.
// Users without a validity code are given one.
func (svc *Service) FindOrCreateOAuthUser(ctx context.Context, profile *authn.OAuthProfile) (*models.User, error) {
	logger := zerolog.Ctx(ctx)

	user, err := svc.DB.GetUserByEmail(ctx, profile.Email)
	if err != nil {
		return nil, err
	}

	if user == nil {
		user = &models.User{
			EmailAddress:        profile.Email,
			DisplayName:         profile.Name,
			Authorities:         []models.Authority{models.AuthorityUser},
			AccountValidityCode: newValidityCode(),
		}
		err := svc.DB.CreateUser(ctx, user)
		if errors.Is(err, db.ErrAlreadyExists) {
			// A concurrent login registered the same address first
			logger.Debug().Str("email", profile.Email).Msg("user registered concurrently, reloading")
			return svc.userByEmail(ctx, profile.Email)
		}
		if err != nil {
			return nil, err
		}
		logger.Info().Str("user_id", user.ID).Msg("registered user from OAuth login")
		return user, nil
	}

	if err := svc.ensureValidityCode(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (svc *Service) ensureValidityCode(ctx context.Context, user *models.User) error {
	if user.AccountValidityCode != "" {
		return nil
	}
	code := newValidityCode()
	if err := svc.DB.UpdateValidityCode(ctx, user.ID, code); err != nil {
		return fmt.Errorf("could not set validity code: %w", err)
	}
	user.AccountValidityCode = code
	return nil
}

// GenerateCookieForAuthenticatedUser issues a token for the user's current validity code and wraps it
// in the application cookie.
func (svc *Service) GenerateCookieForAuthenticatedUser(user *models.User) (*http.Cookie, error) {
	token, err := svc.Jwt.GenerateToken(user, user.AccountValidityCode)
	if err != nil {
		return nil, fmt.Errorf("could not generate token: %w", err)
	}

	return &http.Cookie{
		Name:     svc.Config.JWT.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(svc.Jwt.TTL().Seconds()),
		HttpOnly: true,
		Secure:   svc.Config.JWT.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// ClearCookie returns a cookie that removes the application cookie from the client.
func (svc *Service) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     svc.Config.JWT.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   svc.Config.JWT.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

// AuthorizedUserDetails describes the authenticated user and the token used for the request.
func (svc *Service) AuthorizedUserDetails(user *models.User, token string) (int, models.Result) {
	authorities := user.Authorities
	if authorities == nil {
		authorities = []models.Authority{}
	}
	details := models.AuthorizedUserDetails{
		DisplayName:  user.DisplayName,
		EmailAddress: user.EmailAddress,
		Authorities:  authorities,
		Token:        token,
	}
	return http.StatusOK, models.NewResult(true, details, "User details fetched successfully")
}

// InvalidateTokens rotates the user's validity code so every token issued so far stops validating.
func (svc *Service) InvalidateTokens(ctx context.Context, user *models.User) error {
	code := newValidityCode()
	if err := svc.DB.UpdateValidityCode(ctx, user.ID, code); err != nil {
		return fmt.Errorf("could not rotate validity code: %w", err)
	}
	user.AccountValidityCode = code

	zerolog.Ctx(ctx).Info().Str("user_id", user.ID).Msg("tokens invalidated")
	return nil
}

// InvalidateTokensByEmail rotates the validity code of the user with the given email address.
func (svc *Service) InvalidateTokensByEmail(ctx context.Context, emailAddress string) error {
	user, err := svc.userByEmail(ctx, emailAddress)
	if err != nil {
		return err
	}
	return svc.InvalidateTokens(ctx, user)
}

// IssueToken returns a token for the user with the given email address.
func (svc *Service) IssueToken(ctx context.Context, emailAddress string) (string, error) {
	user, err := svc.userByEmail(ctx, emailAddress)
	if err != nil {
		return "", err
	}

	if err := svc.ensureValidityCode(ctx, user); err != nil {
		return "", err
	}
	return svc.Jwt.GenerateToken(user, user.AccountValidityCode)
}

func (svc *Service) userByEmail(ctx context.Context, emailAddress string) (*models.User, error) {
	user, err := svc.DB.GetUserByEmail(ctx, emailAddress)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, emailAddress)
	}
	return user, nil
}
