package authn

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"
)

// OAuthProfile is the identity established by a successful OAuth2 login.
type OAuthProfile struct {
	Email string
	Name  string
}

// GoogleOAuth runs the authorization code flow against Google.
type GoogleOAuth struct {
	config *oauth2.Config
}

// NewGoogleOAuth creates a Google OAuth2 client.
func NewGoogleOAuth(clientID, clientSecret, redirectURL string) *GoogleOAuth {
	return &GoogleOAuth{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
	}
}

// AuthCodeURL returns the consent page URL for the given state.
func (g *GoogleOAuth) AuthCodeURL(state string) string {
	return g.config.AuthCodeURL(state)
}

// Exchange trades an authorization code for a verified profile.
func (g *GoogleOAuth) Exchange(ctx context.Context, code string) (*OAuthProfile, error) {
	if g.config.ClientID == "" {
		return nil, errors.New("google client id not configured")
	}

	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, errors.New("id token missing from token response")
	}

	payload, err := idtoken.Validate(ctx, rawIDToken, g.config.ClientID)
	if err != nil {
		return nil, fmt.Errorf("failed to validate id token: %w", err)
	}

	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return nil, errors.New("email not present in id token")
	}
	if verified, ok := payload.Claims["email_verified"].(bool); ok && !verified {
		return nil, errors.New("email address is not verified")
	}
	name, _ := payload.Claims["name"].(string)
	if name == "" {
		name = email
	}

	return &OAuthProfile{Email: email, Name: name}, nil
}
