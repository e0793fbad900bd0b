package authn

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/algolovers/newsletter-console-services/models"
	"github.com/golang-jwt/jwt"
)

var ErrInvalidJWT = errors.New("invalid jwt token")
var ErrInvalidClaims = errors.New("invalid claims")
var ErrStaleToken = errors.New("token no longer valid for user")

// minKeyLength is the HS256 minimum of 256 bits.
const minKeyLength = 32

type Claims struct {
	jwt.StandardClaims
	Admin        bool   `json:"ADMIN,omitempty"`
	User         bool   `json:"USER,omitempty"`
	ValidityCode string `json:"validityCode"`
}

// Authorities returns the role flags carried by the token.
func (c Claims) Authorities() []models.Authority {
	var authorities []models.Authority
	if c.Admin {
		authorities = append(authorities, models.AuthorityAdmin)
	}
	if c.User {
		authorities = append(authorities, models.AuthorityUser)
	}
	return authorities
}

// JwtService issues and validates application tokens.
type JwtService struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewJwtService creates a JwtService from a base64 encoded HMAC secret.
func NewJwtService(secret string, ttl time.Duration) (*JwtService, error) {
	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return nil, fmt.Errorf("jwt secret is not valid base64: %w", err)
	}
	if len(key) < minKeyLength {
		return nil, fmt.Errorf("jwt secret must decode to at least %d bytes, got %d", minKeyLength, len(key))
	}
	return &JwtService{key: key, ttl: ttl, now: time.Now}, nil
}

// TTL returns the lifetime of issued tokens.
func (s *JwtService) TTL() time.Duration {
	return s.ttl
}

// GenerateToken issues a token for the user bound to the given validity code.
func (s *JwtService) GenerateToken(user *models.User, validityCode string) (string, error) {
	now := s.now()
	claims := Claims{
		StandardClaims: jwt.StandardClaims{
			Subject:   user.ID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.ttl).Unix(),
		},
		Admin:        user.HasAuthority(models.AuthorityAdmin),
		User:         user.HasAuthority(models.AuthorityUser),
		ValidityCode: validityCode,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.key)
}

// ParseToken verifies the signature and expiry of a token and returns its claims.
func (s *JwtService) ParseToken(token string) (*Claims, error) {
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJWT, err)
	}
	if !t.Valid || claims.Subject == "" {
		return nil, ErrInvalidClaims
	}
	return claims, nil
}

// ValidateToken checks the claims still belong to the user's current session.
func (s *JwtService) ValidateToken(claims *Claims, user *models.User) bool {
	if claims == nil || user == nil {
		return false
	}
	if claims.Subject != user.ID {
		return false
	}
	if claims.ExpiresAt <= s.now().Unix() {
		return false
	}
	return user.AccountValidityCode != "" && claims.ValidityCode == user.AccountValidityCode
}
