package models

import "time"

// Authority is a role granted to a user.
type Authority string

const (
	AuthorityAdmin Authority = "ADMIN"
	AuthorityUser  Authority = "USER"
)

// User represents an account in the newsletter console.
type User struct {
	ID                  string      `json:"id"`
	EmailAddress        string      `json:"emailAddress"`
	DisplayName         string      `json:"displayName"`
	Authorities         []Authority `json:"authorities,omitempty"`
	AccountValidityCode string      `json:"-"`
	CreatedAt           time.Time   `json:"createdAt,omitempty"`
}

// HasAuthority reports whether the user holds the given authority.
func (u *User) HasAuthority(a Authority) bool {
	for _, held := range u.Authorities {
		if held == a {
			return true
		}
	}
	return false
}

// AuthorizedUserDetails is returned to a client after it authenticates.
type AuthorizedUserDetails struct {
	DisplayName  string      `json:"displayName"`
	EmailAddress string      `json:"emailAddress"`
	Authorities  []Authority `json:"authorities"`
	Token        string      `json:"token"`
}
