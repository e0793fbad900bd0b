package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/algolovers/newsletter-console-services/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const userColumns = `id, email_address, display_name, authorities, account_validity_code, created_at`

type userRow struct {
	ID                  string         `db:"id"`
	EmailAddress        string         `db:"email_address"`
	DisplayName         string         `db:"display_name"`
	Authorities         pq.StringArray `db:"authorities"`
	AccountValidityCode sql.NullString `db:"account_validity_code"`
	CreatedAt           time.Time      `db:"created_at"`
}

func (r userRow) toModel() models.User {
	authorities := make([]models.Authority, 0, len(r.Authorities))
	for _, a := range r.Authorities {
		authorities = append(authorities, models.Authority(a))
	}
	return models.User{
		ID:                  r.ID,
		EmailAddress:        r.EmailAddress,
		DisplayName:         r.DisplayName,
		Authorities:         authorities,
		AccountValidityCode: r.AccountValidityCode.String,
		CreatedAt:           r.CreatedAt,
	}
}

// GetUserByID retrieves a user, or nil if none exists.
func (n *NewsletterDB) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	return n.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetUserByEmail retrieves a user by email address, ignoring case, or nil if none exists.
func (n *NewsletterDB) GetUserByEmail(ctx context.Context, emailAddress string) (*models.User, error) {
	return n.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email_address) = LOWER($1)`, emailAddress)
}

func (n *NewsletterDB) getUser(ctx context.Context, query string, arg string) (*models.User, error) {
	var row userRow
	if err := n.DB.GetContext(ctx, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}
	user := row.toModel()
	return &user, nil
}

// CreateUser inserts a user, assigning an id and creation time when missing.
func (n *NewsletterDB) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.EmailAddress = strings.TrimSpace(user.EmailAddress)

	authorities := make([]string, 0, len(user.Authorities))
	for _, a := range user.Authorities {
		authorities = append(authorities, string(a))
	}

	_, err := n.DB.ExecContext(ctx, `
		INSERT INTO users (id, email_address, display_name, authorities, account_validity_code, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.EmailAddress, user.DisplayName, pq.Array(authorities),
		sql.NullString{String: user.AccountValidityCode, Valid: user.AccountValidityCode != ""},
		user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("%w: %s", ErrAlreadyExists, pqErr.Message)
		}
		return fmt.Errorf("error inserting user: %w", err)
	}

	n.Log.Info().Str("user_id", user.ID).Msg("user created")
	return nil
}

// UpdateValidityCode replaces the user's validity code, invalidating tokens issued for the old one.
func (n *NewsletterDB) UpdateValidityCode(ctx context.Context, userID, code string) error {
	res, err := n.DB.ExecContext(ctx, `UPDATE users SET account_validity_code = $1 WHERE id = $2`, code, userID)
	if err != nil {
		return fmt.Errorf("error updating validity code: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error updating validity code: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
