package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

var (
	// ErrNotFound is returned by updates that match no row.
	ErrNotFound = errors.New("record not found")

	// ErrAlreadyExists is returned by inserts that collide with a unique constraint.
	ErrAlreadyExists = errors.New("record already exists")
)

type NewsletterDB struct {
	DB  *sqlx.DB
	Log *zerolog.Logger
}

// NewNewsletterDB opens the database and checks that it is reachable.
func NewNewsletterDB(driver, source string, log *zerolog.Logger) (*NewsletterDB, error) {
	if source == "" {
		log.Error().Msg("database source is not set")
		return nil, fmt.Errorf("database source is not set")
	}

	db, err := sqlx.Open(driver, source)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open database connection")
		return nil, err
	}

	// Check we are actually connected
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Error().Err(err).Msg("Database connection failed during ping")
		db.Close()
		return nil, err
	}

	return &NewsletterDB{DB: db, Log: log}, nil
}

// NewFromConn wraps an existing connection.
func NewFromConn(conn *sql.DB, driver string, log *zerolog.Logger) *NewsletterDB {
	return &NewsletterDB{DB: sqlx.NewDb(conn, driver), Log: log}
}

func (n *NewsletterDB) Close() error {
	if err := n.DB.Close(); err != nil {
		return err
	}
	n.Log.Info().Msg("database connection closed")
	return nil
}

// Migrate applies the embedded goose migrations.
func (n *NewsletterDB) Migrate() error {
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.Up(n.DB.DB, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	n.Log.Info().Msg("database migrations applied")
	return nil
}

func (n *NewsletterDB) execQuery(ctx context.Context, tx *sqlx.Tx, query string, args ...interface{}) error {
	if n.DB == nil {
		return fmt.Errorf("database connection is not established")
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to execute query: %w", err)
	}
	return nil
}
