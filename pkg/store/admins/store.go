package admins

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Resolver returns the delivery recipients for a digest run.
type Resolver interface {
	// AdminEmails lists the email addresses of all administrators that carry
	// a syntactically plausible address.
	AdminEmails(ctx context.Context) ([]string, error)
}

type adminStore struct {
	db *sql.DB
}

// NewStore creates a Resolver backed by the site's users table.
func NewStore(db *sql.DB) Resolver {
	return &adminStore{db: db}
}

func (s *adminStore) AdminEmails(ctx context.Context) ([]string, error) {
	logger := zerolog.Ctx(ctx)

	rows, err := s.db.QueryContext(ctx, `
		SELECT email FROM users WHERE admin = TRUE
	`)
	if err != nil {
		return nil, fmt.Errorf("admin emails query failed: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close admin emails query rows")
		}
	}(rows)

	var emails []string
	for rows.Next() {
		var email sql.NullString
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		// Minimal validation, matching what the delivery provider will accept.
		if email.Valid && strings.Contains(email.String, "@") {
			emails = append(emails, email.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("admin emails scan failed: %w", err)
	}

	return emails, nil
}
