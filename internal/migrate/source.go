// Package migrate populates the face store from an existing user database:
// it reads identity rows from a relational source, downloads each user's
// reference photo from remote storage, and enrolls it through the recognizer.
package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
)

// Identity is one enrollable row from the source database.
type Identity struct {
	UserID   string
	Name     string
	Email    string
	ImageURL string
}

// IdentitySource yields the identities to enroll.
type IdentitySource interface {
	Identities(ctx context.Context) ([]Identity, error)
	Close() error
}

// defaultIdentityQuery works against both supported drivers and expects the
// canonical users table layout. Override with MIGRATE_QUERY when the source
// schema differs; the query must produce (id, image, name, email) columns.
const defaultIdentityQuery = `
	SELECT id, image, name, email
	FROM users
	WHERE active = 1 AND image IS NOT NULL
`

// SQLSource reads identities from a MySQL or PostgreSQL database.
type SQLSource struct {
	db    *sql.DB
	query string
}

// OpenSQLSource opens a connection pool to the source database and verifies
// connectivity. Supported drivers: "mysql" and "postgres".
func OpenSQLSource(driver, dsn, query string) (*SQLSource, error) {
	if driver != "mysql" && driver != "postgres" {
		return nil, fmt.Errorf("unsupported source driver %q", driver)
	}
	if dsn == "" {
		return nil, errors.New("source database DSN is required")
	}
	if query == "" {
		query = defaultIdentityQuery
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open source database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping source database: %w", err)
	}

	return &SQLSource{db: db, query: query}, nil
}

// Identities runs the identity query and collects all enrollable rows.
// Rows with an empty id or image reference are skipped.
func (s *SQLSource) Identities(ctx context.Context) ([]Identity, error) {
	rows, err := s.db.QueryContext(ctx, s.query)
	if err != nil {
		return nil, fmt.Errorf("identity query failed: %w", err)
	}
	defer rows.Close()

	var identities []Identity
	for rows.Next() {
		// The id column is an integer in the canonical schema but may be a
		// string under a custom query, so normalize through a raw scan.
		var id any
		var image, name, email sql.NullString
		if err := rows.Scan(&id, &image, &name, &email); err != nil {
			return nil, fmt.Errorf("failed to scan identity row: %w", err)
		}
		userID := stringifyID(id)
		if userID == "" || image.String == "" {
			continue
		}
		identities = append(identities, Identity{
			UserID:   userID,
			Name:     name.String,
			Email:    email.String,
			ImageURL: image.String,
		})
	}

	return identities, rows.Err()
}

// stringifyID renders a scanned id column as a string, whatever the driver
// returned it as.
func stringifyID(id any) string {
	switch v := id.(type) {
	case nil:
		return ""
	case []byte:
		return string(v)
	case string:
		return v
	case int64:
		return fmt.Sprintf("%d", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Close closes the source connection pool.
func (s *SQLSource) Close() error {
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return fmt.Errorf("closing source database: %w", err)
		}
	}
	return nil
}
