package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/taskdesk/internal/db"
	"github.com/alexanderramin/taskdesk/internal/domain"
)

// SQLiteSessionRepo implements SessionRepo. The table holds at most one
// row; saving replaces it.
type SQLiteSessionRepo struct {
	db db.DBTX
}

func NewSQLiteSessionRepo(conn db.DBTX) *SQLiteSessionRepo {
	return &SQLiteSessionRepo{db: conn}
}

func (r *SQLiteSessionRepo) Save(ctx context.Context, s *domain.Session) error {
	created := s.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	query := `INSERT OR REPLACE INTO sessions (id, username, access_token, refresh_token, expires_at, created_at)
		VALUES (1, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		s.Username,
		s.AccessToken,
		s.RefreshToken,
		sqlTime{s.ExpiresAt},
		sqlTime{created},
	)
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

func (r *SQLiteSessionRepo) Load(ctx context.Context) (*domain.Session, error) {
	query := `SELECT username, access_token, refresh_token, expires_at, created_at FROM sessions WHERE id = 1`
	var (
		s                    domain.Session
		expiresAt, createdAt sqlTime
	)
	err := r.db.QueryRowContext(ctx, query).Scan(&s.Username, &s.AccessToken, &s.RefreshToken, &expiresAt, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("session: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning session: %w", err)
	}
	s.ExpiresAt, s.CreatedAt = expiresAt.Time, createdAt.Time
	return &s, nil
}

func (r *SQLiteSessionRepo) Delete(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}
