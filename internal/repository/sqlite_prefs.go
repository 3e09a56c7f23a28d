package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/taskdesk/internal/db"
	"github.com/alexanderramin/taskdesk/internal/domain"
)

// SQLitePrefsRepo implements PrefsRepo using a SQLite database.
type SQLitePrefsRepo struct {
	db db.DBTX
}

func NewSQLitePrefsRepo(conn db.DBTX) *SQLitePrefsRepo {
	return &SQLitePrefsRepo{db: conn}
}

func (r *SQLitePrefsRepo) Get(ctx context.Context, view string) (*domain.TablePrefs, error) {
	query := `SELECT view, hidden, page_size, sort_field, sort_dir FROM table_prefs WHERE view = ?`
	var (
		p      domain.TablePrefs
		hidden string
	)
	err := r.db.QueryRowContext(ctx, query, view).Scan(&p.View, &hidden, &p.PageSize, &p.SortField, &p.SortDir)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("table prefs %q: %w", view, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning table prefs: %w", err)
	}
	if err := json.Unmarshal([]byte(hidden), &p.Hidden); err != nil {
		return nil, fmt.Errorf("decoding hidden columns for %q: %w", view, err)
	}
	return &p, nil
}

func (r *SQLitePrefsRepo) Save(ctx context.Context, p *domain.TablePrefs) error {
	hidden := p.Hidden
	if hidden == nil {
		hidden = []string{}
	}
	encoded, err := json.Marshal(hidden)
	if err != nil {
		return fmt.Errorf("encoding hidden columns: %w", err)
	}
	query := `INSERT INTO table_prefs (view, hidden, page_size, sort_field, sort_dir, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(view) DO UPDATE SET
			hidden = excluded.hidden,
			page_size = excluded.page_size,
			sort_field = excluded.sort_field,
			sort_dir = excluded.sort_dir,
			updated_at = excluded.updated_at`
	_, err = r.db.ExecContext(ctx, query,
		p.View,
		string(encoded),
		p.PageSize,
		p.SortField,
		p.SortDir,
		sqlTime{time.Now()},
	)
	if err != nil {
		return fmt.Errorf("saving table prefs: %w", err)
	}
	return nil
}

func (r *SQLitePrefsRepo) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM table_prefs`); err != nil {
		return fmt.Errorf("deleting table prefs: %w", err)
	}
	return nil
}
