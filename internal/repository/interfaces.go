package repository

import (
	"context"

	"github.com/alexanderramin/taskdesk/internal/domain"
)

// SessionRepo stores the single signed-in session.
type SessionRepo interface {
	Save(ctx context.Context, s *domain.Session) error
	Load(ctx context.Context) (*domain.Session, error)
	Delete(ctx context.Context) error
}

// PrefsRepo stores table preferences keyed by view name.
type PrefsRepo interface {
	Get(ctx context.Context, view string) (*domain.TablePrefs, error)
	Save(ctx context.Context, p *domain.TablePrefs) error
	DeleteAll(ctx context.Context) error
}
