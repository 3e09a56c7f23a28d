package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/taskdesk/internal/db"
	"github.com/alexanderramin/taskdesk/internal/domain"
	"github.com/alexanderramin/taskdesk/internal/repository"
)

type sessionService struct {
	auth     Authenticator
	sessions repository.SessionRepo
	uow      db.UnitOfWork
	tokens   *TokenSource
	profile  ProfileInvalidator
	observer SessionObserver
	now      func() time.Time
}

// NewSessionService wires sign-in and sign-out. tokens and profile may be
// nil when the caller does not hold them.
func NewSessionService(
	auth Authenticator,
	sessions repository.SessionRepo,
	uow db.UnitOfWork,
	tokens *TokenSource,
	profile ProfileInvalidator,
	observers ...SessionObserver,
) SessionService {
	return &sessionService{
		auth:     auth,
		sessions: sessions,
		uow:      uow,
		tokens:   tokens,
		profile:  profile,
		observer: firstObserver(observers),
		now:      time.Now,
	}
}

func (s *sessionService) Login(ctx context.Context, in domain.LoginInput) (sess *domain.Session, err error) {
	startedAt := s.now()
	defer func() {
		s.observer.OnSessionEvent(ctx, SessionEvent{
			Op:       OpLogin,
			Username: in.Username,
			Duration: time.Since(startedAt),
			Err:      err,
		})
	}()

	tok, err := s.auth.Login(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("signing in: %w", err)
	}
	sess = sessionFromTokens(tok, in.Username, s.now())

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		sessions := repository.NewSQLiteSessionRepo(tx)
		prev, err := sessions.Load(ctx)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if prev != nil && prev.Username != sess.Username {
			if err := repository.NewSQLitePrefsRepo(tx).DeleteAll(ctx); err != nil {
				return err
			}
		}
		return sessions.Save(ctx, sess)
	})
	if err != nil {
		return nil, fmt.Errorf("storing session: %w", err)
	}
	s.forget()
	return sess, nil
}

func (s *sessionService) Logout(ctx context.Context) (err error) {
	startedAt := s.now()
	var (
		username  string
		remoteErr error
	)
	defer func() {
		s.observer.OnSessionEvent(ctx, SessionEvent{
			Op:        OpLogout,
			Username:  username,
			Duration:  time.Since(startedAt),
			Err:       err,
			RemoteErr: remoteErr,
		})
	}()

	prev, err := s.sessions.Load(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotSignedIn
		}
		return err
	}
	username = prev.Username
	// The local session goes away even when the backend cannot be reached.
	remoteErr = s.auth.Logout(ctx)

	if err := s.sessions.Delete(ctx); err != nil {
		return fmt.Errorf("signing out: %w", err)
	}
	s.forget()
	return nil
}

func (s *sessionService) Current(ctx context.Context) (*domain.Session, error) {
	sess, err := s.sessions.Load(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotSignedIn
		}
		return nil, err
	}
	return sess, nil
}

func (s *sessionService) forget() {
	if s.tokens != nil {
		s.tokens.Reset()
	}
	if s.profile != nil {
		s.profile.Invalidate()
	}
}
