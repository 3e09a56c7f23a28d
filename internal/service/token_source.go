package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/alexanderramin/taskdesk/internal/domain"
	"github.com/alexanderramin/taskdesk/internal/repository"
)

const (
	// refreshSkew renews tokens slightly before they expire.
	refreshSkew = 30 * time.Second

	refreshTimeout = 15 * time.Second
)

// TokenSource serves the stored access token to oauth2.Transport and
// refreshes it through the backend once it is about to expire. Refreshed
// tokens are written back to the session store.
type TokenSource struct {
	mu        sync.Mutex
	sessions  repository.SessionRepo
	refresher Refresher
	observer  SessionObserver
	now       func() time.Time
	cached    *domain.Session
}

var _ oauth2.TokenSource = (*TokenSource)(nil)

func NewTokenSource(sessions repository.SessionRepo, refresher Refresher, observers ...SessionObserver) *TokenSource {
	return &TokenSource{
		sessions:  sessions,
		refresher: refresher,
		observer:  firstObserver(observers),
		now:       time.Now,
	}
}

// Token implements oauth2.TokenSource.
func (s *TokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.current()
	if err != nil {
		return nil, err
	}
	if sess.Expired(s.now().Add(refreshSkew)) {
		if sess, err = s.refresh(sess); err != nil {
			return nil, err
		}
	}
	return &oauth2.Token{
		AccessToken: sess.AccessToken,
		TokenType:   "Bearer",
		Expiry:      sess.ExpiresAt,
	}, nil
}

// Reset drops the in-memory copy so the next Token reads the store again.
// Sign-in and sign-out call it after replacing the stored session.
func (s *TokenSource) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached = nil
}

func (s *TokenSource) current() (*domain.Session, error) {
	if s.cached != nil {
		return s.cached, nil
	}
	sess, err := s.sessions.Load(context.Background())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotSignedIn
		}
		return nil, fmt.Errorf("loading session: %w", err)
	}
	s.cached = sess
	return sess, nil
}

func (s *TokenSource) refresh(old *domain.Session) (sess *domain.Session, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	startedAt := s.now()
	defer func() {
		s.observer.OnSessionEvent(ctx, SessionEvent{
			Op:       OpRefresh,
			Username: old.Username,
			Duration: time.Since(startedAt),
			Err:      err,
		})
	}()

	if old.RefreshToken == "" {
		return nil, fmt.Errorf("session expired: %w", ErrNotSignedIn)
	}
	tok, err := s.refresher.Refresh(ctx, old.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("refreshing session: %w", err)
	}
	sess = sessionFromTokens(tok, old.Username, s.now())
	if sess.RefreshToken == "" {
		sess.RefreshToken = old.RefreshToken
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	s.cached = sess
	return sess, nil
}
