package table

import (
	"context"
	"sync"
)

// Ticket identifies one fetch issued through a Sequencer.
type Ticket uint64

// Sequencer enforces last-request-wins for a table's fetches. Every fetch
// takes a ticket; starting a newer fetch cancels the older one's context and
// makes its ticket stale, so its response is discarded even if it arrives.
type Sequencer struct {
	mu     sync.Mutex
	latest Ticket
	cancel context.CancelFunc
}

// Begin issues a new ticket and a context derived from parent that is
// cancelled when a newer fetch begins.
func (s *Sequencer) Begin(parent context.Context) (Ticket, context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.latest++
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	return s.latest, ctx
}

// Current reports whether t is still the latest ticket.
func (s *Sequencer) Current(t Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return t == s.latest
}

// Finish releases the context of t if it is still the latest. It reports
// whether the response for t should be applied.
func (s *Sequencer) Finish(t Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t != s.latest {
		return false
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	return true
}

// Stop cancels any in-flight fetch and makes every issued ticket stale.
func (s *Sequencer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.latest++
}
