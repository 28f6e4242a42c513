package generation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/studyhub-backend/internal/platform/logger"
)

var ErrRegistryClosed = errors.New("session registry closed")

type Key struct {
	UserID    uuid.UUID
	LectureID uuid.UUID
	Kind      Kind
}

type managed interface {
	Close()
	Wait()
	Busy() bool
	Closed() bool
	LastUsed() time.Time
}

// Registry owns every open session. Sessions idle for longer than the TTL are
// closed by Sweep; CloseAll tears everything down on shutdown.
type Registry struct {
	mu       sync.Mutex
	log      *logger.Logger
	ttl      time.Duration
	sessions map[Key]managed
	closed   bool
}

func NewRegistry(baseLog *logger.Logger, idleTTL time.Duration) *Registry {
	if idleTTL <= 0 {
		idleTTL = 30 * time.Minute
	}
	return &Registry{
		log:      baseLog.With("component", "SessionRegistry"),
		ttl:      idleTTL,
		sessions: make(map[Key]managed),
	}
}

// Open returns the live session for key, creating it with create on first use.
func Open[T any](r *Registry, key Key, create func() *Session[T]) (*Session[T], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrRegistryClosed
	}
	if existing, ok := r.sessions[key]; ok && !existing.Closed() {
		s, ok := existing.(*Session[T])
		if !ok {
			return nil, fmt.Errorf("session %s/%s holds %T", key.LectureID, key.Kind, existing)
		}
		return s, nil
	}
	s := create()
	r.sessions[key] = s
	return s, nil
}

func (r *Registry) Remove(key Key) {
	r.mu.Lock()
	s, ok := r.sessions[key]
	delete(r.sessions, key)
	r.mu.Unlock()
	if ok {
		s.Close()
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep closes sessions that are idle past the TTL at now and not busy.
func (r *Registry) Sweep(now time.Time) int {
	var stale []managed
	r.mu.Lock()
	for key, s := range r.sessions {
		if s.Closed() || (!s.Busy() && now.Sub(s.LastUsed()) > r.ttl) {
			stale = append(stale, s)
			delete(r.sessions, key)
		}
	}
	r.mu.Unlock()
	for _, s := range stale {
		s.Close()
	}
	if len(stale) > 0 {
		r.log.Debug("evicted idle sessions", "count", len(stale))
	}
	return len(stale)
}

// Start sweeps on a ticker until ctx is done.
func (r *Registry) Start(ctx context.Context) {
	every := r.ttl / 2
	if every < time.Second {
		every = time.Second
	}
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				r.Sweep(now)
			}
		}
	}()
}

// CloseAll closes every session and waits for their background work.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	r.closed = true
	all := make([]managed, 0, len(r.sessions))
	for _, s := range r.sessions {
		all = append(all, s)
	}
	r.sessions = make(map[Key]managed)
	r.mu.Unlock()

	for _, s := range all {
		s.Close()
	}
	for _, s := range all {
		s.Wait()
	}
	r.log.Info("closed generation sessions", "count", len(all))
}
