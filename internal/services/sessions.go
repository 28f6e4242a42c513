package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/yungbote/studyhub-backend/internal/generation"
	"github.com/yungbote/studyhub-backend/internal/platform/apierr"
	"github.com/yungbote/studyhub-backend/internal/platform/logger"
	"github.com/yungbote/studyhub-backend/internal/realtime"
)

// SessionHub opens generation sessions and publishes every snapshot change on
// the owner's lecture channel.
type SessionHub struct {
	log       *logger.Logger
	registry  *generation.Registry
	schedules generation.Schedules
	waiter    generation.Waiter
	notifier  *realtime.Notifier
}

func NewSessionHub(
	baseLog *logger.Logger,
	registry *generation.Registry,
	schedules generation.Schedules,
	notifier *realtime.Notifier,
) *SessionHub {
	return &SessionHub{
		log:       baseLog.With("service", "SessionHub"),
		registry:  registry,
		schedules: schedules,
		waiter:    generation.RealWaiter,
		notifier:  notifier,
	}
}

// WithWaiter replaces the poll clock; tests use it to run schedules instantly.
func (h *SessionHub) WithWaiter(w generation.Waiter) *SessionHub {
	h.waiter = w
	return h
}

func (h *SessionHub) Close(userID, lectureID uuid.UUID, kind generation.Kind) {
	h.registry.Remove(generation.Key{UserID: userID, LectureID: lectureID, Kind: kind})
}

// openSession returns the live session for (user, lecture, kind). The adapter
// is used only when the session is created.
func openSession[T any](h *SessionHub, userID, lectureID uuid.UUID, kind generation.Kind, adapter generation.Adapter[T]) (*generation.Session[T], error) {
	key := generation.Key{UserID: userID, LectureID: lectureID, Kind: kind}
	s, err := generation.Open(h.registry, key, func() *generation.Session[T] {
		s := generation.NewSession(generation.SessionConfig[T]{
			Kind:      kind,
			LectureID: lectureID,
			Schedule:  h.schedules.For(kind),
			Waiter:    h.waiter,
			Adapter:   adapter,
			Log:       h.log,
		})
		channel := realtime.LectureChannel(userID.String(), lectureID.String())
		s.OnChange(func(snap generation.Snapshot[T]) {
			h.notifier.Notify(realtime.SSEMessage{
				Channel: channel,
				Event:   realtime.SSEEventArtifactState,
				Data:    snap,
			})
		})
		return s
	})
	if errors.Is(err, generation.ErrRegistryClosed) {
		return nil, apierr.New(http.StatusServiceUnavailable, "shutting_down", err)
	}
	return s, err
}

// loadIfCold reads the stored artifact into a session that has none yet.
func loadIfCold[T any](ctx context.Context, s *generation.Session[T]) (generation.Snapshot[T], error) {
	snap := s.Snapshot()
	if snap.Artifact != nil || snap.IsLoading || snap.IsPolling {
		return snap, nil
	}
	return s.Load(ctx)
}
