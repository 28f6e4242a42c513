package generation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/studyhub-backend/internal/platform/logger"
)

type Phase string

const (
	PhaseEmpty      Phase = "empty"
	PhaseGenerating Phase = "generating"
	PhasePolling    Phase = "polling"
	PhaseReady      Phase = "ready"
	PhaseFailed     Phase = "failed"
)

// Snapshot is the observable state of one session. Position is 1-based for
// briefs and 0-based for quizzes and flashcards; Bounds decides.
type Snapshot[T any] struct {
	Kind        Kind      `json:"kind"`
	LectureID   uuid.UUID `json:"lecture_id"`
	Phase       Phase     `json:"phase"`
	Artifact    *T        `json:"artifact"`
	Position    int       `json:"position"`
	IsLoading   bool      `json:"is_loading"`
	IsPolling   bool      `json:"is_polling"`
	Error       string    `json:"error,omitempty"`
	ErrorCode   string    `json:"error_code,omitempty"`
	NoArtifact  bool      `json:"no_artifact"`
	PollAttempt int       `json:"poll_attempt,omitempty"`
	Version     uint64    `json:"version"`
}

// Adapter binds a session to one artifact table.
type Adapter[T any] struct {
	// Find returns nil, nil when the lecture has no artifact of this kind.
	Find func(ctx context.Context) (*T, error)
	// Bounds is the inclusive navigable range of a.
	Bounds func(a *T) (lo, hi int)
	// Stored is the persisted position of a; nil means Bounds' lower end.
	Stored func(a *T) int
}

// Generator produces the artifact synchronously, or returns nil / ErrPending /
// a timeout when the remote job finishes in the background.
type Generator[T any] func(ctx context.Context) (*T, error)

type SessionConfig[T any] struct {
	Kind      Kind
	LectureID uuid.UUID
	Schedule  Schedule
	Waiter    Waiter
	Adapter   Adapter[T]
	Log       *logger.Logger
}

// Session is the state holder for one (user, lecture, kind). At most one
// generation and one poll run at a time. After Close no state changes and
// no observer is called again.
//
// Observers run synchronously while the session serializes its updates and
// must not call back into mutating methods.
type Session[T any] struct {
	kind    Kind
	sched   Schedule
	waiter  Waiter
	adapter Adapter[T]
	log     *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	emitMu sync.Mutex

	mu        sync.Mutex
	state     Snapshot[T]
	observers []func(Snapshot[T])
	closed    bool
	runID     uint64
	runCancel context.CancelFunc
	lastUsed  time.Time
}

func NewSession[T any](cfg SessionConfig[T]) *Session[T] {
	log := cfg.Log
	if log == nil {
		log = logger.NewNop()
	}
	sched := cfg.Schedule
	if len(sched.Steps) == 0 {
		sched = DefaultSchedule
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Session[T]{
		kind:    cfg.Kind,
		sched:   sched,
		waiter:  cfg.Waiter,
		adapter: cfg.Adapter,
		log:     log.With("component", "GenerationSession", "kind", string(cfg.Kind), "lecture_id", cfg.LectureID),
		ctx:     ctx,
		cancel:  cancel,
		state: Snapshot[T]{
			Kind:      cfg.Kind,
			LectureID: cfg.LectureID,
			Phase:     PhaseEmpty,
		},
		lastUsed: time.Now(),
	}
}

func (s *Session[T]) Snapshot() Snapshot[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// OnChange registers fn for every snapshot produced after this call.
func (s *Session[T]) OnChange(fn func(Snapshot[T])) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

func (s *Session[T]) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// Busy reports an in-flight generation or poll.
func (s *Session[T]) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IsLoading || s.state.IsPolling
}

func (s *Session[T]) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session[T]) touch() {
	s.mu.Lock()
	s.lastUsed = time.Now()
	s.mu.Unlock()
}

// update applies fn under the state lock and notifies observers. It is a no-op
// once the session is closed, when run is stale, or when fn returns false.
func (s *Session[T]) update(run uint64, fn func(st *Snapshot[T]) bool) bool {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	if s.closed || (run != 0 && run != s.runID) {
		s.mu.Unlock()
		return false
	}
	if !fn(&s.state) {
		s.mu.Unlock()
		return false
	}
	s.state.Version++
	snap := s.state
	observers := append([]func(Snapshot[T]){}, s.observers...)
	s.mu.Unlock()

	for _, o := range observers {
		o(snap)
	}
	return true
}

func (s *Session[T]) lower(a *T) int {
	if s.adapter.Bounds == nil {
		return 0
	}
	lo, _ := s.adapter.Bounds(a)
	return lo
}

func (s *Session[T]) stored(a *T) int {
	lo, hi := 0, 0
	if s.adapter.Bounds != nil {
		lo, hi = s.adapter.Bounds(a)
	}
	if s.adapter.Stored == nil {
		return lo
	}
	pos := s.adapter.Stored(a)
	if pos < lo || pos > hi {
		return lo
	}
	return pos
}

func ready[T any](a *T, pos int) func(st *Snapshot[T]) bool {
	return func(st *Snapshot[T]) bool {
		st.Phase = PhaseReady
		st.Artifact = a
		st.Position = pos
		st.IsLoading = false
		st.IsPolling = false
		st.Error = ""
		st.ErrorCode = ""
		st.NoArtifact = false
		st.PollAttempt = 0
		return true
	}
}

// Load reads the stored artifact. It leaves the state alone while a generation
// or poll is running, and drops its read if one started while Find ran.
func (s *Session[T]) Load(ctx context.Context) (Snapshot[T], error) {
	s.mu.Lock()
	s.lastUsed = time.Now()
	busy := s.state.IsLoading || s.state.IsPolling
	startRun := s.runID
	s.mu.Unlock()
	if busy {
		return s.Snapshot(), nil
	}
	superseded := func(st *Snapshot[T]) bool {
		return st.IsLoading || st.IsPolling || s.runID != startRun
	}
	a, err := s.adapter.Find(ctx)
	if errors.Is(err, ErrNotFound) {
		a, err = nil, nil
	}
	if err != nil {
		code := Classify(err)
		s.log.Debug("artifact load failed", "code", code, "error", err)
		s.update(0, func(st *Snapshot[T]) bool {
			if superseded(st) {
				return false
			}
			st.Error = userMessage(code, err)
			st.ErrorCode = code
			return true
		})
		return s.Snapshot(), err
	}
	if a != nil {
		pos := s.stored(a)
		s.update(0, func(st *Snapshot[T]) bool {
			if superseded(st) {
				return false
			}
			return ready(a, pos)(st)
		})
		return s.Snapshot(), nil
	}
	s.update(0, func(st *Snapshot[T]) bool {
		// a surfaced failure stays until a generation replaces it
		if superseded(st) || st.Phase == PhaseFailed {
			return false
		}
		st.Phase = PhaseEmpty
		st.Artifact = nil
		st.Position = 0
		st.NoArtifact = true
		st.Error = ""
		st.ErrorCode = ""
		return true
	})
	return s.Snapshot(), nil
}

// Generate starts gen in the background. It returns false without queuing when
// a generation is already in flight or the session is closed. A safety-net
// poll left over from a failed attempt is superseded.
func (s *Session[T]) Generate(gen Generator[T]) bool {
	if gen == nil {
		return false
	}
	s.touch()
	var (
		runID  uint64
		runCtx context.Context
	)
	started := s.update(0, func(st *Snapshot[T]) bool {
		if st.IsLoading {
			return false
		}
		if s.runCancel != nil {
			s.runCancel()
		}
		s.runID++
		runID = s.runID
		runCtx, s.runCancel = context.WithCancel(s.ctx)
		s.wg.Add(1)

		st.Phase = PhaseGenerating
		st.IsLoading = true
		st.IsPolling = false
		st.Error = ""
		st.ErrorCode = ""
		st.PollAttempt = 0
		return true
	})
	if !started {
		s.log.Debug("generate dropped; already in flight")
		return false
	}
	go s.run(runCtx, runID, gen)
	return true
}

func (s *Session[T]) run(ctx context.Context, id uint64, gen Generator[T]) {
	defer s.wg.Done()

	a, err := gen(ctx)
	if ctx.Err() != nil {
		return
	}
	if err == nil && a != nil {
		s.update(id, ready(a, s.lower(a)))
		return
	}
	if err == nil || deferToPoller(err) {
		s.log.Debug("generation deferred to poller", "error", err)
		if !s.update(id, func(st *Snapshot[T]) bool {
			st.Phase = PhasePolling
			st.IsPolling = true
			return true
		}) {
			return
		}
		s.poll(ctx, id, true)
		return
	}

	code := Classify(err)
	s.log.Debug("generation failed", "code", code, "error", err)
	// the job may have finished despite the error
	if found, ferr := s.adapter.Find(ctx); ferr == nil && found != nil {
		s.update(id, ready(found, s.lower(found)))
		return
	}
	if ctx.Err() != nil {
		return
	}
	if !s.update(id, func(st *Snapshot[T]) bool {
		st.Phase = PhaseFailed
		st.IsLoading = false
		st.IsPolling = true
		st.Error = userMessage(code, err)
		st.ErrorCode = code
		return true
	}) {
		return
	}
	s.poll(ctx, id, false)
}

// poll reconciles with the store. primary polls own the outcome message;
// safety-net polls after a surfaced error only clear it when the artifact shows up.
func (s *Session[T]) poll(ctx context.Context, id uint64, primary bool) {
	p := &Poller[T]{
		Kind:     s.kind,
		Schedule: s.sched,
		Waiter:   s.waiter,
		Find:     s.adapter.Find,
		Log:      s.log,
		OnAttempt: func(n int) {
			s.update(id, func(st *Snapshot[T]) bool {
				st.PollAttempt = n
				return true
			})
		},
	}
	res := p.Run(ctx)
	switch res.Outcome {
	case OutcomeFound:
		s.update(id, ready(res.Artifact, s.lower(res.Artifact)))
	case OutcomeTimeout, OutcomeError:
		code := CodeTakingLong
		if res.Outcome == OutcomeError {
			code = CodePollFailed
			s.log.Debug("poll ended on read errors", "attempts", res.Attempts, "error", res.Err)
		}
		s.update(id, func(st *Snapshot[T]) bool {
			st.IsLoading = false
			st.IsPolling = false
			if primary {
				st.Phase = PhaseFailed
				st.Error = userMessage(code, res.Err)
				st.ErrorCode = code
			}
			return true
		})
	case OutcomeCanceled:
	}
}

// Navigate moves to pos when it lies inside the artifact's bounds. Requests
// outside the bounds leave the position unchanged and report false.
func (s *Session[T]) Navigate(pos int) (Snapshot[T], bool) {
	s.touch()
	changed := s.update(0, func(st *Snapshot[T]) bool {
		if st.Artifact == nil || s.adapter.Bounds == nil {
			return false
		}
		lo, hi := s.adapter.Bounds(st.Artifact)
		if pos < lo || pos > hi || pos == st.Position {
			return false
		}
		st.Position = pos
		return true
	})
	return s.Snapshot(), changed
}

// Close cancels in-flight work. It returns after any running observer call has
// finished; nothing is applied or emitted afterwards.
func (s *Session[T]) Close() {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.cancel()
}

// Wait blocks until background generation and polling have returned.
func (s *Session[T]) Wait() { s.wg.Wait() }
