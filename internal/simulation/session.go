package simulation

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/alexanderramin/mirrorer/internal/domain"
	"github.com/alexanderramin/mirrorer/internal/prompt"
)

// ErrNoUserSelected is returned by Start before any user was selected.
var ErrNoUserSelected = errors.New("no user selected")

// State is the lifecycle of a session as shown by a UI.
type State string

const (
	StateIdle      State = "idle"
	StateReady     State = "ready"
	StateRunning   State = "running"
	StateCompleted State = "completed"
)

// SlotStatus is the state of one backend slot.
type SlotStatus string

const (
	SlotIdle    SlotStatus = "idle"
	SlotPending SlotStatus = "pending"
	SlotSettled SlotStatus = "settled"
)

// Slot is the display state for one backend.
type Slot struct {
	Backend string
	Role    domain.BackendRole
	Status  SlotStatus
	Update  SlotUpdate
}

// Session holds the selected user, the editable prompt and the slots of the
// current run. Updates belonging to an earlier run are dropped.
type Session struct {
	orch   *Orchestrator
	logger *slog.Logger

	mu      sync.Mutex
	user    *domain.User
	prompt  string
	state   State
	runID   string
	cancel  context.CancelFunc
	slots   []Slot
	summary *RunSummary
}

// NewSession creates an idle session over orch.
func NewSession(orch *Orchestrator, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{orch: orch, logger: logger, state: StateIdle}
	s.slots = s.freshSlots(SlotIdle)
	return s
}

// Select makes u the current user, invalidates any in-flight run and
// returns the freshly built prompt. A nil u clears the selection and puts
// the session back to idle.
func (s *Session) Select(u *domain.User) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.invalidateLocked()
	s.user = u
	s.slots = s.freshSlots(SlotIdle)
	s.summary = nil
	if u == nil {
		s.prompt = ""
		s.state = StateIdle
		return ""
	}
	s.prompt = prompt.Build(u)
	s.state = StateReady
	return s.prompt
}

// SetPrompt replaces the prompt used by the next Start.
func (s *Session) SetPrompt(p string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompt = p
}

func (s *Session) Prompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prompt
}

func (s *Session) User() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// RunID returns the identifier of the current run, or "" when none is live.
func (s *Session) RunID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runID
}

// Slots returns a snapshot of the slot states.
func (s *Session) Slots() []Slot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Slot, len(s.slots))
	copy(out, s.slots)
	return out
}

// Completed reports whether every slot of the current run has settled.
func (s *Session) Completed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completedLocked()
}

// Summary returns the summary of the last completed run, if any.
func (s *Session) Summary() (RunSummary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.summary == nil {
		return RunSummary{}, false
	}
	return *s.summary, true
}

// Start runs promptText (or the session prompt when empty) for the
// selected user. Any earlier run is invalidated. Accepted updates are sent
// on the returned channel, which is closed once every call of the run has
// returned.
func (s *Session) Start(ctx context.Context, promptText string) (string, <-chan SlotUpdate, error) {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return "", nil, ErrNoUserSelected
	}
	s.invalidateLocked()
	if promptText == "" {
		promptText = s.prompt
	} else {
		s.prompt = promptText
	}

	runID := NewRunID()
	runCtx, cancel := context.WithCancel(ctx)
	s.runID = runID
	s.cancel = cancel
	s.state = StateRunning
	s.slots = s.freshSlots(SlotPending)
	s.summary = nil
	user := s.user
	out := make(chan SlotUpdate, len(s.slots))
	s.mu.Unlock()

	go func() {
		defer close(out)
		defer cancel()
		summary := s.orch.run(runCtx, runID, user, promptText, func(u SlotUpdate) {
			if s.apply(u) {
				out <- u
			}
		})
		s.finish(summary)
	}()

	return runID, out, nil
}

// Invalidate cancels the in-flight run, if any, and keeps the selection.
func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.runID == "" {
		return
	}
	s.invalidateLocked()
	s.state = StateReady
	s.slots = s.freshSlots(SlotIdle)
}

func (s *Session) invalidateLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.runID = ""
}

// apply records u if it belongs to the current run and its slot is still
// pending. It reports whether u was accepted.
func (s *Session) apply(u SlotUpdate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.RunID != s.runID {
		s.logger.Debug("discarding stale slot update",
			"run_id", u.RunID, "current_run_id", s.runID, "backend", u.Backend)
		return false
	}
	if u.Index < 0 || u.Index >= len(s.slots) || s.slots[u.Index].Status != SlotPending {
		s.logger.Debug("discarding duplicate slot update", "run_id", u.RunID, "backend", u.Backend)
		return false
	}
	s.slots[u.Index].Status = SlotSettled
	s.slots[u.Index].Update = u
	if s.completedLocked() {
		s.state = StateCompleted
	}
	return true
}

func (s *Session) finish(summary RunSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if summary.RunID != s.runID {
		return
	}
	s.summary = &summary
	s.cancel = nil
	s.state = StateCompleted
}

func (s *Session) completedLocked() bool {
	if len(s.slots) == 0 {
		return false
	}
	for _, sl := range s.slots {
		if sl.Status != SlotSettled {
			return false
		}
	}
	return true
}

func (s *Session) freshSlots(status SlotStatus) []Slot {
	slots := make([]Slot, len(s.orch.backends))
	for i, b := range s.orch.backends {
		slots[i] = Slot{Backend: b.Name, Role: b.Role, Status: status}
	}
	return slots
}
