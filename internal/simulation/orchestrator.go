package simulation

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/alexanderramin/mirrorer/internal/domain"
	"github.com/alexanderramin/mirrorer/internal/interpret"
	"github.com/alexanderramin/mirrorer/internal/llm"
	"github.com/alexanderramin/mirrorer/internal/prompt"
)

// Source says where a slot's result came from.
type Source string

const (
	SourceLive     Source = "live"
	SourceFallback Source = "fallback"
	SourceError    Source = "error"
)

// SlotUpdate is the single write a backend makes to its slot in a run.
type SlotUpdate struct {
	RunID     string                  `json:"run_id"`
	Index     int                     `json:"index"`
	Backend   string                  `json:"backend"`
	Role      domain.BackendRole      `json:"role"`
	Source    Source                  `json:"source"`
	Result    domain.SimulationResult `json:"result"`
	Raw       string                  `json:"raw,omitempty"`
	Error     string                  `json:"error,omitempty"`
	LatencyMs int64                   `json:"latency_ms"`
}

// SlotOutcome summarises one settled slot.
type SlotOutcome struct {
	Backend   string `json:"backend"`
	Source    Source `json:"source"`
	Behavior  string `json:"behavior"`
	LatencyMs int64  `json:"latency_ms"`
}

// RunSummary reports how every slot of a run settled.
type RunSummary struct {
	RunID     string        `json:"run_id"`
	UserID    string        `json:"user_id"`
	Slots     []SlotOutcome `json:"slots"`
	ElapsedMs int64         `json:"elapsed_ms"`
}

// ResultCache looks up pre-computed results for fallback substitution.
type ResultCache interface {
	CachedResult(ctx context.Context, userID, key string) (domain.SimulationResult, bool, error)
}

// Orchestrator issues one call per backend for a prompt.
type Orchestrator struct {
	backends []Backend
	cache    ResultCache
	logger   *slog.Logger
}

// NewOrchestrator creates an orchestrator over backends. A nil cache falls
// back to the outputs carried on the user itself.
func NewOrchestrator(backends []Backend, cache ResultCache, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{backends: backends, cache: cache, logger: logger}
}

// Backends returns the configured backends in slot order.
func (o *Orchestrator) Backends() []Backend {
	out := make([]Backend, len(o.backends))
	copy(out, o.backends)
	return out
}

// Select returns an orchestrator over the named backends only, keeping slot
// order. Unknown names are an error.
func (o *Orchestrator) Select(names []string) (*Orchestrator, error) {
	picked, err := pickByName(o.backends, func(b Backend) string { return b.Name }, names)
	if err != nil {
		return nil, err
	}
	return &Orchestrator{backends: picked, cache: o.cache, logger: o.logger}, nil
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Run calls every backend concurrently with the same prompt and hands each
// settled slot to deliver as soon as it resolves. deliver is called exactly
// once per backend and never concurrently. Run returns after every slot has
// settled; backend failures are reported in their slot, never returned.
func (o *Orchestrator) Run(ctx context.Context, user *domain.User, promptText string, deliver func(SlotUpdate)) RunSummary {
	return o.run(ctx, NewRunID(), user, promptText, deliver)
}

func (o *Orchestrator) run(ctx context.Context, runID string, user *domain.User, promptText string, deliver func(SlotUpdate)) RunSummary {
	start := time.Now()
	summary := RunSummary{RunID: runID, Slots: make([]SlotOutcome, len(o.backends))}
	if user != nil {
		summary.UserID = user.ID()
	}

	var mu sync.Mutex
	// No shared context: one backend failing must not cancel the others.
	var g errgroup.Group
	for i, b := range o.backends {
		g.Go(func() error {
			u := o.call(ctx, runID, i, b, user, promptText)

			mu.Lock()
			defer mu.Unlock()
			summary.Slots[i] = SlotOutcome{
				Backend:   u.Backend,
				Source:    u.Source,
				Behavior:  u.Result.Behavior,
				LatencyMs: u.LatencyMs,
			}
			if deliver != nil {
				deliver(u)
			}
			return nil
		})
	}
	_ = g.Wait()

	summary.ElapsedMs = time.Since(start).Milliseconds()
	o.logger.Debug("simulation run complete", "run_id", runID, "user_id", summary.UserID, "elapsed_ms", summary.ElapsedMs)
	return summary
}

func (o *Orchestrator) call(ctx context.Context, runID string, index int, b Backend, user *domain.User, promptText string) SlotUpdate {
	u := SlotUpdate{RunID: runID, Index: index, Backend: b.Name, Role: b.Role}
	start := time.Now()

	resp, err := b.Client.Generate(ctx, llm.GenerateRequest{
		SystemPrompt: prompt.SystemPrompt,
		UserPrompt:   promptText,
	})
	u.LatencyMs = time.Since(start).Milliseconds()

	if err == nil && resp != nil {
		u.Raw = resp.Text
		u.Result = interpret.Interpret(resp.Text)
		u.Source = SourceLive
		o.checkBehavior(runID, b, user, u.Result)
		return u
	}
	if err == nil {
		err = llm.ErrEmptyResponse
	}

	u.Error = err.Error()
	u.Result = interpret.ErrorResult(err.Error())
	u.Source = SourceError

	if errors.Is(err, context.Canceled) {
		o.logger.Debug("backend call canceled", "run_id", runID, "backend", b.Name)
		return u
	}
	if !b.FallbackEligible {
		o.logger.Warn("backend call failed", "run_id", runID, "backend", b.Name, "user_id", userID(user), "error", err)
		return u
	}

	cached, ok := o.cached(ctx, user, b.CacheKey)
	if !ok {
		o.logger.Warn("backend call failed, no cached result to fall back to",
			"run_id", runID, "backend", b.Name, "user_id", userID(user), "error", err)
		return u
	}
	o.logger.Warn("backend call failed, using cached result",
		"run_id", runID, "backend", b.Name, "user_id", userID(user), "cache_key", b.CacheKey, "error", err)
	u.Result = cached
	u.Source = SourceFallback
	return u
}

func (o *Orchestrator) cached(ctx context.Context, user *domain.User, key string) (domain.SimulationResult, bool) {
	if user == nil {
		return domain.SimulationResult{}, false
	}
	if o.cache == nil {
		return user.CachedOutput(key)
	}
	r, ok, err := o.cache.CachedResult(ctx, user.ID(), key)
	if err != nil {
		o.logger.Warn("cached result lookup failed", "user_id", user.ID(), "cache_key", key, "error", err)
		return domain.SimulationResult{}, false
	}
	return r, ok
}

// checkBehavior logs behaviors that do not name an exposure item. The
// result is still delivered unchanged.
func (o *Orchestrator) checkBehavior(runID string, b Backend, user *domain.User, r domain.SimulationResult) {
	if user == nil || r.ValidFor(len(user.Exposure)) {
		return
	}
	o.logger.Warn("behavior outside exposure list",
		"run_id", runID, "backend", b.Name, "user_id", user.ID(),
		"behavior", r.Behavior, "exposure_len", len(user.Exposure))
}

func userID(u *domain.User) string {
	if u == nil {
		return ""
	}
	return u.ID()
}
