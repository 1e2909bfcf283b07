package service

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"time"
)

// UseCaseEvent describes one finished import or simulation.
type UseCaseEvent struct {
	Name      string
	StartedAt time.Time
	Duration  time.Duration
	Success   bool
	Err       error
	Fields    map[string]any
}

// UseCaseObserver is told about every finished use case.
type UseCaseObserver interface {
	ObserveUseCase(ctx context.Context, event UseCaseEvent)
}

type NoopUseCaseObserver struct{}

func (NoopUseCaseObserver) ObserveUseCase(context.Context, UseCaseEvent) {}

// NewLogUseCaseObserver reports use cases as "service_use_case" records,
// at error level when the use case failed. A nil logger observes nothing.
func NewLogUseCaseObserver(logger *slog.Logger) UseCaseObserver {
	if logger == nil {
		return NoopUseCaseObserver{}
	}
	return logUseCaseObserver{logger: logger}
}

type logUseCaseObserver struct {
	logger *slog.Logger
}

func (o logUseCaseObserver) ObserveUseCase(ctx context.Context, event UseCaseEvent) {
	attrs := []slog.Attr{
		slog.String("use_case", event.Name),
		slog.Int64("duration_ms", event.Duration.Milliseconds()),
		slog.Bool("success", event.Success),
	}
	for _, k := range slices.Sorted(maps.Keys(event.Fields)) {
		attrs = append(attrs, slog.Any(k, event.Fields[k]))
	}

	level := slog.LevelInfo
	if event.Err != nil {
		level = slog.LevelError
		attrs = append(attrs, slog.String("error", event.Err.Error()))
	}
	o.logger.LogAttrs(ctx, level, "service_use_case", attrs...)
}

// useCase accumulates fields for one running use case and reports it to
// the observer on finish.
type useCase struct {
	ctx      context.Context
	observer UseCaseObserver
	event    UseCaseEvent
}

func startUseCase(ctx context.Context, observer UseCaseObserver, name string) *useCase {
	return &useCase{
		ctx:      ctx,
		observer: observer,
		event:    UseCaseEvent{Name: name, StartedAt: time.Now().UTC(), Fields: map[string]any{}},
	}
}

func (u *useCase) set(key string, value any) {
	u.event.Fields[key] = value
}

// finish is meant to be deferred with a pointer to the named error result.
func (u *useCase) finish(errp *error) {
	u.event.Duration = time.Since(u.event.StartedAt)
	if errp != nil {
		u.event.Err = *errp
	}
	u.event.Success = u.event.Err == nil
	u.observer.ObserveUseCase(u.ctx, u.event)
}

func useCaseObserverOrNoop(observers []UseCaseObserver) UseCaseObserver {
	for _, obs := range observers {
		if obs != nil {
			return obs
		}
	}
	return NoopUseCaseObserver{}
}
