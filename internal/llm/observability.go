package llm

import (
	"context"
	"log/slog"
	"time"
)

// LLMCallEvent records metadata about a single model invocation.
type LLMCallEvent struct {
	Backend   string
	Engine    Engine
	Model     string
	LatencyMs int64
	Success   bool
	ErrorCode string
}

// Observer receives events about LLM calls for logging and metrics.
type Observer interface {
	OnCallComplete(event LLMCallEvent)
}

// LogObserver writes LLM call events to a structured logger.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver creates an Observer that logs events to logger.
func NewLogObserver(logger *slog.Logger) *LogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogObserver{logger: logger}
}

func (o *LogObserver) OnCallComplete(event LLMCallEvent) {
	status := "ok"
	level := slog.LevelInfo
	if !event.Success {
		status = "err:" + event.ErrorCode
		level = slog.LevelWarn
	}
	o.logger.Log(context.Background(), level, "llm_call",
		"backend", event.Backend,
		"engine", string(event.Engine),
		"model", event.Model,
		"latency_ms", event.LatencyMs,
		"status", status,
	)
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(LLMCallEvent) {}

// report emits the call event and returns the measured latency.
func report(o Observer, cfg Config, start time.Time, err error) int64 {
	latency := time.Since(start).Milliseconds()
	o.OnCallComplete(LLMCallEvent{
		Backend:   cfg.Name,
		Engine:    cfg.Engine,
		Model:     cfg.Model,
		LatencyMs: latency,
		Success:   err == nil,
		ErrorCode: errorCode(err),
	})
	return latency
}
