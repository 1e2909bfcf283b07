package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// GenerateRequest holds the parameters for one completion call.
type GenerateRequest struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  *float64 // nil uses the configured temperature
	MaxTokens    *int     // nil uses the configured limit
}

// GenerateResponse holds the result of a completion call.
type GenerateResponse struct {
	Text      string
	Model     string
	LatencyMs int64
}

// LLMClient provides access to a language model for text generation.
type LLMClient interface {
	// Generate sends a prompt and returns the raw completion text.
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// Available checks whether the model server is reachable.
	Available(ctx context.Context) bool
}

// NewClient builds the transport named by cfg.Engine.
func NewClient(cfg Config, observer Observer) (LLMClient, error) {
	switch Engine(strings.ToLower(strings.TrimSpace(string(cfg.Engine)))) {
	case EngineOpenAI:
		return NewOpenAIClient(cfg, observer), nil
	case EngineOllama:
		return NewOllamaClient(cfg, observer), nil
	case EngineMock:
		return NewMockClient(cfg, observer), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, cfg.Engine)
	}
}

func (c Config) temperature(req GenerateRequest) float64 {
	if req.Temperature != nil {
		return *req.Temperature
	}
	return c.Temperature
}

func (c Config) maxTokens(req GenerateRequest) int {
	if req.MaxTokens != nil {
		return *req.MaxTokens
	}
	return c.MaxTokens
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var netErr *net.OpError
	return errors.As(err, &netErr)
}

func errorCode(err error) string {
	var statusErr *StatusError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return "TIMEOUT"
	case errors.Is(err, context.Canceled):
		return "CANCELED"
	case errors.Is(err, ErrUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrEmptyResponse):
		return "EMPTY"
	case errors.As(err, &statusErr):
		return fmt.Sprintf("HTTP_%d", statusErr.StatusCode)
	default:
		return "UNKNOWN"
	}
}
