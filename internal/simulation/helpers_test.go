package simulation

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/mirrorer/internal/domain"
	"github.com/alexanderramin/mirrorer/internal/llm"
)

// funcClient adapts a function to llm.LLMClient.
type funcClient func(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error)

func (f funcClient) Generate(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	return f(ctx, req)
}

func (f funcClient) Available(context.Context) bool { return true }

func replyWith(text string) funcClient {
	return func(context.Context, llm.GenerateRequest) (*llm.GenerateResponse, error) {
		return &llm.GenerateResponse{Text: text}, nil
	}
}

func failWith(err error) funcClient {
	return func(context.Context, llm.GenerateRequest) (*llm.GenerateResponse, error) {
		return nil, err
	}
}

func replyAfter(d time.Duration, text string) funcClient {
	return func(ctx context.Context, _ llm.GenerateRequest) (*llm.GenerateResponse, error) {
		select {
		case <-time.After(d):
			return &llm.GenerateResponse{Text: text}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func newUser(id, name string) *domain.User {
	return &domain.User{
		Profile: domain.UserProfile{ID: id, Name: name, Domain: domain.DomainBooks},
		History: []domain.HistoryItem{{Title: "Dune", Genre: "Sci-Fi"}},
		Exposure: []domain.ExposureItem{
			{Title: "Piranesi"},
			{Title: "Hyperion"},
			{Title: "Circe"},
		},
		ModelOutputs: map[string]domain.SimulationResult{
			FineTunedCacheKey: {
				Stimulus:   domain.Section{Text: "cached stimulus", Factors: "Curiosity"},
				Knowledge:  domain.Section{Text: "cached knowledge", Factors: "Novelty"},
				Evaluation: domain.Section{Text: "cached evaluation", Style: "Logical"},
				Behavior:   "C",
			},
		},
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func captureLogger() (*slog.Logger, *syncBuffer) {
	buf := &syncBuffer{}
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

func drain(t *testing.T, ch <-chan SlotUpdate) []SlotUpdate {
	t.Helper()
	var out []SlotUpdate
	timeout := time.After(5 * time.Second)
	for {
		select {
		case u, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, u)
		case <-timeout:
			t.Fatal("run did not finish")
			return nil
		}
	}
}
