package service

import (
	"context"
	"sync"

	"github.com/alexanderramin/mirrorer/internal/domain"
	"github.com/alexanderramin/mirrorer/internal/llm"
	"github.com/alexanderramin/mirrorer/internal/simulation"
)

const testCatalog = "../catalog/testdata/catalog.json"

// recordingObserver keeps every use-case event it receives.
type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func (o *recordingObserver) last() UseCaseEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.events[len(o.events)-1]
}

func mockBackend(name string, role domain.BackendRole, model string) simulation.Backend {
	cfg := llm.Config{Name: name, Engine: llm.EngineMock, Model: model}
	return simulation.Backend{
		Name:             name,
		Role:             role,
		Engine:           llm.EngineMock,
		Model:            model,
		CacheKey:         name,
		FallbackEligible: role == domain.RoleFineTuned,
		Client:           llm.NewMockClient(cfg, nil),
	}
}
