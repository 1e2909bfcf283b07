package service

import (
	"context"
	"strings"

	"github.com/alexanderramin/mirrorer/internal/catalog"
	"github.com/alexanderramin/mirrorer/internal/prompt"
	"github.com/alexanderramin/mirrorer/internal/simulation"
)

type simulationService struct {
	users    catalog.Provider
	orch     *simulation.Orchestrator
	observer UseCaseObserver
}

// NewSimulationService creates a simulation service resolving users from
// users and running them through orch.
func NewSimulationService(users catalog.Provider, orch *simulation.Orchestrator, observers ...UseCaseObserver) SimulationService {
	return &simulationService{
		users:    users,
		orch:     orch,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *simulationService) Simulate(ctx context.Context, req SimulateRequest, deliver func(simulation.SlotUpdate)) (result *SimulateResult, err error) {
	uc := startUseCase(ctx, s.observer, "simulate")
	defer uc.finish(&err)
	uc.set("user_id", req.UserID)

	u, err := s.users.GetUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	orch, err := s.orch.Select(req.Backends)
	if err != nil {
		return nil, err
	}

	text := req.Prompt
	if strings.TrimSpace(text) == "" {
		text = prompt.Build(u)
	} else {
		uc.set("edited_prompt", true)
	}

	summary := orch.Run(ctx, u, text, deliver)
	uc.set("run_id", summary.RunID)
	var fallbacks, failed int
	for _, slot := range summary.Slots {
		switch slot.Source {
		case simulation.SourceFallback:
			fallbacks++
		case simulation.SourceError:
			failed++
		}
	}
	uc.set("fallbacks", fallbacks)
	uc.set("failed_slots", failed)

	result = &SimulateResult{User: u, Prompt: text, Summary: summary}
	return result, nil
}
