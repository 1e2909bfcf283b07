package service

import (
	"context"
	"sync"
	"testing"

	"github.com/alexanderramin/mirrorer/internal/catalog"
	"github.com/alexanderramin/mirrorer/internal/domain"
	"github.com/alexanderramin/mirrorer/internal/llm"
	"github.com/alexanderramin/mirrorer/internal/prompt"
	"github.com/alexanderramin/mirrorer/internal/simulation"
	"github.com/alexanderramin/mirrorer/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSimulationService(t *testing.T, obs UseCaseObserver, backends ...simulation.Backend) (SimulationService, *domain.User) {
	t.Helper()
	u := testutil.NewTestUser("books-001",
		testutil.WithHistory("Dune Messiah", "Children of Dune"),
		testutil.WithExposure("Emma", "Dune Encyclopedia", "Dracula"),
		testutil.WithModelOutput(simulation.FineTunedCacheKey, testutil.NewTestResult("C")),
	)
	provider := catalog.NewMemoryProvider([]*domain.User{u})
	orch := simulation.NewOrchestrator(backends, provider, nil)
	return NewSimulationService(provider, orch, obs), u
}

func TestSimulate_AllBackendsSettle(t *testing.T) {
	obs := &recordingObserver{}
	svc, u := newSimulationService(t, obs,
		mockBackend("teacher", domain.RoleTeacher, "mock"),
		mockBackend("student", domain.RoleStudent, "mock"),
	)

	var (
		mu      sync.Mutex
		updates []simulation.SlotUpdate
	)
	res, err := svc.Simulate(context.Background(), SimulateRequest{UserID: "books-001"}, func(su simulation.SlotUpdate) {
		mu.Lock()
		defer mu.Unlock()
		updates = append(updates, su)
	})
	require.NoError(t, err)

	assert.Equal(t, prompt.Build(u), res.Prompt)
	assert.Equal(t, "books-001", res.Summary.UserID)
	require.Len(t, updates, 2)
	for _, su := range updates {
		assert.Equal(t, simulation.SourceLive, su.Source)
		// Overlap with the history words picks the Dune candidate.
		assert.Equal(t, "B", su.Result.Behavior)
		assert.Equal(t, res.Summary.RunID, su.RunID)
	}

	event := obs.last()
	assert.Equal(t, "simulate", event.Name)
	assert.True(t, event.Success)
	assert.Equal(t, 0, event.Fields["fallbacks"])
	assert.Equal(t, 0, event.Fields["failed_slots"])
}

func TestSimulate_FallbackCounted(t *testing.T) {
	obs := &recordingObserver{}
	svc, _ := newSimulationService(t, obs,
		mockBackend("teacher", domain.RoleTeacher, llm.MockModelOffline),
		mockBackend(simulation.FineTunedCacheKey, domain.RoleFineTuned, llm.MockModelOffline),
	)

	res, err := svc.Simulate(context.Background(), SimulateRequest{UserID: "books-001"}, nil)
	require.NoError(t, err)
	require.Len(t, res.Summary.Slots, 2)
	assert.Equal(t, simulation.SourceError, res.Summary.Slots[0].Source)
	assert.Equal(t, simulation.SourceFallback, res.Summary.Slots[1].Source)
	assert.Equal(t, "C", res.Summary.Slots[1].Behavior)

	event := obs.last()
	assert.Equal(t, 1, event.Fields["fallbacks"])
	assert.Equal(t, 1, event.Fields["failed_slots"])
}

func TestSimulate_EditedPromptIsSentVerbatim(t *testing.T) {
	obs := &recordingObserver{}
	svc, _ := newSimulationService(t, obs, mockBackend("teacher", domain.RoleTeacher, "mock"))

	edited := "## Exposure List\n[A] Solaris\n"
	res, err := svc.Simulate(context.Background(), SimulateRequest{UserID: "books-001", Prompt: edited}, nil)
	require.NoError(t, err)
	assert.Equal(t, edited, res.Prompt)
	assert.Equal(t, true, obs.last().Fields["edited_prompt"])
}

func TestSimulate_BackendSubset(t *testing.T) {
	svc, _ := newSimulationService(t, nil,
		mockBackend("teacher", domain.RoleTeacher, "mock"),
		mockBackend("student", domain.RoleStudent, "mock"),
	)

	res, err := svc.Simulate(context.Background(), SimulateRequest{UserID: "books-001", Backends: []string{"student"}}, nil)
	require.NoError(t, err)
	require.Len(t, res.Summary.Slots, 1)
	assert.Equal(t, "student", res.Summary.Slots[0].Backend)

	_, err = svc.Simulate(context.Background(), SimulateRequest{UserID: "books-001", Backends: []string{"gpt", "student"}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown backend(s): gpt")
}

func TestSimulate_UnknownUser(t *testing.T) {
	obs := &recordingObserver{}
	svc, _ := newSimulationService(t, obs, mockBackend("teacher", domain.RoleTeacher, "mock"))

	_, err := svc.Simulate(context.Background(), SimulateRequest{UserID: "nobody"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	assert.False(t, obs.last().Success)
}
