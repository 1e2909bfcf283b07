package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/mirrorer/internal/catalog"
	"github.com/alexanderramin/mirrorer/internal/domain"
	"github.com/alexanderramin/mirrorer/internal/llm"
	"github.com/alexanderramin/mirrorer/internal/prompt"
	"github.com/alexanderramin/mirrorer/internal/repository"
	"github.com/alexanderramin/mirrorer/internal/service"
	"github.com/alexanderramin/mirrorer/internal/simulation"
	"github.com/alexanderramin/mirrorer/internal/testutil"
)

const testCatalog = "../catalog/testdata/catalog.json"

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

func mockBackend(name string, role domain.BackendRole, model string, delayMs int) simulation.Backend {
	cfg := llm.Config{Name: name, Engine: llm.EngineMock, Model: model, MockDelayMs: delayMs}
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

// testApp wires a full App over an in-memory store holding the test catalog.
func testApp(t *testing.T, backends ...simulation.Backend) *App {
	t.Helper()
	database := testutil.NewTestDB(t)
	imports := service.NewImportService(testutil.NewTestUoW(database))
	_, err := imports.ImportFile(context.Background(), testCatalog)
	require.NoError(t, err)

	users := repository.NewSQLiteCatalogRepo(database)
	if len(backends) == 0 {
		backends = []simulation.Backend{
			mockBackend("teacher", domain.RoleTeacher, "mock", 0),
			mockBackend("student", domain.RoleStudent, "mock", 0),
		}
	}
	orch := simulation.NewOrchestrator(backends, users, nil)
	return &App{
		Users:        users,
		Simulations:  service.NewSimulationService(users, orch),
		Orchestrator: orch,
		Import:       imports,
	}
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	return executeCmdWithInput(t, app, "", args...)
}

func executeCmdWithInput(t *testing.T, app *App, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return stripANSI(buf.String()), err
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// --- Root ---

func TestRootCmd_NonInteractivePrintsHelp(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app)
	require.NoError(t, err)
	assert.Contains(t, out, "mirrorer builds a decision prompt")
	assert.Contains(t, out, "simulate")
	assert.Contains(t, out, "backends")
}

// --- Users ---

func TestUsersCmd(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "users")
	require.NoError(t, err)
	assert.Regexp(t, `books-001\s+Mara Quinn\s+Books\s+2\s+3\s+B`, out)
	assert.Contains(t, out, "books-002")
	assert.Contains(t, out, "movie-001")

	out, err = executeCmd(t, app, "users", "--domain", "movie")
	require.NoError(t, err)
	assert.Contains(t, out, "movie-001")
	assert.NotContains(t, out, "books-001")
}

func TestUsersCmd_RejectsUnknownDomain(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "users", "--domain", "Music")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown domain "Music" (want Books, Movie)`)
}

func TestUsersCmd_JSON(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "users", "--json", "-d", "Books")
	require.NoError(t, err)

	var users []domain.User
	require.NoError(t, json.Unmarshal([]byte(out), &users))
	require.Len(t, users, 2)
	assert.Equal(t, "books-001", users[0].ID())
	assert.Len(t, users[1].Exposure, 2)
}

// --- Show / prompt ---

func TestShowCmd(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "show", "books-001")
	require.NoError(t, err)
	assert.Contains(t, out, "MARA QUINN (BOOKS-001)")
	assert.Contains(t, out, "[A] Gardening Basics")
	assert.Contains(t, out, "[B] Mars Rising (2020, Science Fiction) ← chosen")
	assert.Contains(t, out, "Ground truth: B")

	_, err = executeCmd(t, app, "show", "nobody")
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	_, err = executeCmd(t, app, "show")
	assert.Error(t, err)
}

func TestPromptCmd(t *testing.T) {
	app := testApp(t)
	u, err := app.Users.GetUser(context.Background(), "books-002")
	require.NoError(t, err)

	out, err := executeCmd(t, app, "prompt", "books-002")
	require.NoError(t, err)
	assert.Equal(t, prompt.Build(u), out)
	assert.Contains(t, out, "Sandman")
}

// --- Interpret ---

func TestInterpretCmd_FromStdin(t *testing.T) {
	app := testApp(t)
	completion := "Stimulus: rainy evening\nEvaluation: gut feeling\nEvaluation Style: Intuitive\nBehavior: [c]\n"

	out, err := executeCmdWithInput(t, app, completion, "interpret")
	require.NoError(t, err)
	assert.Contains(t, out, "Stimulus: rainy evening")
	assert.Contains(t, out, "Behavior: [C]")
	assert.Contains(t, out, "field(s) matched")
}

func TestInterpretCmd_FromFileAsJSON(t *testing.T) {
	app := testApp(t)
	path := writeTemp(t, "completion.txt", "Behavior: B\n")

	out, err := executeCmd(t, app, "interpret", path, "--json")
	require.NoError(t, err)

	var got interpretOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "B", got.Result.Behavior)
	assert.Equal(t, 1, got.Matched)
	assert.Equal(t, domain.PlaceholderText, got.Result.Stimulus.Text)

	_, err = executeCmd(t, app, "interpret", filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

// --- Simulate ---

func TestSimulateCmd_PrintsOneLinePerSlot(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "simulate", "books-001")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	for _, line := range lines[:2] {
		assert.Regexp(t, `^(teacher|student)\s+live\s+\d+ms\s+\[B\] Mars Rising ✓$`, line)
	}
	assert.Regexp(t, `^run \S+ in \d+ms \(2 live, 0 fallback, 0 error\)$`, lines[2])
}

func TestSimulateCmd_JSON(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "simulate", "books-001", "--json", "--backends", "student")
	require.NoError(t, err)

	var got simulateOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "books-001", got.UserID)
	require.Len(t, got.Slots, 1)
	assert.Equal(t, "student", got.Slots[0].Backend)
	assert.Equal(t, "B", got.Slots[0].Result.Behavior)
	assert.Equal(t, got.Summary.RunID, got.Slots[0].RunID)
	assert.Contains(t, got.Prompt, "Mars Rising")
}

func TestSimulateCmd_BackendsTrailingComma(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "simulate", "books-001", "--json", "--backends", "student,")
	require.NoError(t, err)

	var got simulateOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Slots, 1)
	assert.Equal(t, "student", got.Slots[0].Backend)
}

func TestSimulateCmd_PromptFile(t *testing.T) {
	app := testApp(t)
	edited := "## History\nGardening for beginners\n## Exposure List\n[A] Mars Rising\n[B] Gardening Basics\n"
	path := writeTemp(t, "prompt.md", edited)

	out, err := executeCmd(t, app, "simulate", "books-001", "--prompt-file", path, "--json")
	require.NoError(t, err)

	var got simulateOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, edited, got.Prompt)

	out, err = executeCmdWithInput(t, app, edited, "simulate", "books-001", "--prompt-file", "-", "--json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, edited, got.Prompt)
}

func TestSimulateCmd_FallbackSlot(t *testing.T) {
	offline := mockBackend("fine_tuned", domain.RoleFineTuned, llm.MockModelOffline, 0)
	offline.CacheKey = simulation.FineTunedCacheKey
	app := testApp(t, offline)

	out, err := executeCmd(t, app, "simulate", "books-001")
	require.NoError(t, err)
	assert.Regexp(t, `fine_tuned\s+fallback\s+\d+ms\s+\[B\] Mars Rising ✓`, out)
	assert.Contains(t, out, "(0 live, 1 fallback, 0 error)")

	// movie-001 has no cached output to fall back on.
	out, err = executeCmd(t, app, "simulate", "movie-001")
	require.NoError(t, err)
	assert.Contains(t, out, "(0 live, 0 fallback, 1 error)")
}

func TestSimulateCmd_Errors(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "simulate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user id is required")

	_, err = executeCmd(t, app, "simulate", "books-001", "--edit")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--edit needs an interactive terminal")

	_, err = executeCmd(t, app, "simulate", "books-001", "--backends", "gpt,student")
	assert.ErrorIs(t, err, simulation.ErrUnknownBackend)

	_, err = executeCmd(t, app, "simulate", "nobody")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

// --- Backends ---

func TestBackendsCmd(t *testing.T) {
	app := testApp(t,
		mockBackend("teacher", domain.RoleTeacher, "mock", 0),
		mockBackend("fine_tuned", domain.RoleFineTuned, llm.MockModelOffline, 0),
	)

	out, err := executeCmd(t, app, "backends")
	require.NoError(t, err)
	assert.Regexp(t, `teacher\s+teacher\s+mock\s+mock\s+no\s+● up`, out)
	assert.Regexp(t, `fine_tuned\s+fine_tuned\s+mock\s+offline\s+yes \(fine_tuned\)\s+● down`, out)

	out, err = executeCmd(t, app, "backends", "--json")
	require.NoError(t, err)
	var got []backendStatus
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.True(t, got[0].Available)
	assert.False(t, got[1].Available)
	assert.True(t, got[1].FallbackEligible)
}

// --- Catalog ---

func TestCatalogValidateCmd(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "catalog", "validate", testCatalog)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid (2 domain(s), 3 user(s))")

	bad := writeTemp(t, "bad.json", `{"domains": {"Books": {"users": [{"id": "", "name": "x", "profile": {"age": "1", "gender": "f"}}]}}}`)
	out, err = executeCmd(t, app, "catalog", "validate", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation error(s)")
	assert.Contains(t, out, "✖")
}

func TestCatalogImportCmd(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "catalog", "import", testCatalog)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 3 user(s)")
	assert.Contains(t, out, "3 replaced")

	out, err = executeCmd(t, app, "catalog", "import", testCatalog, "--json")
	require.NoError(t, err)
	var res service.ImportResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 3, res.Users)

	app.Import = nil
	_, err = executeCmd(t, app, "catalog", "import", testCatalog)
	assert.ErrorIs(t, err, errNoStore)
}

func TestCatalogSchemaCmd(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "catalog", "schema")
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &schema))
	assert.Equal(t, "mirrorer catalog", schema["title"])
}

func TestReadInput(t *testing.T) {
	got, err := readInput(strings.NewReader("from stdin"), "-")
	require.NoError(t, err)
	assert.Equal(t, "from stdin", got)

	got, err = readInput(io.LimitReader(strings.NewReader("abc"), 2), "")
	require.NoError(t, err)
	assert.Equal(t, "ab", got)
}
