package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(endpoint string) Config {
	cfg := DefaultConfig()
	cfg.Name = "student"
	cfg.Engine = EngineOllama
	cfg.Endpoint = endpoint
	cfg.Model = "llama3.2"
	cfg.TimeoutMs = 2000
	return cfg
}

// fakeOllama serves /api/chat. Each call gets its 1-based attempt number
// and returns the reply content, or writes its own response and returns "".
type fakeOllama struct {
	calls atomic.Int32
	reply func(w http.ResponseWriter, req ollamaChatRequest, attempt int32) string
}

func (f *fakeOllama) start(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != ollamaChatPath || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var req ollamaChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if content := f.reply(w, req, f.calls.Add(1)); content != "" {
			json.NewEncoder(w).Encode(ollamaChatResponse{
				Model:   req.Model,
				Message: ollamaMessage{Role: "assistant", Content: content},
				Done:    true,
			})
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func replyWith(content string) func(http.ResponseWriter, ollamaChatRequest, int32) string {
	return func(http.ResponseWriter, ollamaChatRequest, int32) string { return content }
}

func TestOllamaClient_GenerateSendsChatMessages(t *testing.T) {
	var got ollamaChatRequest
	fake := &fakeOllama{reply: func(_ http.ResponseWriter, req ollamaChatRequest, _ int32) string {
		got = req
		return "Behavior: [B]"
	}}
	srv := fake.start(t)

	resp, err := NewOllamaClient(testConfig(srv.URL), nil).Generate(context.Background(), GenerateRequest{
		SystemPrompt: "act as the reader",
		UserPrompt:   "pick one",
	})
	require.NoError(t, err)
	assert.Equal(t, "Behavior: [B]", resp.Text)
	assert.Equal(t, "llama3.2", resp.Model)

	assert.False(t, got.Stream)
	assert.Equal(t, []ollamaMessage{
		{Role: "system", Content: "act as the reader"},
		{Role: "user", Content: "pick one"},
	}, got.Messages)
	assert.InDelta(t, 0.7, got.Options.Temperature, 1e-9)
	assert.Equal(t, 1024, got.Options.NumPredict)
}

func TestOllamaClient_GenerateWithoutSystemPrompt(t *testing.T) {
	var got ollamaChatRequest
	temp, maxTok := 0.1, 64
	fake := &fakeOllama{reply: func(_ http.ResponseWriter, req ollamaChatRequest, _ int32) string {
		got = req
		return "ok"
	}}
	srv := fake.start(t)

	_, err := NewOllamaClient(testConfig(srv.URL), nil).Generate(context.Background(), GenerateRequest{
		UserPrompt:  "pick one",
		Temperature: &temp,
		MaxTokens:   &maxTok,
	})
	require.NoError(t, err)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.InDelta(t, 0.1, got.Options.Temperature, 1e-9)
	assert.Equal(t, 64, got.Options.NumPredict)
}

func TestOllamaClient_GenerateFailures(t *testing.T) {
	slow := func(d time.Duration) func(http.ResponseWriter, ollamaChatRequest, int32) string {
		return func(http.ResponseWriter, ollamaChatRequest, int32) string {
			time.Sleep(d)
			return "late"
		}
	}
	tests := []struct {
		name     string
		reply    func(http.ResponseWriter, ollamaChatRequest, int32) string
		timeout  int
		want     error
		wantCode string
	}{
		{"timeout", slow(300 * time.Millisecond), 50, ErrTimeout, "TIMEOUT"},
		{"blank completion", replyWith("  \n"), 2000, ErrEmptyResponse, "EMPTY"},
		{
			"bad request",
			func(w http.ResponseWriter, _ ollamaChatRequest, _ int32) string {
				http.Error(w, "model not found", http.StatusBadRequest)
				return ""
			},
			2000, ErrRetryExhausted, "HTTP_400",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := (&fakeOllama{reply: tt.reply}).start(t)
			cfg := testConfig(srv.URL)
			cfg.MaxRetries = 0
			cfg.TimeoutMs = tt.timeout

			var captured LLMCallEvent
			obs := &captureObserver{fn: func(e LLMCallEvent) { captured = e }}
			_, err := NewOllamaClient(cfg, obs).Generate(context.Background(), GenerateRequest{UserPrompt: "x"})

			assert.ErrorIs(t, err, tt.want)
			assert.False(t, captured.Success)
			assert.Equal(t, tt.wantCode, captured.ErrorCode)
		})
	}
}

func TestOllamaClient_StatusErrorKeepsBody(t *testing.T) {
	srv := (&fakeOllama{reply: func(w http.ResponseWriter, _ ollamaChatRequest, _ int32) string {
		http.Error(w, "model not found", http.StatusNotFound)
		return ""
	}}).start(t)
	cfg := testConfig(srv.URL)
	cfg.MaxRetries = 0

	_, err := NewOllamaClient(cfg, nil).Generate(context.Background(), GenerateRequest{UserPrompt: "x"})
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Equal(t, "model not found", statusErr.Body)
}

func TestOllamaClient_Unreachable(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.MaxRetries = 0

	_, err := NewOllamaClient(cfg, nil).Generate(context.Background(), GenerateRequest{UserPrompt: "x"})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestOllamaClient_CallerCancelStopsRetries(t *testing.T) {
	fake := &fakeOllama{reply: func(http.ResponseWriter, ollamaChatRequest, int32) string {
		time.Sleep(300 * time.Millisecond)
		return "late"
	}}
	srv := fake.start(t)
	cfg := testConfig(srv.URL)
	cfg.MaxRetries = 3

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := NewOllamaClient(cfg, nil).Generate(ctx, GenerateRequest{UserPrompt: "x"})

	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, int32(1), fake.calls.Load())
}

func TestOllamaClient_Retries(t *testing.T) {
	tests := []struct {
		name    string
		timeout int
		first   func(w http.ResponseWriter) string
	}{
		{"after server error", 2000, func(w http.ResponseWriter) string {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return ""
		}},
		{"after attempt timeout", 50, func(http.ResponseWriter) string {
			time.Sleep(120 * time.Millisecond)
			return "too late"
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeOllama{reply: func(w http.ResponseWriter, _ ollamaChatRequest, attempt int32) string {
				if attempt == 1 {
					return tt.first(w)
				}
				return "Behavior: [A]"
			}}
			srv := fake.start(t)
			cfg := testConfig(srv.URL)
			cfg.MaxRetries = 1
			cfg.TimeoutMs = tt.timeout

			var captured LLMCallEvent
			obs := &captureObserver{fn: func(e LLMCallEvent) { captured = e }}
			resp, err := NewOllamaClient(cfg, obs).Generate(context.Background(), GenerateRequest{UserPrompt: "x"})

			require.NoError(t, err)
			assert.Equal(t, "Behavior: [A]", resp.Text)
			assert.Equal(t, int32(2), fake.calls.Load())
			assert.True(t, captured.Success)
			assert.Equal(t, "student", captured.Backend)
			assert.Equal(t, EngineOllama, captured.Engine)
		})
	}
}

func TestOllamaClient_Available(t *testing.T) {
	tags := func(names ...string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != ollamaTagsPath {
				http.NotFound(w, r)
				return
			}
			var body ollamaTags
			for _, n := range names {
				body.Models = append(body.Models, struct {
					Name string `json:"name"`
				}{n})
			}
			json.NewEncoder(w).Encode(body)
		}
	}
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    bool
	}{
		{"model pulled under latest tag", tags("mistral:7b", "llama3.2:latest"), true},
		{"exact tag", tags("llama3.2"), true},
		{"model missing", tags("mistral:7b"), false},
		{"server error", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusBadGateway) }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()
			assert.Equal(t, tt.want, NewOllamaClient(testConfig(srv.URL), nil).Available(context.Background()))
		})
	}

	assert.False(t, NewOllamaClient(testConfig("http://127.0.0.1:1"), nil).Available(context.Background()))
}

type captureObserver struct {
	fn func(LLMCallEvent)
}

func (o *captureObserver) OnCallComplete(e LLMCallEvent) { o.fn(e) }
