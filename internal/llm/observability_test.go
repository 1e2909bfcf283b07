package llm

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogObserver_WritesCallEvent(t *testing.T) {
	var buf bytes.Buffer
	obs := NewLogObserver(slog.New(slog.NewTextHandler(&buf, nil)))

	obs.OnCallComplete(LLMCallEvent{Backend: "teacher", Engine: EngineOpenAI, Model: "gpt-4o", LatencyMs: 12, Success: true})
	obs.OnCallComplete(LLMCallEvent{Backend: "student", Engine: EngineOllama, Model: "llama3.2", ErrorCode: "TIMEOUT"})

	out := buf.String()
	assert.Contains(t, out, "msg=llm_call backend=teacher engine=openai model=gpt-4o latency_ms=12 status=ok")
	assert.Contains(t, out, "level=WARN msg=llm_call backend=student")
	assert.Contains(t, out, "status=err:TIMEOUT")
}
