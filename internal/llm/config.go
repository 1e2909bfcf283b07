package llm

import (
	"os"
	"strconv"
	"time"
)

// Engine names a model transport.
type Engine string

const (
	EngineOpenAI Engine = "openai"
	EngineOllama Engine = "ollama"
	EngineMock   Engine = "mock"
)

// ValidEngines lists the engines NewClient can build.
var ValidEngines = []Engine{EngineOpenAI, EngineOllama, EngineMock}

// IsValid reports whether e is a known engine.
func (e Engine) IsValid() bool {
	for _, v := range ValidEngines {
		if e == v {
			return true
		}
	}
	return false
}

// Config holds the parameters of one model transport. The process-wide
// defaults come from LoadConfig; a backend roster may override any field.
type Config struct {
	// Name labels the backend in call logs.
	Name        string
	Engine      Engine
	LogCalls    bool
	Endpoint    string
	APIKey      string
	Model       string
	TimeoutMs   int
	MaxRetries  int
	Temperature float64
	MaxTokens   int
	MockDelayMs int
}

// DefaultConfig targets a local vLLM server hosting the fine-tuned model.
func DefaultConfig() Config {
	return Config{
		Engine:      EngineOpenAI,
		LogCalls:    false,
		Endpoint:    "http://localhost:8000/v1",
		APIKey:      "EMPTY",
		Model:       "./UserMirrorrer-Llama-DPO",
		TimeoutMs:   60000,
		MaxRetries:  1,
		Temperature: 0.7,
		MaxTokens:   1024,
		MockDelayMs: 800,
	}
}

// LoadConfig reads LLM configuration from environment variables,
// falling back to defaults for any unset or malformed values.
func LoadConfig() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("MIRRORER_LLM_ENGINE"); v != "" {
		cfg.Engine = Engine(v)
	}
	if v := os.Getenv("MIRRORER_LLM_LOG_CALLS"); v != "" {
		cfg.LogCalls, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("MIRRORER_LLM_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("MIRRORER_LLM_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("MIRRORER_LLM_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("MIRRORER_LLM_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}
	if v := os.Getenv("MIRRORER_LLM_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}
	if v := os.Getenv("MIRRORER_LLM_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 2 {
			cfg.Temperature = f
		}
	}
	if v := os.Getenv("MIRRORER_LLM_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxTokens = n
		}
	}
	if v := os.Getenv("MIRRORER_MOCK_DELAY_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MockDelayMs = n
		}
	}

	return cfg
}

// Timeout returns the per-call timeout as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// MockDelay returns the simulated latency of the mock engine.
func (c Config) MockDelay() time.Duration {
	return time.Duration(c.MockDelayMs) * time.Millisecond
}
