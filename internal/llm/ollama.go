package llm

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// DefaultOllamaEndpoint is used when an ollama backend has no endpoint.
const DefaultOllamaEndpoint = "http://localhost:11434"

const (
	ollamaChatPath = "/api/chat"
	ollamaTagsPath = "/api/tags"
	ollamaProbe    = 2 * time.Second
)

// ollamaClient talks to a local Ollama server through its chat endpoint.
// The system prompt and the decision prompt travel as two chat messages.
type ollamaClient struct {
	cfg      Config
	http     *http.Client
	observer Observer
}

func NewOllamaClient(cfg Config, observer Observer) LLMClient {
	if observer == nil {
		observer = NoopObserver{}
	}
	cfg.Endpoint = strings.TrimRight(cmp.Or(cfg.Endpoint, DefaultOllamaEndpoint), "/")
	dialer := &net.Dialer{Timeout: 5 * time.Second}
	return &ollamaClient{
		cfg:      cfg,
		http:     &http.Client{Transport: &http.Transport{DialContext: dialer.DialContext}},
		observer: observer,
	}
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  struct {
		Temperature float64 `json:"temperature,omitempty"`
		NumPredict  int     `json:"num_predict,omitempty"`
	} `json:"options"`
}

type ollamaChatResponse struct {
	Model   string        `json:"model"`
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
}

type ollamaTags struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

func (c *ollamaClient) chatRequest(req GenerateRequest) ollamaChatRequest {
	body := ollamaChatRequest{Model: c.cfg.Model}
	if req.SystemPrompt != "" {
		body.Messages = append(body.Messages, ollamaMessage{Role: "system", Content: req.SystemPrompt})
	}
	body.Messages = append(body.Messages, ollamaMessage{Role: "user", Content: req.UserPrompt})
	body.Options.Temperature = c.cfg.temperature(req)
	body.Options.NumPredict = c.cfg.maxTokens(req)
	return body
}

// Generate makes up to 1+MaxRetries attempts, each under the configured
// timeout. Cancellation by the caller stops the retries.
func (c *ollamaClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	start := time.Now()
	body := c.chatRequest(req)

	var lastErr error
	for range 1 + c.cfg.MaxRetries {
		resp, err := c.chatOnce(ctx, body)
		if err == nil {
			return &GenerateResponse{
				Text:      resp.Message.Content,
				Model:     resp.Model,
				LatencyMs: report(c.observer, c.cfg, start, nil),
			}, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}

	err := c.classify(ctx, lastErr)
	report(c.observer, c.cfg, start, err)
	return nil, err
}

func (c *ollamaClient) chatOnce(ctx context.Context, body ollamaChatRequest) (*ollamaChatResponse, error) {
	if c.cfg.TimeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout())
		defer cancel()
	}

	var resp ollamaChatResponse
	if err := c.postJSON(ctx, ollamaChatPath, body, &resp); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, err
	}
	if strings.TrimSpace(resp.Message.Content) == "" {
		return nil, ErrEmptyResponse
	}
	return &resp, nil
}

// classify maps the last attempt's failure onto the package sentinels.
func (c *ollamaClient) classify(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ctxErr
	}
	switch {
	case errors.Is(err, ErrTimeout):
		return ErrTimeout
	case errors.Is(err, ErrEmptyResponse):
		return ErrEmptyResponse
	case isConnectionError(err):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	default:
		return fmt.Errorf("%w: %w", ErrRetryExhausted, err)
	}
}

func (c *ollamaClient) postJSON(ctx context.Context, path string, in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

// do sends req and decodes a 200 body into out. Other statuses become a
// *StatusError carrying the trimmed body.
func (c *ollamaClient) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s response: %w", req.URL.Path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", req.URL.Path, err)
	}
	return nil
}

// Available reports whether the server answers and has the configured
// model pulled. A bare model name matches its ":latest" tag.
func (c *ollamaClient) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, ollamaProbe)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Endpoint+ollamaTagsPath, nil)
	if err != nil {
		return false
	}
	var tags ollamaTags
	if err := c.do(req, &tags); err != nil {
		return false
	}
	for _, m := range tags.Models {
		if m.Name == c.cfg.Model || m.Name == c.cfg.Model+":latest" {
			return true
		}
	}
	return false
}
