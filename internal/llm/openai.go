package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// openAIClient implements LLMClient against any server speaking the
// OpenAI chat-completions protocol, such as vLLM.
type openAIClient struct {
	cfg      Config
	client   openai.Client
	observer Observer
}

// NewOpenAIClient creates an LLMClient for an OpenAI-compatible endpoint.
// Retries and the per-attempt timeout are delegated to the SDK.
func NewOpenAIClient(cfg Config, observer Observer) LLMClient {
	if observer == nil {
		observer = NoopObserver{}
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithBaseURL(cfg.Endpoint))
	}
	if cfg.TimeoutMs > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout()))
	}
	return &openAIClient{
		cfg:      cfg,
		client:   openai.NewClient(opts...),
		observer: observer,
	}
}

func (c *openAIClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	start := time.Now()

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	messages = append(messages, openai.UserMessage(req.UserPrompt))

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.cfg.Model),
		Messages:    messages,
		Temperature: openai.Float(c.cfg.temperature(req)),
	}
	if n := c.cfg.maxTokens(req); n > 0 {
		params.MaxTokens = openai.Int(int64(n))
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		err = c.classify(ctx, err)
		report(c.observer, c.cfg, start, err)
		return nil, err
	}

	text := ""
	if len(completion.Choices) > 0 {
		text = completion.Choices[0].Message.Content
	}
	if strings.TrimSpace(text) == "" {
		report(c.observer, c.cfg, start, ErrEmptyResponse)
		return nil, ErrEmptyResponse
	}

	latency := report(c.observer, c.cfg, start, nil)
	model := completion.Model
	if model == "" {
		model = c.cfg.Model
	}
	return &GenerateResponse{Text: text, Model: model, LatencyMs: latency}, nil
}

func (c *openAIClient) classify(ctx context.Context, err error) error {
	var apiErr *openai.Error
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		return ctx.Err()
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout
	case errors.As(err, &apiErr):
		return fmt.Errorf("%w: %w", ErrRetryExhausted, &StatusError{StatusCode: apiErr.StatusCode, Body: apiErr.Message})
	case isConnectionError(err):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	default:
		return fmt.Errorf("%w: %w", ErrRetryExhausted, err)
	}
}

func (c *openAIClient) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	_, err := c.client.Models.List(ctx, option.WithMaxRetries(0))
	return err == nil
}
