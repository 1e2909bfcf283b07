package llm

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/alexanderramin/mirrorer/internal/domain"
	"github.com/alexanderramin/mirrorer/internal/prompt"
)

// MockModelOffline makes the mock engine behave like an unreachable server.
const MockModelOffline = "offline"

// mockClient answers locally without any model. It picks the exposure
// candidate sharing the most words with the interaction history.
type mockClient struct {
	cfg      Config
	observer Observer
}

// NewMockClient creates an LLMClient that simulates a backend in-process.
func NewMockClient(cfg Config, observer Observer) LLMClient {
	if observer == nil {
		observer = NoopObserver{}
	}
	return &mockClient{cfg: cfg, observer: observer}
}

func (c *mockClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	start := time.Now()

	if err := c.wait(ctx); err != nil {
		report(c.observer, c.cfg, start, err)
		return nil, err
	}
	if c.cfg.Model == MockModelOffline {
		err := ErrUnavailable
		report(c.observer, c.cfg, start, err)
		return nil, err
	}

	text := prompt.RenderResult(MockDecide(prompt.ExtractSections(req.UserPrompt)))
	latency := report(c.observer, c.cfg, start, nil)
	return &GenerateResponse{Text: text, Model: c.model(), LatencyMs: latency}, nil
}

func (c *mockClient) Available(context.Context) bool {
	return c.cfg.Model != MockModelOffline
}

func (c *mockClient) model() string {
	if c.cfg.Model == "" {
		return "mock"
	}
	return c.cfg.Model
}

// wait simulates model latency. A delay longer than the configured timeout
// ends in ErrTimeout once the timeout elapses.
func (c *mockClient) wait(ctx context.Context) error {
	d := c.cfg.MockDelay()
	timedOut := false
	if c.cfg.TimeoutMs > 0 && d > c.cfg.Timeout() {
		d, timedOut = c.cfg.Timeout(), true
	}
	if d <= 0 {
		return ctxErr(ctx)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		if timedOut {
			return ErrTimeout
		}
		return nil
	case <-ctx.Done():
		return ctxErr(ctx)
	}
}

func ctxErr(ctx context.Context) error {
	err := ctx.Err()
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	return err
}

// MockDecide builds the decision the mock engine reports for the given
// prompt sections. Ties go to the earliest candidate.
func MockDecide(s prompt.Sections) domain.SimulationResult {
	r := domain.SimulationResult{
		Stimulus: domain.Section{
			Text:    "I feel like picking something close to what I have enjoyed recently.",
			Factors: "Curiosity, Emotional State",
		},
		Knowledge: domain.Section{
			Text:    "None of the options stands out, so I go with the first one.",
			Factors: "Past Experience, User Preferences/History",
		},
		Evaluation: domain.Section{
			Text:  "It is the safest choice given what I usually like.",
			Style: "Habitual",
		},
		Behavior: domain.DefaultBehavior,
	}
	if len(s.Exposure) == 0 {
		return r
	}

	seen := wordSet(strings.Join(s.History, " "))
	best, bestScore := 0, 0
	var bestShared []string
	for i, cand := range s.Exposure {
		var shared []string
		for w := range wordSet(cand.Text) {
			if seen[w] {
				shared = append(shared, w)
			}
		}
		if len(shared) > bestScore {
			best, bestScore, bestShared = i, len(shared), shared
		}
	}

	chosen := s.Exposure[best]
	r.Behavior = chosen.Label
	if bestScore > 0 {
		sort.Strings(bestShared)
		r.Knowledge.Text = "Option " + chosen.Label + " (" + chosen.Text + ") shares " +
			strings.Join(bestShared, ", ") + " with things I liked before."
		r.Knowledge.Factors = "Personal Relevance (Thematic), Past Experience"
		r.Evaluation.Text = "It matches my history better than the other options."
		r.Evaluation.Style = "Logical"
	}
	return r
}

var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "from": true,
	"pages": true, "published": true, "rated": true,
}

// wordSet lower-cases s and returns its words of three or more letters.
func wordSet(s string) map[string]bool {
	out := make(map[string]bool)
	for _, w := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len(w) < 3 || stopWords[w] || isDigits(w) {
			continue
		}
		out[w] = true
	}
	return out
}

func isDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
