package simulation

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/alexanderramin/mirrorer/internal/domain"
	"github.com/alexanderramin/mirrorer/internal/llm"
)

// Roster is the declarative list of backends, usually read from YAML.
type Roster struct {
	Backends []RosterEntry `yaml:"backends"`
}

// RosterEntry configures one backend. Unset transport fields inherit the
// process-wide llm.Config.
type RosterEntry struct {
	Name             string             `yaml:"name"`
	Role             domain.BackendRole `yaml:"role"`
	Engine           llm.Engine         `yaml:"engine,omitempty"`
	Endpoint         string             `yaml:"endpoint,omitempty"`
	APIKey           string             `yaml:"api_key,omitempty"`
	Model            string             `yaml:"model,omitempty"`
	CacheKey         string             `yaml:"cache_key,omitempty"`
	FallbackEligible *bool              `yaml:"fallback_eligible,omitempty"`
	Temperature      *float64           `yaml:"temperature,omitempty"`
	MaxTokens        int                `yaml:"max_tokens,omitempty"`
	MaxRetries       *int               `yaml:"max_retries,omitempty"`
	Timeout          time.Duration      `yaml:"timeout,omitempty"`
}

// LoadRoster reads and validates a YAML roster file.
func LoadRoster(path string) (Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Roster{}, fmt.Errorf("reading roster: %w", err)
	}
	return ParseRoster(data)
}

// ParseRoster decodes and validates a YAML roster.
func ParseRoster(data []byte) (Roster, error) {
	var r Roster
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Roster{}, fmt.Errorf("parsing roster: %w", err)
	}
	if err := r.Validate(); err != nil {
		return Roster{}, err
	}
	return r, nil
}

// DefaultRoster compares the three roles against the configured endpoint.
func DefaultRoster() Roster {
	eligible := true
	return Roster{Backends: []RosterEntry{
		{Name: "teacher", Role: domain.RoleTeacher},
		{Name: "student", Role: domain.RoleStudent},
		{Name: "fine_tuned", Role: domain.RoleFineTuned, CacheKey: FineTunedCacheKey, FallbackEligible: &eligible},
	}}
}

// Validate reports every problem in the roster at once.
func (r Roster) Validate() error {
	var errs []error
	if len(r.Backends) == 0 {
		errs = append(errs, errors.New("roster: at least one backend is required"))
	}
	seen := make(map[string]bool)
	for i, b := range r.Backends {
		name := strings.TrimSpace(b.Name)
		switch {
		case name == "":
			errs = append(errs, fmt.Errorf("backends[%d]: name is required", i))
		case seen[name]:
			errs = append(errs, fmt.Errorf("backends[%d]: duplicate name %q", i, name))
		}
		seen[name] = true

		if !b.Role.IsValid() {
			errs = append(errs, fmt.Errorf("backends[%d] %s: unknown role %q", i, name, b.Role))
		}
		if b.Engine != "" && !b.Engine.IsValid() {
			errs = append(errs, fmt.Errorf("backends[%d] %s: unknown engine %q", i, name, b.Engine))
		}
		if b.Timeout < 0 {
			errs = append(errs, fmt.Errorf("backends[%d] %s: timeout must not be negative", i, name))
		}
	}
	return errors.Join(errs...)
}

// Select keeps the named backends in roster order. An empty list keeps all.
func (r Roster) Select(names []string) (Roster, error) {
	picked, err := pickByName(r.Backends, func(e RosterEntry) string { return e.Name }, names)
	if err != nil {
		return Roster{}, err
	}
	return Roster{Backends: picked}, nil
}

// pickByName keeps the items whose name is listed, in their original order.
// An empty list keeps everything.
func pickByName[T any](items []T, name func(T) string, names []string) ([]T, error) {
	if len(names) == 0 {
		return items, nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			want[n] = true
		}
	}
	if len(want) == 0 {
		return items, nil
	}
	var out []T
	for _, it := range items {
		if want[name(it)] {
			out = append(out, it)
			delete(want, name(it))
		}
	}
	if len(want) > 0 {
		missing := make([]string, 0, len(want))
		for n := range want {
			missing = append(missing, n)
		}
		sort.Strings(missing)
		return nil, fmt.Errorf("%w(s): %s", ErrUnknownBackend, strings.Join(missing, ", "))
	}
	return out, nil
}

// Config merges the entry over the process-wide transport settings.
func (e RosterEntry) Config(base llm.Config) llm.Config {
	cfg := base
	cfg.Name = e.Name
	if e.Engine != "" {
		cfg.Engine = e.Engine
	}
	if e.Endpoint != "" {
		cfg.Endpoint = e.Endpoint
	} else if cfg.Engine == llm.EngineOllama && cfg.Endpoint == llm.DefaultConfig().Endpoint {
		cfg.Endpoint = llm.DefaultOllamaEndpoint
	}
	if e.APIKey != "" {
		cfg.APIKey = e.APIKey
	}
	if e.Model != "" {
		cfg.Model = e.Model
	}
	if e.Temperature != nil {
		cfg.Temperature = *e.Temperature
	}
	if e.MaxTokens > 0 {
		cfg.MaxTokens = e.MaxTokens
	}
	if e.MaxRetries != nil {
		cfg.MaxRetries = *e.MaxRetries
	}
	if e.Timeout > 0 {
		cfg.TimeoutMs = int(e.Timeout.Milliseconds())
	}
	return cfg
}

// Backend resolves defaults for the entry and builds its transport.
func (e RosterEntry) Backend(base llm.Config, observer llm.Observer) (Backend, error) {
	cfg := e.Config(base)
	client, err := llm.NewClient(cfg, observer)
	if err != nil {
		return Backend{}, fmt.Errorf("backend %s: %w", e.Name, err)
	}
	cacheKey := e.CacheKey
	if cacheKey == "" {
		cacheKey = e.Name
	}
	eligible := e.Role == domain.RoleFineTuned
	if e.FallbackEligible != nil {
		eligible = *e.FallbackEligible
	}
	return Backend{
		Name:             e.Name,
		Role:             e.Role,
		Engine:           cfg.Engine,
		Model:            cfg.Model,
		CacheKey:         cacheKey,
		FallbackEligible: eligible,
		Client:           client,
	}, nil
}

// BuildBackends validates the roster and builds every backend in order.
func BuildBackends(r Roster, base llm.Config, observer llm.Observer) ([]Backend, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	backends := make([]Backend, 0, len(r.Backends))
	for _, e := range r.Backends {
		b, err := e.Backend(base, observer)
		if err != nil {
			return nil, err
		}
		backends = append(backends, b)
	}
	return backends, nil
}
