package testutil

import (
	"fmt"
	"sync/atomic"

	"github.com/alexanderramin/mirrorer/internal/domain"
)

var testUserCounter atomic.Int64

// User options
type UserOption func(*domain.User)

func WithDomain(d domain.CatalogDomain) UserOption {
	return func(u *domain.User) {
		u.Profile.Domain = d
	}
}

func WithName(name string) UserOption {
	return func(u *domain.User) {
		u.Profile.Name = name
	}
}

func WithTraits(traits ...string) UserOption {
	return func(u *domain.User) {
		u.Profile.Traits = traits
	}
}

func WithRawProfile(raw string) UserOption {
	return func(u *domain.User) {
		u.Profile.RawProfile = raw
	}
}

// WithHistory replaces the history with one item per title.
func WithHistory(titles ...string) UserOption {
	return func(u *domain.User) {
		u.History = make([]domain.HistoryItem, len(titles))
		for i, title := range titles {
			u.History[i] = domain.HistoryItem{Title: title, Rating: "4"}
		}
	}
}

// WithHistoryItems replaces the history with fully specified items.
func WithHistoryItems(items ...domain.HistoryItem) UserOption {
	return func(u *domain.User) {
		u.History = items
	}
}

// WithExposure replaces the exposure list with one item per title.
func WithExposure(titles ...string) UserOption {
	return func(u *domain.User) {
		u.Exposure = make([]domain.ExposureItem, len(titles))
		for i, title := range titles {
			u.Exposure[i] = domain.ExposureItem{Title: title}
		}
	}
}

func WithExposureItems(items ...domain.ExposureItem) UserOption {
	return func(u *domain.User) {
		u.Exposure = items
	}
}

// WithModelOutput stores a cached result under key.
func WithModelOutput(key string, r domain.SimulationResult) UserOption {
	return func(u *domain.User) {
		if u.ModelOutputs == nil {
			u.ModelOutputs = make(map[string]domain.SimulationResult)
		}
		u.ModelOutputs[key] = r
	}
}

func WithGroundTruth(label string) UserOption {
	return func(u *domain.User) {
		u.GroundTruth = label
	}
}

// NewTestUser builds a Books user with two history items and three
// exposure candidates. An empty id gets a unique generated one.
func NewTestUser(id string, opts ...UserOption) *domain.User {
	if id == "" {
		id = fmt.Sprintf("test-user-%03d", testUserCounter.Add(1))
	}
	u := &domain.User{
		Profile: domain.UserProfile{
			ID:         id,
			Name:       "Test User",
			Domain:     domain.DomainBooks,
			Age:        "34",
			Gender:     "female",
			Occupation: "librarian",
			Location:   "Lisbon",
			Traits:     []string{"curious"},
		},
		History: []domain.HistoryItem{
			{Title: "Dune", Year: "1965", Genre: "Sci-Fi", Rating: "5"},
			{Title: "Hyperion", Year: "1989", Genre: "Sci-Fi", Rating: "4"},
		},
		Exposure: []domain.ExposureItem{
			{Title: "Foundation", Genre: "Sci-Fi"},
			{Title: "Emma", Genre: "Romance"},
			{Title: "Dracula", Genre: "Horror"},
		},
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// NewTestResult builds a result choosing behavior with filled narrative
// sections.
func NewTestResult(behavior string) domain.SimulationResult {
	return domain.SimulationResult{
		Stimulus:   domain.Section{Text: "browsing", Factors: "cover"},
		Knowledge:  domain.Section{Text: "knows the author", Factors: "prior reads"},
		Evaluation: domain.Section{Text: "fits the taste", Style: "Logical"},
		Behavior:   behavior,
	}
}
