// Package simulation fans one prompt out to every configured backend,
// interprets each completion and tracks the per-backend slots of a run.
package simulation

import (
	"errors"

	"github.com/alexanderramin/mirrorer/internal/domain"
	"github.com/alexanderramin/mirrorer/internal/llm"
)

// FineTunedCacheKey is the key pre-computed fine-tuned results are stored
// under in the catalog.
const FineTunedCacheKey = "Fine-tuned_model"

// ErrUnknownBackend is returned when a backend is selected by a name the
// roster does not have.
var ErrUnknownBackend = errors.New("unknown backend")

// Backend is one model configuration in the comparison.
type Backend struct {
	Name     string
	Role     domain.BackendRole
	Engine   llm.Engine
	Model    string
	CacheKey string

	// FallbackEligible backends substitute the cached result for the same
	// user when their live call fails.
	FallbackEligible bool

	Client llm.LLMClient
}
