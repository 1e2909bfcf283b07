package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/alexanderramin/mirrorer/internal/domain"
)

// ErrNotFound is returned when a user id is not in the catalog.
var ErrNotFound = errors.New("user not found")

// Provider is the read-only source of catalog users.
type Provider interface {
	// Domains lists the catalog domains that have users.
	Domains(ctx context.Context) ([]string, error)

	// ListUsers returns the users of a domain, or of every domain when
	// domainName is empty.
	ListUsers(ctx context.Context, domainName string) ([]*domain.User, error)

	GetUser(ctx context.Context, id string) (*domain.User, error)

	// CachedResult returns the pre-computed result stored for a user
	// under a backend cache key.
	CachedResult(ctx context.Context, userID, key string) (domain.SimulationResult, bool, error)
}

// FileProvider serves a catalog file. The file is read and validated on
// first use and kept for the lifetime of the process.
type FileProvider struct {
	path string

	once  sync.Once
	users []*domain.User
	byID  map[string]*domain.User
	err   error
}

// NewFileProvider creates a provider over the catalog file at path.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

// NewMemoryProvider serves an already-converted set of users.
func NewMemoryProvider(users []*domain.User) *FileProvider {
	p := &FileProvider{}
	p.once.Do(func() { p.index(users) })
	return p
}

func (p *FileProvider) load() error {
	p.once.Do(func() {
		f, err := LoadFile(p.path)
		if err != nil {
			p.err = fmt.Errorf("loading catalog %s: %w", p.path, err)
			return
		}
		if errs := Validate(f); len(errs) > 0 {
			p.err = fmt.Errorf("catalog %s is invalid: %w", p.path, errors.Join(errs...))
			return
		}
		p.index(Convert(f))
	})
	return p.err
}

func (p *FileProvider) index(users []*domain.User) {
	p.users = users
	p.byID = make(map[string]*domain.User, len(users))
	for _, u := range users {
		p.byID[u.ID()] = u
	}
}

func (p *FileProvider) Domains(ctx context.Context) ([]string, error) {
	if err := p.load(); err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []string
	for _, u := range p.users {
		d := string(u.Profile.Domain)
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (p *FileProvider) ListUsers(ctx context.Context, domainName string) ([]*domain.User, error) {
	if err := p.load(); err != nil {
		return nil, err
	}
	out := make([]*domain.User, 0, len(p.users))
	for _, u := range p.users {
		if domainName == "" || string(u.Profile.Domain) == domainName {
			out = append(out, u)
		}
	}
	return out, nil
}

func (p *FileProvider) GetUser(ctx context.Context, id string) (*domain.User, error) {
	if err := p.load(); err != nil {
		return nil, err
	}
	u, ok := p.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return u, nil
}

func (p *FileProvider) CachedResult(ctx context.Context, userID, key string) (domain.SimulationResult, bool, error) {
	u, err := p.GetUser(ctx, userID)
	if err != nil {
		return domain.SimulationResult{}, false, err
	}
	r, ok := u.CachedOutput(key)
	return r, ok, nil
}
