package repository

import (
	"context"

	"github.com/alexanderramin/mirrorer/internal/catalog"
	"github.com/alexanderramin/mirrorer/internal/domain"
)

// ErrNotFound is catalog.ErrNotFound, so callers holding either a file
// provider or a repository match missing users the same way.
var ErrNotFound = catalog.ErrNotFound

// CatalogRepo is the SQLite-backed catalog. The read side satisfies
// catalog.Provider; the write side is used by the import service inside a
// unit of work.
type CatalogRepo interface {
	catalog.Provider

	NextSeq(ctx context.Context) (int, error)
	Insert(ctx context.Context, seq int, u *domain.User) error
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int, error)
}

var _ CatalogRepo = (*SQLiteCatalogRepo)(nil)
