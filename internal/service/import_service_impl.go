package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/mirrorer/internal/catalog"
	"github.com/alexanderramin/mirrorer/internal/db"
	"github.com/alexanderramin/mirrorer/internal/repository"
)

// ErrInvalidCatalog is returned when a catalog fails validation; nothing
// is written in that case.
var ErrInvalidCatalog = errors.New("catalog validation failed")

type importService struct {
	uow      db.UnitOfWork
	observer UseCaseObserver
}

// NewImportService creates an import service writing through uow.
func NewImportService(uow db.UnitOfWork, observers ...UseCaseObserver) ImportService {
	return &importService{
		uow:      uow,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *importService) ImportFile(ctx context.Context, filePath string) (*ImportResult, error) {
	f, err := catalog.LoadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("loading catalog file: %w", err)
	}
	return s.ImportCatalog(ctx, f)
}

// ImportCatalog validates and converts f, then writes every user in one
// transaction. A user whose id is already stored is replaced.
func (s *importService) ImportCatalog(ctx context.Context, f *catalog.File) (result *ImportResult, err error) {
	uc := startUseCase(ctx, s.observer, "import-catalog")
	defer uc.finish(&err)

	if errs := catalog.Validate(f); len(errs) > 0 {
		uc.set("validation_errors", len(errs))
		return nil, formatValidationErrors(errs)
	}

	users := catalog.Convert(f)
	res := &ImportResult{}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repo := repository.NewSQLiteCatalogRepo(tx)

		seq, err := repo.NextSeq(ctx)
		if err != nil {
			return err
		}
		for _, u := range users {
			exists, err := repo.Exists(ctx, u.ID())
			if err != nil {
				return err
			}
			if exists {
				if err := repo.Delete(ctx, u.ID()); err != nil {
					return fmt.Errorf("replacing user %s: %w", u.ID(), err)
				}
				res.Replaced++
			}
			if err := repo.Insert(ctx, seq, u); err != nil {
				return fmt.Errorf("importing user %s: %w", u.ID(), err)
			}
			seq++

			res.Users++
			res.HistoryItems += len(u.History)
			res.ExposureItems += len(u.Exposure)
			res.ModelOutputs += len(u.ModelOutputs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.set("users", res.Users)
	uc.set("replaced", res.Replaced)
	result = res
	return result, nil
}

func formatValidationErrors(errs []error) error {
	msg := fmt.Sprintf("(%d errors):", len(errs))
	for _, e := range errs {
		msg += "\n  - " + e.Error()
	}
	return fmt.Errorf("%w %s", ErrInvalidCatalog, msg)
}
