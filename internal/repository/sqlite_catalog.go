package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/mirrorer/internal/db"
	"github.com/alexanderramin/mirrorer/internal/domain"
)

// SQLiteCatalogRepo implements CatalogRepo using a SQLite database.
type SQLiteCatalogRepo struct {
	db db.DBTX
}

// NewSQLiteCatalogRepo creates a new SQLiteCatalogRepo.
func NewSQLiteCatalogRepo(conn db.DBTX) *SQLiteCatalogRepo {
	return &SQLiteCatalogRepo{db: conn}
}

const userColumns = `id, domain, name, avatar, age, gender, occupation, location,
	traits_json, raw_profile, ground_truth`

func (r *SQLiteCatalogRepo) Domains(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT domain FROM users ORDER BY domain`)
	if err != nil {
		return nil, fmt.Errorf("listing domains: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scanning domain: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *SQLiteCatalogRepo) ListUsers(ctx context.Context, domainName string) ([]*domain.User, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if domainName == "" {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+userColumns+` FROM users ORDER BY seq, id`)
	} else {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+userColumns+` FROM users WHERE domain = ? ORDER BY seq, id`, domainName)
	}
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}

	users, err := r.scanUsers(rows)
	if err != nil {
		return nil, err
	}
	// Children are loaded after the user cursor is closed; an in-memory
	// database has a single connection.
	for _, u := range users {
		if err := r.loadChildren(ctx, u); err != nil {
			return nil, err
		}
	}
	return users, nil
}

func (r *SQLiteCatalogRepo) GetUser(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("catalog user %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning user %s: %w", id, err)
	}
	if err := r.loadChildren(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *SQLiteCatalogRepo) CachedResult(ctx context.Context, userID, key string) (domain.SimulationResult, bool, error) {
	var raw string
	err := r.db.QueryRowContext(ctx,
		`SELECT result_json FROM model_outputs WHERE user_id = ? AND cache_key = ?`,
		userID, key,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.SimulationResult{}, false, nil
	}
	if err != nil {
		return domain.SimulationResult{}, false, fmt.Errorf("reading cached result for %s/%s: %w", userID, key, err)
	}
	res, err := decodeResult(raw)
	if err != nil {
		return domain.SimulationResult{}, false, fmt.Errorf("cached result for %s/%s: %w", userID, key, err)
	}
	return res, true, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*domain.User, error) {
	var (
		u      domain.User
		dom    string
		traits string
	)
	err := s.Scan(
		&u.Profile.ID,
		&dom,
		&u.Profile.Name,
		&u.Profile.Avatar,
		&u.Profile.Age,
		&u.Profile.Gender,
		&u.Profile.Occupation,
		&u.Profile.Location,
		&traits,
		&u.Profile.RawProfile,
		&u.GroundTruth,
	)
	if err != nil {
		return nil, err
	}
	u.Profile.Domain = domain.CatalogDomain(dom)
	if u.Profile.Traits, err = decodeStrings(traits); err != nil {
		return nil, fmt.Errorf("user %s traits: %w", u.Profile.ID, err)
	}
	return &u, nil
}

func (r *SQLiteCatalogRepo) scanUsers(rows *sql.Rows) ([]*domain.User, error) {
	defer rows.Close()
	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}
	return users, nil
}

func (r *SQLiteCatalogRepo) loadChildren(ctx context.Context, u *domain.User) error {
	var err error
	if u.History, err = r.listHistory(ctx, u.ID()); err != nil {
		return err
	}
	if u.Exposure, err = r.listExposure(ctx, u.ID()); err != nil {
		return err
	}
	if u.ModelOutputs, err = r.listModelOutputs(ctx, u.ID()); err != nil {
		return err
	}
	return nil
}

func (r *SQLiteCatalogRepo) listHistory(ctx context.Context, userID string) ([]domain.HistoryItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT title, year, genre, rating, cover, description, author, published_at,
			pages, global_rating, my_behavior
		FROM history_items WHERE user_id = ? ORDER BY position`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing history for %s: %w", userID, err)
	}
	defer rows.Close()

	var items []domain.HistoryItem
	for rows.Next() {
		var h domain.HistoryItem
		if err := rows.Scan(&h.Title, &h.Year, &h.Genre, &h.Rating, &h.Cover, &h.Description,
			&h.Author, &h.PublishedAt, &h.Pages, &h.GlobalRating, &h.MyBehavior); err != nil {
			return nil, fmt.Errorf("scanning history item: %w", err)
		}
		items = append(items, h)
	}
	return items, rows.Err()
}

func (r *SQLiteCatalogRepo) listExposure(ctx context.Context, userID string) ([]domain.ExposureItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT title, year, genre, cover, author, published_at, pages, rating
		FROM exposure_items WHERE user_id = ? ORDER BY position`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing exposure for %s: %w", userID, err)
	}
	defer rows.Close()

	var items []domain.ExposureItem
	for rows.Next() {
		var e domain.ExposureItem
		if err := rows.Scan(&e.Title, &e.Year, &e.Genre, &e.Cover, &e.Author,
			&e.PublishedAt, &e.Pages, &e.Rating); err != nil {
			return nil, fmt.Errorf("scanning exposure item: %w", err)
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

func (r *SQLiteCatalogRepo) listModelOutputs(ctx context.Context, userID string) (map[string]domain.SimulationResult, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT cache_key, result_json FROM model_outputs WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing model outputs for %s: %w", userID, err)
	}
	defer rows.Close()

	var out map[string]domain.SimulationResult
	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, fmt.Errorf("scanning model output: %w", err)
		}
		res, err := decodeResult(raw)
		if err != nil {
			return nil, fmt.Errorf("model output %s/%s: %w", userID, key, err)
		}
		if out == nil {
			out = make(map[string]domain.SimulationResult)
		}
		out[key] = res
	}
	return out, rows.Err()
}
