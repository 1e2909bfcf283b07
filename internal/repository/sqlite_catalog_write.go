package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/alexanderramin/mirrorer/internal/domain"
)

// NextSeq returns the next import sequence value. Users are listed in
// sequence order, which preserves the order of the source file.
func (r *SQLiteCatalogRepo) NextSeq(ctx context.Context) (int, error) {
	var next int
	if err := r.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM users`).Scan(&next); err != nil {
		return 0, fmt.Errorf("allocating user seq: %w", err)
	}
	return next, nil
}

// Insert writes a user with its history, exposure list and model outputs.
// Item positions are the slice indexes, so exposure labels survive a round
// trip through the database.
func (r *SQLiteCatalogRepo) Insert(ctx context.Context, seq int, u *domain.User) error {
	traits, err := encodeStrings(u.Profile.Traits)
	if err != nil {
		return fmt.Errorf("user %s: %w", u.ID(), err)
	}

	query := `INSERT INTO users (id, domain, seq, name, avatar, age, gender, occupation, location,
		traits_json, raw_profile, ground_truth, imported_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		u.Profile.ID,
		string(u.Profile.Domain),
		seq,
		u.Profile.Name,
		u.Profile.Avatar,
		u.Profile.Age,
		u.Profile.Gender,
		u.Profile.Occupation,
		u.Profile.Location,
		traits,
		u.Profile.RawProfile,
		u.GroundTruth,
		nowUTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting user %s: %w", u.ID(), err)
	}

	for i, h := range u.History {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO history_items (user_id, position, title, year, genre, rating, cover,
				description, author, published_at, pages, global_rating, my_behavior)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			u.ID(), i, h.Title, h.Year, h.Genre, h.Rating, h.Cover,
			h.Description, h.Author, h.PublishedAt, h.Pages, h.GlobalRating, h.MyBehavior,
		)
		if err != nil {
			return fmt.Errorf("inserting history item %d for %s: %w", i, u.ID(), err)
		}
	}

	for i, e := range u.Exposure {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO exposure_items (user_id, position, title, year, genre, cover, author,
				published_at, pages, rating)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			u.ID(), i, e.Title, e.Year, e.Genre, e.Cover, e.Author, e.PublishedAt, e.Pages, e.Rating,
		)
		if err != nil {
			return fmt.Errorf("inserting exposure item %s for %s: %w", domain.Label(i), u.ID(), err)
		}
	}

	keys := make([]string, 0, len(u.ModelOutputs))
	for k := range u.ModelOutputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		raw, err := encodeResult(u.ModelOutputs[k])
		if err != nil {
			return fmt.Errorf("model output %s for %s: %w", k, u.ID(), err)
		}
		_, err = r.db.ExecContext(ctx,
			`INSERT INTO model_outputs (user_id, cache_key, result_json) VALUES (?, ?, ?)`,
			u.ID(), k, raw,
		)
		if err != nil {
			return fmt.Errorf("inserting model output %s for %s: %w", k, u.ID(), err)
		}
	}
	return nil
}

// Delete removes a user and everything stored for it. Child rows are
// deleted explicitly since foreign key enforcement is per connection.
func (r *SQLiteCatalogRepo) Delete(ctx context.Context, id string) error {
	for _, table := range []string{"model_outputs", "exposure_items", "history_items"} {
		if _, err := r.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE user_id = ?`, id); err != nil {
			return fmt.Errorf("deleting %s for %s: %w", table, id, err)
		}
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting user %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting user %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("catalog user %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SQLiteCatalogRepo) Exists(ctx context.Context, id string) (bool, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE id = ?`, id).Scan(&n); err != nil {
		return false, fmt.Errorf("checking user %s: %w", id, err)
	}
	return n > 0, nil
}

func (r *SQLiteCatalogRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return n, nil
}
