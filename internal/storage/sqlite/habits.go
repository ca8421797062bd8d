package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/daystreak/internal/dbx"
	apperrors "github.com/julianstephens/daystreak/internal/errors"
	"github.com/julianstephens/daystreak/internal/models"
	"github.com/julianstephens/daystreak/internal/storage"
)

const habitColumns = `id, owner_id, name, category, created_on, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHabit(row rowScanner) (models.Habit, error) {
	var h models.Habit
	var category, createdAt string
	if err := row.Scan(&h.ID, &h.OwnerID, &h.Name, &category, &h.CreatedOn, &createdAt); err != nil {
		return models.Habit{}, err
	}
	h.Category = models.Category(category)

	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	h.CreatedAt = t
	return h, nil
}

func (s *Store) LoadHabits(ctx context.Context, ownerID string) ([]models.Habit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+habitColumns+`
		FROM habits WHERE owner_id = ?
		ORDER BY created_at, id`, ownerID)
	if err != nil {
		return nil, apperrors.Persistence("load habits", err)
	}
	defer rows.Close()

	var habits []models.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, apperrors.Persistence("scan habit", err)
		}
		habits = append(habits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Persistence("load habits", err)
	}
	return habits, nil
}

func (s *Store) GetHabit(ctx context.Context, ownerID, id string) (models.Habit, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+habitColumns+`
		FROM habits WHERE id = ? AND owner_id = ?`, id, ownerID)

	h, err := scanHabit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Habit{}, apperrors.Persistence("get habit", err)
	}
	return h, nil
}

// SaveHabit inserts or renames a habit. An ID held by another owner is
// reported as storage.ErrNotFound and left untouched.
func (s *Store) SaveHabit(ctx context.Context, habit models.Habit) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO habits (`+habitColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			category = excluded.category
		WHERE habits.owner_id = excluded.owner_id`,
		habit.ID, habit.OwnerID, habit.Name, string(habit.Category),
		habit.CreatedOn, habit.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return apperrors.Persistence("save habit", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperrors.Persistence("save habit", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteHabit(ctx context.Context, ownerID, id string) error {
	err := dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM habits WHERE id = ? AND owner_id = ?`, id, ownerID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM completions WHERE habit_id = ?`, id); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM habits WHERE id = ? AND owner_id = ?`, id, ownerID)
		return err
	})
	if errors.Is(err, storage.ErrNotFound) {
		return err
	}
	return apperrors.Persistence("delete habit", err)
}
