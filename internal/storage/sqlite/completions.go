package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/daystreak/internal/dbx"
	apperrors "github.com/julianstephens/daystreak/internal/errors"
	"github.com/julianstephens/daystreak/internal/models"
)

func (s *Store) LoadCompletions(ctx context.Context, q models.CompletionQuery) ([]models.CompletionEvent, error) {
	where := []string{"h.owner_id = ?"}
	args := []any{q.OwnerID}
	if q.HabitID != "" {
		where = append(where, "c.habit_id = ?")
		args = append(args, q.HabitID)
	}
	if q.Start != "" {
		where = append(where, "c.day >= ?")
		args = append(args, q.Start)
	}
	if q.End != "" {
		where = append(where, "c.day <= ?")
		args = append(args, q.End)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.habit_id, c.day, c.recorded_at
		FROM completions c
		JOIN habits h ON h.id = c.habit_id
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY c.day, c.habit_id`, args...)
	if err != nil {
		return nil, apperrors.Persistence("load completions", err)
	}
	defer rows.Close()

	var events []models.CompletionEvent
	for rows.Next() {
		var e models.CompletionEvent
		var recordedAt string
		if err := rows.Scan(&e.ID, &e.HabitID, &e.Day, &recordedAt); err != nil {
			return nil, apperrors.Persistence("scan completion", err)
		}
		t, err := time.Parse(time.RFC3339Nano, recordedAt)
		if err != nil {
			return nil, apperrors.Persistence("scan completion", fmt.Errorf("failed to parse recorded_at: %w", err))
		}
		e.RecordedAt = t
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Persistence("load completions", err)
	}
	return events, nil
}

func (s *Store) AppendCompletion(ctx context.Context, event models.CompletionEvent) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO completions (id, habit_id, day, recorded_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(habit_id, day) DO NOTHING`,
		event.ID, event.HabitID, event.Day, event.RecordedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return false, apperrors.Persistence("append completion", err)
	}
	inserted, err := dbx.Affected(res)
	return inserted, apperrors.Persistence("append completion", err)
}

func (s *Store) RemoveCompletion(ctx context.Context, habitID, day string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM completions WHERE habit_id = ? AND day = ?`, habitID, day)
	if err != nil {
		return false, apperrors.Persistence("remove completion", err)
	}
	removed, err := dbx.Affected(res)
	return removed, apperrors.Persistence("remove completion", err)
}
