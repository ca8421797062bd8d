package postgres

import (
	"context"
	"strconv"
	"strings"

	"github.com/julianstephens/daystreak/internal/dbx"
	apperrors "github.com/julianstephens/daystreak/internal/errors"
	"github.com/julianstephens/daystreak/internal/models"
)

func completionFilter(q models.CompletionQuery) (string, []any) {
	var where []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, cond+" $"+strconv.Itoa(len(args)))
	}

	add("h.owner_id =", q.OwnerID)
	if q.HabitID != "" {
		add("c.habit_id =", q.HabitID)
	}
	if q.Start != "" {
		add("c.day >=", q.Start)
	}
	if q.End != "" {
		add("c.day <=", q.End)
	}
	return strings.Join(where, " AND "), args
}

func (s *Store) LoadCompletions(ctx context.Context, q models.CompletionQuery) ([]models.CompletionEvent, error) {
	where, args := completionFilter(q)
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.habit_id, c.day, c.recorded_at
		FROM completions c
		JOIN habits h ON h.id = c.habit_id
		WHERE `+where+`
		ORDER BY c.day, c.habit_id`, args...)
	if err != nil {
		return nil, apperrors.Persistence("load completions", err)
	}
	defer rows.Close()

	var events []models.CompletionEvent
	for rows.Next() {
		var e models.CompletionEvent
		if err := rows.Scan(&e.ID, &e.HabitID, &e.Day, &e.RecordedAt); err != nil {
			return nil, apperrors.Persistence("scan completion", err)
		}
		e.RecordedAt = e.RecordedAt.UTC()
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
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (habit_id, day) DO NOTHING`,
		event.ID, event.HabitID, event.Day, event.RecordedAt.UTC())
	if err != nil {
		return false, apperrors.Persistence("append completion", err)
	}
	inserted, err := dbx.Affected(res)
	return inserted, apperrors.Persistence("append completion", err)
}

func (s *Store) RemoveCompletion(ctx context.Context, habitID, day string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM completions WHERE habit_id = $1 AND day = $2`, habitID, day)
	if err != nil {
		return false, apperrors.Persistence("remove completion", err)
	}
	removed, err := dbx.Affected(res)
	return removed, apperrors.Persistence("remove completion", err)
}
