package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/Spok95/lms-bot/internal/ctxutil"
	"github.com/Spok95/lms-bot/internal/models"
)

// RemindedAmong — какие из ids уже напоминались этому чату.
func RemindedAmong(ctx context.Context, database *sql.DB, chatID int64, ids []int64) (map[int64]bool, error) {
	out := make(map[int64]bool, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := database.QueryContext(ctx, `
		SELECT assignment_id FROM deadline_reminders
		WHERE chat_id = $1 AND assignment_id = ANY($2)
	`, chatID, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("reminded among: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}

// MarkReminded — пометить напоминания отправленными. Повтор не ошибка.
func MarkReminded(ctx context.Context, database *sql.DB, chatID int64, rs []models.Reminder) error {
	if len(rs) == 0 {
		return nil
	}
	ids := make([]int64, len(rs))
	dues := make([]time.Time, len(rs))
	for i, r := range rs {
		ids[i] = r.AssignmentID
		dues[i] = r.DueAt.UTC()
	}
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	_, err := database.ExecContext(ctx, `
		INSERT INTO deadline_reminders (chat_id, assignment_id, due_at)
		SELECT $1, a.id, a.due
		FROM unnest($2::bigint[], $3::timestamptz[]) AS a(id, due)
		ON CONFLICT (chat_id, assignment_id) DO NOTHING
	`, chatID, pq.Array(ids), pq.Array(timesText(dues)))
	if err != nil {
		return fmt.Errorf("mark reminded: %w", err)
	}
	return nil
}

// PruneReminders удаляет записи о дедлайнах, прошедших до before.
func PruneReminders(ctx context.Context, database *sql.DB, before time.Time) (int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	res, err := database.ExecContext(ctx, `DELETE FROM deadline_reminders WHERE due_at < $1`, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("prune reminders: %w", err)
	}
	return res.RowsAffected()
}

// pq.Array не умеет []time.Time, отдаём текстом.
func timesText(ts []time.Time) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Format(time.RFC3339Nano)
	}
	return out
}
