package redisstore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Spok95/lms-bot/internal/models"
)

const reminderPrefix = "lms:reminded:"

// ReminderKey — отметка "напоминание отправлено" для чата и задания.
func ReminderKey(chatID, assignmentID int64) string {
	return reminderPrefix + strconv.FormatInt(chatID, 10) + ":" + strconv.FormatInt(assignmentID, 10)
}

// ReminderLog — учёт напоминаний в redis. Отметка живёт до дедлайна
// плюс retention, чистка не нужна.
type ReminderLog struct {
	rdb       *redis.Client
	retention time.Duration
	now       func() time.Time
}

func NewReminderLog(rdb *redis.Client, retention time.Duration) *ReminderLog {
	return &ReminderLog{rdb: rdb, retention: retention, now: time.Now}
}

func (l *ReminderLog) RemindedAmong(ctx context.Context, chatID int64, ids []int64) (map[int64]bool, error) {
	out := make(map[int64]bool, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cmds := make([]*redis.IntCmd, len(ids))
	_, err := l.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = p.Exists(ctx, ReminderKey(chatID, id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("redis reminded among %d: %w", chatID, err)
	}
	for i, c := range cmds {
		if c.Val() > 0 {
			out[ids[i]] = true
		}
	}
	return out, nil
}

// MarkReminded — повтор не ошибка.
func (l *ReminderLog) MarkReminded(ctx context.Context, chatID int64, rs []models.Reminder) error {
	if len(rs) == 0 {
		return nil
	}
	now := l.now()
	_, err := l.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		for _, r := range rs {
			ttl := r.DueAt.Add(l.retention).Sub(now)
			if ttl < time.Hour {
				ttl = time.Hour
			}
			p.Set(ctx, ReminderKey(chatID, r.AssignmentID), 1, ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis mark reminded %d: %w", chatID, err)
	}
	return nil
}
