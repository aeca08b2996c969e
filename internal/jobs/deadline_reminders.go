package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Spok95/lms-bot/internal/apiclient"
	"github.com/Spok95/lms-bot/internal/bot/handlers"
	"github.com/Spok95/lms-bot/internal/ctxutil"
	"github.com/Spok95/lms-bot/internal/db"
	"github.com/Spok95/lms-bot/internal/format"
	"github.com/Spok95/lms-bot/internal/logging"
	"github.com/Spok95/lms-bot/internal/models"
	"github.com/Spok95/lms-bot/internal/observability"
	"github.com/Spok95/lms-bot/internal/session"
	"github.com/Spok95/lms-bot/internal/tg"
)

const (
	DefaultReminderWindow = 24 * time.Hour
	// ReminderRetention — сколько хранить записи о прошедших дедлайнах.
	ReminderRetention = 7 * 24 * time.Hour
)

// ReminderLog — учёт уже отправленных напоминаний.
type ReminderLog interface {
	RemindedAmong(ctx context.Context, chatID int64, ids []int64) (map[int64]bool, error)
	MarkReminded(ctx context.Context, chatID int64, rs []models.Reminder) error
}

type dbReminderLog struct{ db *sql.DB }

// DBReminderLog — учёт в таблице deadline_reminders.
func DBReminderLog(database *sql.DB) ReminderLog { return dbReminderLog{db: database} }

func (l dbReminderLog) RemindedAmong(ctx context.Context, chatID int64, ids []int64) (map[int64]bool, error) {
	return db.RemindedAmong(ctx, l.db, chatID, ids)
}

func (l dbReminderLog) MarkReminded(ctx context.Context, chatID int64, rs []models.Reminder) error {
	return db.MarkReminded(ctx, l.db, chatID, rs)
}

// ObserveFunc — обработчик 401 диспетчера; gen — поколение сессии на момент
// запроса. true, если ошибка была 401.
type ObserveFunc func(ctx context.Context, chatID int64, sess *session.Session, gen uint64, err error) bool

// DeadlineReminders обходит чаты с сохранённой сессией и один раз
// напоминает о каждом несданном задании, срок которого наступает в пределах Window.
type DeadlineReminders struct {
	Sessions *session.Manager
	Chats    func(ctx context.Context) ([]int64, error)
	Reminded ReminderLog
	Bot      tg.Sender
	Observe  ObserveFunc
	Location *time.Location
	Window   time.Duration
	Now      func() time.Time
	Logger   *zap.Logger
}

func (r *DeadlineReminders) Run(ctx context.Context) error {
	chats, err := r.Chats(ctx)
	if err != nil {
		return fmt.Errorf("deadline reminders: list chats: %w", err)
	}
	var errs []error
	for _, chatID := range chats {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := r.remindChat(ctxutil.WithChatID(ctx, chatID), chatID); err != nil {
			observability.CaptureSystemErr(err)
			logging.FromContext(ctx, r.logger()).Warn("deadline reminders: chat failed", zap.Int64("chat_id", chatID), zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *DeadlineReminders) remindChat(ctx context.Context, chatID int64) error {
	sess := r.Sessions.Get(chatID)
	// сбой бэкенда не должен стирать сохранённые сессии
	if sess.Resume(ctx) != session.Authenticated {
		return nil
	}
	// у редакторов курсов нет своих заданий
	if sess.Capabilities().CanEditCourses {
		return nil
	}

	gen := sess.Generation()
	pending, err := sess.Services().Assignments.Mine(ctx, string(models.Pending))
	if err != nil {
		if r.observe(ctx, chatID, sess, gen, err) {
			return nil
		}
		return fmt.Errorf("chat %d: pending assignments: %w", chatID, err)
	}

	due := r.dueSoon(pending)
	if len(due) == 0 {
		return nil
	}
	ids := make([]int64, len(due))
	for i, a := range due {
		ids[i] = a.ID
	}
	already, err := r.Reminded.RemindedAmong(ctx, chatID, ids)
	if err != nil {
		return fmt.Errorf("chat %d: %w", chatID, err)
	}

	var sent []models.Reminder
	for _, a := range due {
		if already[a.ID] {
			continue
		}
		if _, err := tg.Send(r.Bot, r.message(chatID, a)); err != nil {
			logging.FromContext(ctx, r.logger()).Warn("deadline reminder not delivered", zap.Int64("assignment_id", a.ID), zap.Error(err))
			continue
		}
		remindersSent.Inc()
		sent = append(sent, models.Reminder{AssignmentID: a.ID, DueAt: a.DueDate.Time})
	}
	if err := r.Reminded.MarkReminded(ctx, chatID, sent); err != nil {
		return fmt.Errorf("chat %d: %w", chatID, err)
	}
	return nil
}

// dueSoon — задания со сроком в (now, now+Window].
func (r *DeadlineReminders) dueSoon(items []models.MyAssignment) []models.MyAssignment {
	now := time.Now()
	if r.Now != nil {
		now = r.Now()
	}
	window := r.Window
	if window <= 0 {
		window = DefaultReminderWindow
	}
	var out []models.MyAssignment
	for _, a := range items {
		if a.DueDate.IsZero() {
			continue
		}
		left := a.DueDate.Sub(now)
		if left > 0 && left <= window {
			out = append(out, a)
		}
	}
	return out
}

func (r *DeadlineReminders) message(chatID int64, a models.MyAssignment) tgbotapi.MessageConfig {
	text := fmt.Sprintf("⏰ Скоро дедлайн\n«%s» (%s)\nСдать до %s", a.Title, format.Text(a.CourseTitle), format.Date(a.DueDate.Time, r.Location))
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("📝 Открыть задание", fmt.Sprintf("%s/assignments/%d", handlers.NavPrefix, a.ID)),
	))
	return msg
}

func (r *DeadlineReminders) observe(ctx context.Context, chatID int64, sess *session.Session, gen uint64, err error) bool {
	if r.Observe != nil {
		return r.Observe(ctx, chatID, sess, gen, err)
	}
	if !errors.Is(err, apiclient.ErrUnauthorized) {
		return false
	}
	sess.ObserveFrom(ctx, gen, err)
	return true
}

func (r *DeadlineReminders) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

// PruneReminders — чистка записей о давно прошедших дедлайнах.
func PruneReminders(database *sql.DB, log *zap.Logger) Job {
	return func(ctx context.Context) error {
		n, err := db.PruneReminders(ctx, database, time.Now().Add(-ReminderRetention))
		if err != nil {
			return err
		}
		if n > 0 && log != nil {
			log.Info("pruned deadline reminders", zap.Int64("rows", n))
		}
		return nil
	}
}
