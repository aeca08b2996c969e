// Package app — диспетчер Telegram-обновлений: команды, кнопки, диалоги,
// навигация через guard и единственный обработчик истёкшей сессии.
package app

import (
	"context"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Spok95/lms-bot/internal/bot/shared/fsmutil"
	"github.com/Spok95/lms-bot/internal/ctxutil"
	"github.com/Spok95/lms-bot/internal/guard"
	"github.com/Spok95/lms-bot/internal/metrics"
	"github.com/Spok95/lms-bot/internal/session"
	"github.com/Spok95/lms-bot/internal/tg"
)

// maxRedirects — защита от циклов в таблице маршрутов.
const maxRedirects = 4

type Options struct {
	Bot      tg.Sender
	Sessions *session.Manager
	Guard    *guard.Guard
	Location *time.Location
	Logger   *zap.Logger
	Now      func() time.Time
}

type App struct {
	bot      tg.Sender
	sessions *session.Manager
	guard    *guard.Guard
	loc      *time.Location
	log      *zap.Logger
	now      func() time.Time

	dialogs fsmutil.Dialogs
	views   *ViewTracker
	limiter *ChatLimiter
}

func New(opts Options) *App {
	a := &App{
		bot:      opts.Bot,
		sessions: opts.Sessions,
		guard:    opts.Guard,
		loc:      opts.Location,
		log:      opts.Logger,
		now:      opts.Now,
		views:    NewViewTracker(),
		limiter:  NewChatLimiter(),
	}
	if a.guard == nil {
		a.guard = guard.Default()
	}
	if a.loc == nil {
		a.loc = time.Local
	}
	if a.log == nil {
		a.log = zap.NewNop()
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a
}

// Run читает обновления до закрытия канала или отмены ctx. Каждое
// обновление обрабатывается в своей горутине.
func (a *App) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		select {
		case <-ctx.Done():
			return
		case upd, ok := <-updates:
			if !ok {
				return
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				a.HandleUpdate(ctx, upd)
			}()
		}
	}
}

func (a *App) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			sentry.CurrentHub().Recover(r)
			a.log.Error("panic in update handler", zap.Any("panic", r), zap.Int("update_id", upd.UpdateID))
			metrics.HandlerErrors.Inc()
		}
	}()
	metrics.BotUpdates.Inc()

	switch {
	case upd.CallbackQuery != nil && upd.CallbackQuery.Message != nil:
		cq := upd.CallbackQuery
		ctx = ctxutil.WithOp(ctxutil.WithChatID(ctx, cq.Message.Chat.ID), "callback")
		a.handleCallback(ctx, cq)
	case upd.Message != nil:
		ctx = ctxutil.WithOp(ctxutil.WithChatID(ctx, upd.Message.Chat.ID), "message")
		a.handleMessage(ctx, upd.Message)
	}
}
