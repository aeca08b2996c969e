package app

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Spok95/lms-bot/internal/bot/handlers"
	"github.com/Spok95/lms-bot/internal/bot/menu"
	"github.com/Spok95/lms-bot/internal/bot/shared/fsmutil"
	"github.com/Spok95/lms-bot/internal/guard"
	"github.com/Spok95/lms-bot/internal/logging"
	"github.com/Spok95/lms-bot/internal/observability"
	"github.com/Spok95/lms-bot/internal/session"
	"github.com/Spok95/lms-bot/internal/tg"
)

func (a *App) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)
	sess := a.sessions.Get(chatID)
	_, inDialog := a.dialogs.Get(chatID)

	switch {
	case text == "/start":
		a.dialogs.Clear(chatID)
		a.greet(ctx, chatID, sess)
		a.navigate(ctx, chatID, "/")

	case text == "/logout" || text == menu.BtnLogout:
		a.logout(ctx, chatID, sess)

	case text == "/cancel" || (inDialog && fsmutil.IsCancelText(text)):
		if !inDialog {
			a.send(chatID, "Нечего отменять.")
			return
		}
		a.dialogs.Clear(chatID)
		a.sendReply(chatID, sess, fsmutil.Reply{Text: "🚫 Отменено.", Menu: sess.State() == session.Authenticated})

	default:
		if path, ok := menu.Path(text); ok {
			a.dialogs.Clear(chatID)
			a.navigate(ctx, chatID, path)
			return
		}
		if inDialog {
			a.step(ctx, chatID, sess, msg.MessageID, text)
			return
		}
		a.send(chatID, "⚠️ Неизвестная команда. Используйте /start")
	}
}

func (a *App) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	chatID := cq.Message.Chat.ID
	sess := a.sessions.Get(chatID)
	data := cq.Data

	if _, err := tg.Request(a.bot, tgbotapi.NewCallback(cq.ID, "")); err != nil {
		logging.FromContext(ctx, a.log).Debug("callback ack failed", zap.Error(err))
	}

	switch {
	case data == fsmutil.CancelData:
		fsmutil.DisableMarkup(a.bot, chatID, cq.Message.MessageID)
		if _, ok := a.dialogs.Get(chatID); !ok {
			return
		}
		a.dialogs.Clear(chatID)
		a.sendReply(chatID, sess, fsmutil.Reply{Text: "🚫 Отменено.", Menu: sess.State() == session.Authenticated})

	case strings.HasPrefix(data, fsmutil.InputPrefix):
		fsmutil.DisableMarkup(a.bot, chatID, cq.Message.MessageID)
		if _, ok := a.dialogs.Get(chatID); !ok {
			a.send(chatID, "Этот вопрос уже неактуален.")
			return
		}
		a.step(ctx, chatID, sess, 0, strings.TrimPrefix(data, fsmutil.InputPrefix))

	case strings.HasPrefix(data, handlers.NavPrefix):
		a.dialogs.Clear(chatID)
		a.navigate(ctx, chatID, strings.TrimPrefix(data, handlers.NavPrefix))

	case strings.HasPrefix(data, handlers.ActPrefix):
		a.act(ctx, chatID, sess, data)

	default:
		logging.FromContext(ctx, a.log).Debug("unknown callback", zap.String("data", data))
	}
}

// step — один шаг активного диалога, под замком чата.
func (a *App) step(ctx context.Context, chatID int64, sess *session.Session, inputID int, text string) {
	unlock := a.limiter.lock(chatID)
	dlg, ok := a.dialogs.Get(chatID)
	if !ok {
		unlock()
		return
	}
	gen := sess.Generation()
	rep, err := dlg.Step(ctx, sess, text)
	if err == nil && rep.Done {
		a.dialogs.Clear(chatID)
	}
	unlock()

	if err != nil {
		// диалог остаётся на том же шаге, пользователь может повторить ввод
		a.fail(ctx, chatID, sess, gen, err, "")
		return
	}
	if rep.DeleteInput && inputID != 0 {
		a.deleteMessage(chatID, inputID)
	}
	a.sendReply(chatID, sess, rep)
	if rep.Done && rep.Next != "" {
		a.navigate(ctx, chatID, rep.Next)
	}
}

func (a *App) greet(ctx context.Context, chatID int64, sess *session.Session) {
	msg := tgbotapi.NewMessage(chatID, "👋 Добро пожаловать в LMS!")
	if sess.Ensure(ctx) == session.Authenticated {
		msg.ReplyMarkup = menu.ForCapabilities(sess.Capabilities())
	} else {
		msg.ReplyMarkup = menu.Guest()
	}
	a.deliver(msg)
}

// logout не ходит на бэкенд; состояние сбрасывается даже при ошибке хранилища.
func (a *App) logout(ctx context.Context, chatID int64, sess *session.Session) {
	a.dialogs.Clear(chatID)
	a.views.Cancel(chatID)
	if err := sess.Logout(ctx); err != nil {
		observability.CaptureErr(err)
		logging.FromContext(ctx, a.log).Warn("logout: store clear failed", zap.Error(err))
	}
	msg := tgbotapi.NewMessage(chatID, "👋 Вы вышли из системы.")
	msg.ReplyMarkup = menu.Guest()
	a.deliver(msg)
	a.navigate(ctx, chatID, guard.LoginPath)
}
