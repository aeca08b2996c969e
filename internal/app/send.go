package app

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Spok95/lms-bot/internal/bot/handlers"
	"github.com/Spok95/lms-bot/internal/bot/menu"
	"github.com/Spok95/lms-bot/internal/bot/shared/fsmutil"
	"github.com/Spok95/lms-bot/internal/logging"
	"github.com/Spok95/lms-bot/internal/metrics"
	"github.com/Spok95/lms-bot/internal/session"
	"github.com/Spok95/lms-bot/internal/tg"
)

func (a *App) deliver(c tgbotapi.Chattable) {
	if _, err := tg.Send(a.bot, c); err != nil {
		metrics.HandlerErrors.Inc()
		a.log.Warn("telegram send failed", zap.Error(err))
	}
}

func (a *App) send(chatID int64, text string) {
	a.deliver(tgbotapi.NewMessage(chatID, text))
}

func (a *App) sendKeyboard(chatID int64, text string, kb tgbotapi.ReplyKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	a.deliver(msg)
}

// sendReply: inline-клавиатура ответа важнее меню; меню — по правам сессии.
func (a *App) sendReply(chatID int64, sess *session.Session, rep fsmutil.Reply) {
	if rep.Text == "" {
		return
	}
	msg := tgbotapi.NewMessage(chatID, rep.Text)
	switch {
	case rep.Markup != nil:
		msg.ReplyMarkup = *rep.Markup
	case rep.Menu:
		msg.ReplyMarkup = menu.ForCapabilities(sess.Capabilities())
	}
	a.deliver(msg)
}

func (a *App) sendRetry(chatID int64, text, retry string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if retry != "" {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔁 Повторить", handlers.NavPrefix+retry),
		))
	}
	a.deliver(msg)
}

func (a *App) sendDocument(ctx context.Context, chatID int64, doc *handlers.Document) {
	file := tgbotapi.FileBytes{Name: doc.Name, Bytes: doc.Data}
	if _, err := tg.Send(a.bot, tgbotapi.NewDocument(chatID, file)); err != nil {
		metrics.HandlerErrors.Inc()
		logging.FromContext(ctx, a.log).Warn("send document failed", zap.String("name", doc.Name), zap.Error(err))
		a.send(chatID, "❌ Не удалось отправить файл.")
	}
}

func (a *App) deleteMessage(chatID int64, messageID int) {
	if _, err := tg.Request(a.bot, tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		a.log.Debug("delete message failed", zap.Error(err))
	}
}
