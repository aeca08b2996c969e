package fsmutil

import (
	"context"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/lms-bot/internal/metrics"
	"github.com/Spok95/lms-bot/internal/session"
	"github.com/Spok95/lms-bot/internal/tg"
)

// Reply — ответ шага диалога; отправляет его диспетчер.
type Reply struct {
	Text   string
	Markup *tgbotapi.InlineKeyboardMarkup
	// Done — диалог завершён, состояние чата очищается.
	Done bool
	// Next — путь, на который перейти после завершения.
	Next string
	// DeleteInput — удалить сообщение пользователя (пароль).
	DeleteInput bool
	// Menu — после ответа обновить клавиатуру по правам сессии.
	Menu bool
}

// Dialog — пошаговый сценарий одного чата. Step не должен продвигать
// состояние, если вернул ошибку: пользователь повторит ввод.
type Dialog interface {
	Step(ctx context.Context, sess *session.Session, text string) (Reply, error)
}

// Dialogs — активные диалоги по chatID.
type Dialogs struct {
	m sync.Map
}

func (d *Dialogs) Set(chatID int64, dlg Dialog) { d.m.Store(chatID, dlg) }

func (d *Dialogs) Get(chatID int64) (Dialog, bool) {
	v, ok := d.m.Load(chatID)
	if !ok {
		return nil, false
	}
	return v.(Dialog), true
}

func (d *Dialogs) Clear(chatID int64) { d.m.Delete(chatID) }

// pending — простая защита от повторной обработки "тяжёлых" действий.
// Ключ — chatID; значение — произвольный ключ контекста (например "export:grades").
var pending = struct {
	mu sync.Mutex
	m  map[int64]string
}{
	m: make(map[int64]string),
}

// SetPending помечает чат как "в обработке" для ключа key.
// Возвращает false, если уже что-то обрабатывается.
func SetPending(chatID int64, key string) bool {
	pending.mu.Lock()
	defer pending.mu.Unlock()

	if _, ok := pending.m[chatID]; ok {
		return false
	}
	pending.m[chatID] = key
	return true
}

// ClearPending снимает флаг "в обработке", если ключ совпал.
func ClearPending(chatID int64, key string) {
	pending.mu.Lock()
	defer pending.mu.Unlock()

	if cur, ok := pending.m[chatID]; ok && cur == key {
		delete(pending.m, chatID)
	}
}

// DisableMarkup "гасит" inline‑клавиатуру у сообщения (one‑shot клавиатура).
func DisableMarkup(bot tg.Sender, chatID int64, messageID int) {
	empty := tgbotapi.InlineKeyboardMarkup{InlineKeyboard: make([][]tgbotapi.InlineKeyboardButton, 0)}
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, empty)
	if _, err := tg.Request(bot, edit); err != nil {
		metrics.HandlerErrors.Inc()
	}
}

const (
	CancelData = "act:cancel"
	// InputPrefix — кнопка, чьё значение уходит в диалог как ввод.
	InputPrefix = "in:"
)

// CancelRow — строка с кнопкой "Отмена" для шагов диалога.
func CancelRow() []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", CancelData))
}

func CancelMarkup() *tgbotapi.InlineKeyboardMarkup {
	mk := tgbotapi.NewInlineKeyboardMarkup(CancelRow())
	return &mk
}

// ChoiceMarkup — варианты ответа кнопками (текст кнопки уходит как ввод) плюс "Отмена".
func ChoiceMarkup(prefix string, options ...[2]string) *tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, o := range options {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(o[0], prefix+o[1])))
	}
	rows = append(rows, CancelRow())
	mk := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &mk
}

// IsCancelText — проверка "текстовой" отмены на шагах, где пользователь вводит текст.
// Поддерживаем: "Отмена", "/cancel", "cancel" (регистр/пробелы игнорим).
func IsCancelText(s string) bool {
	s = strings.TrimSpace(strings.ToLower(s))
	return s == "отмена" || s == "/cancel" || s == "cancel" || s == "❌ отмена"
}
