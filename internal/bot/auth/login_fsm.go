package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/Spok95/lms-bot/internal/apiclient"
	"github.com/Spok95/lms-bot/internal/bot/shared/fsmutil"
	"github.com/Spok95/lms-bot/internal/observability"
	"github.com/Spok95/lms-bot/internal/session"
)

const (
	loginStepEmail = iota
	loginStepPassword
)

// Login — диалог входа: email → пароль.
type Login struct {
	step  int
	email string
}

func StartLogin() (*Login, fsmutil.Reply) {
	return &Login{}, fsmutil.Reply{Text: "🔑 Вход\nВведите email:", Markup: fsmutil.CancelMarkup()}
}

func (l *Login) Step(ctx context.Context, sess *session.Session, text string) (fsmutil.Reply, error) {
	if fsmutil.IsCancelText(text) {
		return fsmutil.Reply{Text: "🚫 Отменено.", Done: true, DeleteInput: l.step == loginStepPassword}, nil
	}
	switch l.step {
	case loginStepEmail:
		email := strings.TrimSpace(text)
		if !validEmail(email) {
			return fsmutil.Reply{Text: "Введите корректный email:", Markup: fsmutil.CancelMarkup()}, nil
		}
		l.email = email
		l.step = loginStepPassword
		return fsmutil.Reply{Text: "Введите пароль (сообщение будет удалено):", Markup: fsmutil.CancelMarkup()}, nil

	default:
		err := sess.Login(ctx, l.email, text)
		if errors.Is(err, session.ErrSuperseded) {
			return fsmutil.Reply{Text: "Сессия изменилась во время входа. Повторите /login.", Done: true, DeleteInput: true}, nil
		}
		if err != nil {
			// неверные логин/пароль — не истечение сессии, наблюдателю 401 не отдаём
			observability.CaptureSystemErr(err)
			l.step = loginStepEmail
			return fsmutil.Reply{
				Text:        "❌ " + apiclient.Message(err, "Ошибка входа") + "\nВведите email:",
				Markup:      fsmutil.CancelMarkup(),
				DeleteInput: true,
			}, nil
		}
		return fsmutil.Reply{
			Text:        "✅ Вход выполнен успешно!",
			Done:        true,
			Next:        "/dashboard",
			DeleteInput: true,
			Menu:        true,
		}, nil
	}
}

func validEmail(s string) bool {
	at := strings.Index(s, "@")
	return at > 0 && at < len(s)-1 && !strings.ContainsAny(s, " \t")
}
