package auth

import (
	"context"
	"strings"

	"github.com/Spok95/lms-bot/internal/apiclient"
	"github.com/Spok95/lms-bot/internal/bot/shared/fsmutil"
	"github.com/Spok95/lms-bot/internal/models"
	"github.com/Spok95/lms-bot/internal/observability"
	"github.com/Spok95/lms-bot/internal/session"
)

const (
	regStepName = iota
	regStepEmail
	regStepPassword
	regStepRole
)

const minPasswordLen = 6

// Register — диалог регистрации: имя → email → пароль → роль.
type Register struct {
	step int
	req  models.RegisterRequest
}

func StartRegister() (*Register, fsmutil.Reply) {
	return &Register{}, fsmutil.Reply{Text: "📝 Регистрация\nВведите ваше имя:", Markup: fsmutil.CancelMarkup()}
}

func roleMarkup() fsmutil.Reply {
	return fsmutil.Reply{
		Text: "Выберите роль:",
		Markup: fsmutil.ChoiceMarkup(fsmutil.InputPrefix,
			[2]string{"🎒 Студент", string(models.Generic)},
			[2]string{"👩‍🏫 Преподаватель", string(models.Teacher)},
		),
	}
}

func (r *Register) Step(ctx context.Context, sess *session.Session, text string) (fsmutil.Reply, error) {
	if fsmutil.IsCancelText(text) {
		return fsmutil.Reply{Text: "🚫 Отменено.", Done: true}, nil
	}
	text = strings.TrimSpace(text)

	switch r.step {
	case regStepName:
		if text == "" {
			return fsmutil.Reply{Text: "Имя не может быть пустым. Введите имя:", Markup: fsmutil.CancelMarkup()}, nil
		}
		r.req.Name = text
		r.step = regStepEmail
		return fsmutil.Reply{Text: "Введите email:", Markup: fsmutil.CancelMarkup()}, nil

	case regStepEmail:
		if !validEmail(text) {
			return fsmutil.Reply{Text: "Введите корректный email:", Markup: fsmutil.CancelMarkup()}, nil
		}
		r.req.Email = text
		r.step = regStepPassword
		return fsmutil.Reply{Text: "Придумайте пароль (сообщение будет удалено):", Markup: fsmutil.CancelMarkup()}, nil

	case regStepPassword:
		if len([]rune(text)) < minPasswordLen {
			return fsmutil.Reply{Text: "Пароль слишком короткий, минимум 6 символов:", Markup: fsmutil.CancelMarkup(), DeleteInput: true}, nil
		}
		r.req.Password = text
		r.step = regStepRole
		rep := roleMarkup()
		rep.DeleteInput = true
		return rep, nil

	default:
		switch models.Role(text) {
		case models.Generic, models.Student:
			r.req.Role = models.Generic
		case models.Teacher:
			r.req.Role = models.Teacher
		default:
			return roleMarkup(), nil
		}
		if err := sess.Register(ctx, r.req); err != nil {
			observability.CaptureSystemErr(err)
			r.step = regStepEmail
			return fsmutil.Reply{
				Text:   "❌ " + apiclient.Message(err, "Ошибка регистрации") + "\nВведите email:",
				Markup: fsmutil.CancelMarkup(),
			}, nil
		}
		return fsmutil.Reply{
			Text: "✅ Регистрация успешна! Войдите в систему.",
			Done: true,
			Next: "/login",
		}, nil
	}
}
