package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/Spok95/lms-bot/internal/bot/shared/fsmutil"
	"github.com/Spok95/lms-bot/internal/models"
	"github.com/Spok95/lms-bot/internal/session"
)

const (
	courseStepTitle = iota
	courseStepDescription
	courseStepDifficulty
	courseStepVisibility
)

// skipText — ответ "пропустить" для необязательных полей.
const skipText = "-"

var difficultyLabels = map[string]string{
	"beginner":     "🟢 Начальный",
	"intermediate": "🟡 Средний",
	"advanced":     "🔴 Продвинутый",
}

// CourseDialog — создание курса: название → описание → сложность → видимость.
type CourseDialog struct {
	step int
	in   models.CourseCreate
}

func courseNewScreen(context.Context, View) (Page, error) {
	return Page{Text: "➕ Новый курс\nВведите название:", Markup: fsmutil.CancelMarkup(), Dialog: &CourseDialog{}}, nil
}

func difficultyMarkup() fsmutil.Reply {
	opts := make([][2]string, 0, len(models.DifficultyLevels))
	for _, lvl := range models.DifficultyLevels {
		opts = append(opts, [2]string{difficultyLabels[lvl], lvl})
	}
	return fsmutil.Reply{Text: "Выберите сложность:", Markup: fsmutil.ChoiceMarkup(fsmutil.InputPrefix, opts...)}
}

func visibilityMarkup() fsmutil.Reply {
	return fsmutil.Reply{
		Text: "Курс виден всем?",
		Markup: fsmutil.ChoiceMarkup(fsmutil.InputPrefix,
			[2]string{"🌍 Публичный", "public"},
			[2]string{"🔒 Только по записи", "private"},
		),
	}
}

func (d *CourseDialog) Step(ctx context.Context, sess *session.Session, text string) (fsmutil.Reply, error) {
	if fsmutil.IsCancelText(text) {
		return fsmutil.Reply{Text: "🚫 Создание курса отменено.", Done: true}, nil
	}
	text = strings.TrimSpace(text)

	switch d.step {
	case courseStepTitle:
		if text == "" {
			return fsmutil.Reply{Text: "Название не может быть пустым:", Markup: fsmutil.CancelMarkup()}, nil
		}
		d.in.Title = text
		d.step = courseStepDescription
		return fsmutil.Reply{Text: "Введите описание (или «-», чтобы пропустить):", Markup: fsmutil.CancelMarkup()}, nil

	case courseStepDescription:
		if text != skipText {
			d.in.Description = text
		}
		d.step = courseStepDifficulty
		return difficultyMarkup(), nil

	case courseStepDifficulty:
		if _, ok := difficultyLabels[text]; !ok {
			return difficultyMarkup(), nil
		}
		d.in.DifficultyLevel = text
		d.step = courseStepVisibility
		return visibilityMarkup(), nil

	default:
		switch text {
		case "public":
			d.in.IsPublic = true
		case "private":
			d.in.IsPublic = false
		default:
			return visibilityMarkup(), nil
		}
		c, err := sess.Services().Courses.Create(ctx, d.in)
		if err != nil {
			return fsmutil.Reply{}, err
		}
		return fsmutil.Reply{
			Text: fmt.Sprintf("✅ Курс «%s» создан (черновик).", c.Title),
			Done: true,
			Next: pathf("/courses/%d", c.ID),
		}, nil
	}
}
