package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/Spok95/lms-bot/internal/bot/shared/fsmutil"
	"github.com/Spok95/lms-bot/internal/models"
	"github.com/Spok95/lms-bot/internal/session"
)

// createFunc создаёт дочернюю сущность и возвращает путь к ней.
type createFunc func(ctx context.Context, sess *session.Session, parentID int64, title string) (string, error)

// TitleDialog — добавление модуля, урока или задания: спрашиваем только название.
type TitleDialog struct {
	what     string
	parentID int64
	create   createFunc
}

func (d *TitleDialog) prompt() fsmutil.Reply {
	return fsmutil.Reply{Text: fmt.Sprintf("Введите название: %s", d.what), Markup: fsmutil.CancelMarkup()}
}

func (d *TitleDialog) Step(ctx context.Context, sess *session.Session, text string) (fsmutil.Reply, error) {
	if fsmutil.IsCancelText(text) {
		return fsmutil.Reply{Text: "🚫 Отменено.", Done: true}, nil
	}
	title := strings.TrimSpace(text)
	if title == "" {
		return d.prompt(), nil
	}
	next, err := d.create(ctx, sess, d.parentID, title)
	if err != nil {
		return fsmutil.Reply{}, err
	}
	return fsmutil.Reply{Text: fmt.Sprintf("✅ Добавлено: %s «%s»", d.what, title), Done: true, Next: next}, nil
}

func newModuleDialog(courseID int64) *TitleDialog {
	return &TitleDialog{what: "модуль", parentID: courseID, create: func(ctx context.Context, sess *session.Session, courseID int64, title string) (string, error) {
		m, err := sess.Services().Modules.Create(ctx, courseID, models.ModuleCreate{Title: title})
		if err != nil {
			return "", err
		}
		return pathf("/courses/%d/modules/%d", courseID, m.ID), nil
	}}
}

func newLessonDialog(moduleID int64) *TitleDialog {
	return &TitleDialog{what: "урок", parentID: moduleID, create: func(ctx context.Context, sess *session.Session, moduleID int64, title string) (string, error) {
		l, err := sess.Services().Lessons.Create(ctx, moduleID, models.LessonCreate{Title: title})
		if err != nil {
			return "", err
		}
		return pathf("/lessons/%d", l.ID), nil
	}}
}

// newAssignmentDialog: тип и баллы берутся по умолчанию (quiz, 100).
func newAssignmentDialog(lessonID int64) *TitleDialog {
	return &TitleDialog{what: "задание", parentID: lessonID, create: func(ctx context.Context, sess *session.Session, lessonID int64, title string) (string, error) {
		a, err := sess.Services().Assignments.Create(ctx, lessonID, models.AssignmentCreate{Title: title})
		if err != nil {
			return "", err
		}
		return pathf("/assignments/%d", a.ID), nil
	}}
}
