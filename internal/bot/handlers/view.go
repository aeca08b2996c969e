// Package handlers — экраны и действия бота поверх фасадов LMS.
// Здесь ничего не отправляется в Telegram: экран возвращает Page,
// действие — Result, а доставкой занимается диспетчер.
package handlers

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/lms-bot/internal/bot/shared/fsmutil"
	"github.com/Spok95/lms-bot/internal/guard"
	"github.com/Spok95/lms-bot/internal/session"
)

const (
	NavPrefix = "nav:"
	ActPrefix = "act:"
)

// View — всё, что экрану нужно знать о запросе.
type View struct {
	Sess   *session.Session
	Path   string
	Params map[string]string
	Query  url.Values
	Loc    *time.Location
	Now    time.Time
}

// ID — числовой параметр маршрута.
func (v View) ID(name string) (int64, error) {
	raw, ok := v.Params[name]
	if !ok {
		return 0, fmt.Errorf("param %s: missing", name)
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("param %s: bad id %q", name, raw)
	}
	return n, nil
}

// Page — отрисованный экран. Если Dialog не nil, экран запускает диалог.
type Page struct {
	Text   string
	Markup *tgbotapi.InlineKeyboardMarkup
	Dialog fsmutil.Dialog
}

type ScreenFunc func(ctx context.Context, v View) (Page, error)

// Screens — экран по имени из таблицы маршрутов.
var Screens = map[guard.Screen]ScreenFunc{
	guard.ScreenLogin:       loginScreen,
	guard.ScreenRegister:    registerScreen,
	guard.ScreenDashboard:   dashboardScreen,
	guard.ScreenCourses:     coursesScreen,
	guard.ScreenCourseNew:   courseNewScreen,
	guard.ScreenCourse:      courseScreen,
	guard.ScreenModule:      moduleScreen,
	guard.ScreenLesson:      lessonScreen,
	guard.ScreenAssignments: assignmentsScreen,
	guard.ScreenAssignment:  assignmentScreen,
	guard.ScreenSubmissions: submissionsScreen,
	guard.ScreenGrades:      gradesScreen,
	guard.ScreenProfile:     profileScreen,
	guard.ScreenAdmin:       adminScreen,
}

// SplitTarget делит "/courses?status=draft" на путь и query.
func SplitTarget(target string) (string, url.Values) {
	path, raw, _ := strings.Cut(target, "?")
	q, err := url.ParseQuery(raw)
	if err != nil {
		q = url.Values{}
	}
	return guard.Clean(path), q
}

// keyboard собирает inline-клавиатуру, пропуская пустые строки.
type keyboard struct {
	rows [][]tgbotapi.InlineKeyboardButton
}

func (k *keyboard) row(btns ...tgbotapi.InlineKeyboardButton) {
	if len(btns) > 0 {
		k.rows = append(k.rows, btns)
	}
}

func (k *keyboard) markup() *tgbotapi.InlineKeyboardMarkup {
	if len(k.rows) == 0 {
		return nil
	}
	mk := tgbotapi.NewInlineKeyboardMarkup(k.rows...)
	return &mk
}

func navButton(text, path string) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(text, NavPrefix+path)
}

func actButton(text, verb string, ids ...int64) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(text, ActData(verb, ids...))
}

// ActData — callback действия: "act:<verb>:<id>[:<id2>]".
func ActData(verb string, ids ...int64) string {
	var b strings.Builder
	b.WriteString(ActPrefix)
	b.WriteString(verb)
	for _, id := range ids {
		b.WriteByte(':')
		b.WriteString(strconv.FormatInt(id, 10))
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-1]) + "…"
}

func pathf(format string, a ...any) string { return fmt.Sprintf(format, a...) }
