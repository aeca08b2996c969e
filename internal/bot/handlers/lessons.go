package handlers

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/lms-bot/internal/format"
)

const lessonPreview = 3000

// moduleScreen обслуживает и /modules/{id}, и /courses/{c}/modules/{id}.
func moduleScreen(ctx context.Context, v View) (Page, error) {
	moduleID, err := v.ID("moduleId")
	if err != nil {
		return Page{}, err
	}
	caps := v.Sess.Capabilities()
	m, err := v.Sess.Services().Modules.Get(ctx, moduleID)
	if err != nil {
		return Page{}, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📂 %s\n", m.Title)
	if m.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", m.Description)
	}
	b.WriteString("\nУроки:\n")
	if len(m.Lessons) == 0 {
		b.WriteString("— пока нет\n")
	}

	var kb keyboard
	for i, l := range m.Lessons {
		fmt.Fprintf(&b, "%d. %s\n", i+1, l.Title)
		row := []tgbotapi.InlineKeyboardButton{navButton(truncate(l.Title, 35), pathf("/lessons/%d", l.ID))}
		if caps.CanEditCourses {
			row = append(row, actButton("🗑", "del_lesson", l.ID, m.ID))
		}
		kb.row(row...)
	}
	if caps.CanEditCourses {
		kb.row(actButton("➕ Урок", "add_lesson", m.ID))
	}
	if m.CourseID > 0 {
		kb.row(navButton("⬅️ К курсу", pathf("/courses/%d", m.CourseID)))
	}
	return Page{Text: b.String(), Markup: kb.markup()}, nil
}

func lessonScreen(ctx context.Context, v View) (Page, error) {
	lessonID, err := v.ID("lessonId")
	if err != nil {
		return Page{}, err
	}
	caps := v.Sess.Capabilities()
	svc := v.Sess.Services()
	l, err := svc.Lessons.Get(ctx, lessonID)
	if err != nil {
		return Page{}, err
	}
	assignments, err := svc.Lessons.Assignments(ctx, lessonID)
	if err != nil {
		return Page{}, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📖 %s\n\n%s\n", l.Title, format.Text(truncate(l.Content, lessonPreview)))
	if len(assignments) > 0 {
		b.WriteString("\nЗадания:\n")
	}

	var kb keyboard
	for _, a := range assignments {
		fmt.Fprintf(&b, "• %s (%s, %d б.)\n", a.Title, a.AssignmentType, a.PointsPossible)
		kb.row(navButton("📝 "+truncate(a.Title, 35), pathf("/assignments/%d", a.ID)))
	}
	if caps.CanEditCourses {
		kb.row(actButton("➕ Задание", "add_assignment", l.ID))
	} else {
		kb.row(actButton("✅ Урок пройден", "lesson_done", l.ID))
	}
	kb.row(navButton("⬅️ К модулю", pathf("/modules/%d", l.ModuleID)))
	return Page{Text: b.String(), Markup: kb.markup()}, nil
}
