package handlers

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/lms-bot/internal/format"
	"github.com/Spok95/lms-bot/internal/lms"
	"github.com/Spok95/lms-bot/internal/models"
)

func coursesScreen(ctx context.Context, v View) (Page, error) {
	caps := v.Sess.Capabilities()
	filter := lms.CourseFilter{
		Category: v.Query.Get("category"),
		Status:   models.CourseStatus(v.Query.Get("status")),
	}
	courses, err := v.Sess.Services().Courses.List(ctx, filter)
	if err != nil {
		return Page{}, err
	}

	var b strings.Builder
	b.WriteString("📚 Курсы")
	if filter.Status != "" {
		fmt.Fprintf(&b, " (%s)", filter.Status)
	}
	b.WriteString("\n\n")
	if len(courses) == 0 {
		b.WriteString("Курсов пока нет.")
	}

	var kb keyboard
	for _, c := range courses {
		fmt.Fprintf(&b, "• %s — %s, %s\n", c.Title, c.DifficultyLevel, courseStatusLabel(c.Status))
		kb.row(navButton(truncate(c.Title, 40), pathf("/courses/%d", c.ID)))
	}
	if caps.CanEditCourses {
		kb.row(
			navButton("Все", "/courses"),
			navButton("Черновики", "/courses?status=draft"),
			navButton("Опубликованные", "/courses?status=published"),
		)
		kb.row(navButton("➕ Новый курс", "/courses/new"))
	}
	return Page{Text: b.String(), Markup: kb.markup()}, nil
}

func courseScreen(ctx context.Context, v View) (Page, error) {
	courseID, err := v.ID("courseId")
	if err != nil {
		return Page{}, err
	}
	caps := v.Sess.Capabilities()
	c, err := v.Sess.Services().Courses.Get(ctx, courseID)
	if err != nil {
		return Page{}, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📘 %s\n\n", c.Title)
	if c.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", c.Description)
	}
	fmt.Fprintf(&b, "Категория: %s\nСложность: %s\nСтатус: %s\n", format.Text(c.Category), c.DifficultyLevel, courseStatusLabel(c.Status))
	fmt.Fprintf(&b, "Студентов: %d", c.EnrolledCount)
	if c.RatingCount > 0 {
		fmt.Fprintf(&b, " · ⭐ %.1f (%d)", c.RatingAvg, c.RatingCount)
	}
	b.WriteString("\n\nМодули:\n")
	if len(c.Modules) == 0 {
		b.WriteString("— пока нет\n")
	}

	var kb keyboard
	for i, m := range c.Modules {
		fmt.Fprintf(&b, "%d. %s\n", i+1, m.Title)
		row := []tgbotapi.InlineKeyboardButton{navButton(truncate(m.Title, 35), pathf("/courses/%d/modules/%d", c.ID, m.ID))}
		if caps.CanEditCourses {
			row = append(row, actButton("🗑", "del_module", c.ID, m.ID))
		}
		kb.row(row...)
	}
	if caps.CanEditCourses {
		if c.Status == models.CourseDraft {
			kb.row(actButton("🚀 Опубликовать", "publish", c.ID))
		}
		kb.row(actButton("➕ Модуль", "add_module", c.ID))
	} else {
		kb.row(actButton("✍️ Записаться", "enroll", c.ID), actButton("📈 Прогресс", "progress", c.ID))
	}
	kb.row(navButton("⬅️ К курсам", "/courses"))
	return Page{Text: b.String(), Markup: kb.markup()}, nil
}

func courseStatusLabel(s models.CourseStatus) string {
	switch s {
	case models.CourseDraft:
		return "черновик"
	case models.CoursePublished:
		return "опубликован"
	case models.CourseArchived:
		return "в архиве"
	default:
		return string(s)
	}
}
