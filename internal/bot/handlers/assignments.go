package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/Spok95/lms-bot/internal/format"
	"github.com/Spok95/lms-bot/internal/models"
)

func assignmentsScreen(ctx context.Context, v View) (Page, error) {
	svc := v.Sess.Services()
	var b strings.Builder
	var kb keyboard

	if v.Sess.Capabilities().CanGrade {
		items, err := svc.Assignments.Teaching(ctx)
		if err != nil {
			return Page{}, err
		}
		b.WriteString("📝 Задания в ваших курсах\n\n")
		if len(items) == 0 {
			b.WriteString("Заданий пока нет.")
		}
		for _, a := range items {
			fmt.Fprintf(&b, "• %s — %s / %s, сдач: %d\n", a.Title, a.CourseTitle, a.LessonTitle, a.SubmittedCount)
			kb.row(navButton(truncate(a.Title, 40), pathf("/assignments/%d", a.ID)))
		}
		return Page{Text: b.String(), Markup: kb.markup()}, nil
	}

	status := v.Query.Get("status")
	items, err := svc.Assignments.Mine(ctx, status)
	if err != nil {
		return Page{}, err
	}
	b.WriteString("📝 Мои задания")
	if status != "" {
		fmt.Fprintf(&b, " (%s)", models.SubmissionStatus(status).Label())
	}
	b.WriteString("\n\n")
	if len(items) == 0 {
		b.WriteString("Заданий нет.")
	}
	for _, a := range items {
		fmt.Fprintf(&b, "• %s — %s, %s, до %s\n", a.Title, a.CourseTitle, a.Status.Label(),
			format.DateOr(a.DueDate.Time, v.Loc, "без срока"))
		kb.row(navButton(truncate(a.Title, 40), pathf("/assignments/%d", a.ID)))
	}
	kb.row(
		navButton("Все", "/assignments"),
		navButton("Не сданы", "/assignments?status=pending"),
		navButton("Оценены", "/assignments?status=graded"),
	)
	return Page{Text: b.String(), Markup: kb.markup()}, nil
}

func assignmentScreen(ctx context.Context, v View) (Page, error) {
	assignmentID, err := v.ID("assignmentId")
	if err != nil {
		return Page{}, err
	}
	svc := v.Sess.Services()
	caps := v.Sess.Capabilities()
	a, err := svc.Assignments.Get(ctx, assignmentID)
	if err != nil {
		return Page{}, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📝 %s\n\nТип: %s\nБаллов: %d\nСрок: %s\n", a.Title, a.AssignmentType, a.PointsPossible,
		format.DateOr(a.DueDate.Time, v.Loc, "без срока"))
	if a.TimeLimitMinutes != nil {
		fmt.Fprintf(&b, "Лимит времени: %d мин\n", *a.TimeLimitMinutes)
	}
	if a.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", a.Description)
	}

	var kb keyboard
	if caps.CanGrade {
		subs, err := svc.Assignments.Submissions(ctx, assignmentID)
		if err != nil {
			return Page{}, err
		}
		fmt.Fprintf(&b, "\nСдачи (%d):\n", len(subs))
		for _, s := range subs {
			fmt.Fprintf(&b, "• %s — %s", format.Text(s.UserName), s.Status.Label())
			if s.PointsEarned != nil {
				fmt.Fprintf(&b, ", %s б.", format.Points(*s.PointsEarned))
			}
			b.WriteByte('\n')
			if s.Status != models.Pending {
				kb.row(actButton("🎓 Оценить: "+truncate(s.UserName, 25), "grade", s.ID, a.ID))
			}
		}
	} else {
		status := models.Pending
		if a.Submission != nil {
			status = a.Submission.Status
		}
		fmt.Fprintf(&b, "\nСтатус: %s", status.Label())
		if a.Submission != nil && !a.Submission.SubmittedAt.IsZero() {
			fmt.Fprintf(&b, " (%s)", format.Relative(a.Submission.SubmittedAt.Time, v.Now, v.Loc))
		}
		b.WriteByte('\n')
		switch status {
		case models.Pending:
			kb.row(actButton("▶️ Начать", "start", a.ID), actButton("📤 Сдать", "submit", a.ID))
		case models.Submitted, models.Late:
			kb.row(actButton("↩️ Отозвать сдачу", "unsubmit", a.ID))
		}
	}
	if a.LessonID > 0 {
		kb.row(navButton("⬅️ К уроку", pathf("/lessons/%d", a.LessonID)))
	}
	return Page{Text: b.String(), Markup: kb.markup()}, nil
}
