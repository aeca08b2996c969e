package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/Spok95/lms-bot/internal/format"
	"github.com/Spok95/lms-bot/internal/lms"
)

const dashboardLimit = 5

func dashboardScreen(ctx context.Context, v View) (Page, error) {
	svc := v.Sess.Services()
	user, _ := v.Sess.User()
	caps := v.Sess.Capabilities()

	courses, err := svc.Courses.List(ctx, lms.CourseFilter{})
	if err != nil {
		return Page{}, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "👋 %s (%s)\n\n", format.Text(user.Name), user.Role.Label())
	fmt.Fprintf(&b, "📚 Курсов: %d\n", len(courses))

	var kb keyboard
	if caps.CanEditCourses {
		teaching, err := svc.Assignments.Teaching(ctx)
		if err != nil {
			return Page{}, err
		}
		waiting := 0
		for _, a := range teaching {
			waiting += a.SubmittedCount
		}
		fmt.Fprintf(&b, "📝 Заданий в ваших курсах: %d\n📤 Сдач: %d\n", len(teaching), waiting)
		kb.row(navButton("📤 Проверить сдачи", "/submissions?status=submitted"))
		kb.row(navButton("➕ Новый курс", "/courses/new"))
	} else {
		pending, err := svc.Assignments.Mine(ctx, "pending")
		if err != nil {
			return Page{}, err
		}
		grades, err := svc.Grades.Detailed(ctx)
		if err != nil {
			return Page{}, err
		}
		fmt.Fprintf(&b, "📝 Несданных заданий: %d\n", len(pending))
		for i, a := range pending {
			if i == dashboardLimit {
				break
			}
			fmt.Fprintf(&b, "  • %s — до %s\n", a.Title, format.DateOr(a.DueDate.Time, v.Loc, "без срока"))
			kb.row(navButton("📝 "+truncate(a.Title, 30), pathf("/assignments/%d", a.ID)))
		}
		if len(grades) > 0 {
			b.WriteString("\n🎓 Последние оценки:\n")
			for i, g := range grades {
				if i == dashboardLimit {
					break
				}
				fmt.Fprintf(&b, "  • %s: %s/%s (%s)\n", g.AssignmentTitle,
					format.Points(g.PointsEarned), format.Points(g.PointsPossible),
					format.Relative(g.CreatedAt.Time, v.Now, v.Loc))
			}
		}
	}
	kb.row(navButton("📚 Курсы", "/courses"), navButton("👤 Профиль", "/profile"))
	return Page{Text: b.String(), Markup: kb.markup()}, nil
}
