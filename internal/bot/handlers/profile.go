package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/Spok95/lms-bot/internal/format"
)

func profileScreen(ctx context.Context, v View) (Page, error) {
	svc := v.Sess.Services()
	user, err := svc.Auth.Profile(ctx)
	if err != nil {
		return Page{}, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "👤 %s\nEmail: %s\nРоль: %s\n", format.Text(user.Name), user.Email, user.Role.Label())
	if !user.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "С нами с %s\n", format.Date(user.CreatedAt.Time, v.Loc))
	}

	if !v.Sess.Capabilities().CanEditCourses {
		st, err := svc.Auth.ProfileStats(ctx)
		if err != nil {
			return Page{}, err
		}
		fmt.Fprintf(&b, "\n📚 Активных курсов: %d\n📤 Сдано работ: %d из %d\n📈 Прогресс: %s%%\n🎓 Средняя оценка: %s%%\n",
			st.ActiveCourses, st.SubmittedWorks, st.TotalAssignments,
			format.Points(st.ProgressPercent), format.Points(st.AverageGradePercent))
	}
	return Page{Text: b.String()}, nil
}

func adminScreen(ctx context.Context, v View) (Page, error) {
	st, err := v.Sess.Services().Admin.Stats(ctx)
	if err != nil {
		return Page{}, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 Статистика\n\nПользователей: %d\nКурсов: %d\nЗаписей на курсы: %d\nСдач: %d\n",
		st.TotalUsers, st.TotalCourses, st.TotalEnrollments, st.TotalSubmissions)
	if len(st.ProgressRanges) > 0 {
		b.WriteString("\nПрогресс студентов:\n")
		for _, r := range st.ProgressRanges {
			fmt.Fprintf(&b, "• %s: %s%%\n", r.Label, format.Points(r.Percentage))
		}
	}
	if len(st.Courses) > 0 {
		b.WriteString("\nПопулярные курсы:\n")
		for _, c := range st.Courses {
			fmt.Fprintf(&b, "• %s — %d\n", c.Title, c.Students)
		}
	}
	if len(st.RecentActivities) > 0 {
		b.WriteString("\nПоследние действия:\n")
		for _, a := range st.RecentActivities {
			fmt.Fprintf(&b, "• %s: %s (%s)\n", a.User, a.Action, a.Time)
		}
	}
	return Page{Text: b.String()}, nil
}
