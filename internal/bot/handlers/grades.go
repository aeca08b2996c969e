package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/Spok95/lms-bot/internal/format"
	"github.com/Spok95/lms-bot/internal/models"
)

func submissionsScreen(ctx context.Context, v View) (Page, error) {
	svc := v.Sess.Services()
	var b strings.Builder
	var kb keyboard

	if v.Sess.Capabilities().CanGrade {
		status := v.Query.Get("status")
		subs, err := svc.Submissions.Teaching(ctx, status)
		if err != nil {
			return Page{}, err
		}
		b.WriteString("📤 Сдачи студентов")
		if status != "" {
			fmt.Fprintf(&b, " (%s)", models.SubmissionStatus(status).Label())
		}
		b.WriteString("\n\n")
		if len(subs) == 0 {
			b.WriteString("Сдач нет.")
		}
		for _, s := range subs {
			fmt.Fprintf(&b, "• %s — %s (%s), %s\n", format.Text(s.StudentName), s.AssignmentTitle, s.CourseTitle, s.SubmissionStatus.Label())
			if s.SubmissionStatus != models.Pending {
				kb.row(actButton("🎓 "+truncate(s.StudentName+": "+s.AssignmentTitle, 40), "grade", s.SubmissionID, s.AssignmentID))
			}
		}
		kb.row(
			navButton("Все", "/submissions"),
			navButton("На проверке", "/submissions?status=submitted"),
			navButton("Оценены", "/submissions?status=graded"),
		)
		kb.row(actButton("📥 Выгрузить в Excel", "export_subs"))
		return Page{Text: b.String(), Markup: kb.markup()}, nil
	}

	rows, err := svc.Submissions.Mine(ctx)
	if err != nil {
		return Page{}, err
	}
	b.WriteString("📤 Мои сдачи\n\n")
	if len(rows) == 0 {
		b.WriteString("Вы ещё ничего не сдавали.")
	}
	for _, s := range rows {
		fmt.Fprintf(&b, "• %s (%s) — %s", s.AssignmentTitle, s.CourseTitle, s.SubmissionStatus.Label())
		if s.PointsEarned != nil {
			fmt.Fprintf(&b, ", %s/%d", format.Points(*s.PointsEarned), s.PointsPossible)
		}
		if !s.SubmittedAt.IsZero() {
			fmt.Fprintf(&b, ", %s", format.Relative(s.SubmittedAt.Time, v.Now, v.Loc))
		}
		b.WriteByte('\n')
		kb.row(navButton(truncate(s.AssignmentTitle, 40), pathf("/assignments/%d", s.AssignmentID)))
	}
	return Page{Text: b.String(), Markup: kb.markup()}, nil
}

func gradesScreen(ctx context.Context, v View) (Page, error) {
	var kb keyboard
	if v.Sess.Capabilities().CanGrade {
		kb.row(navButton("📤 К сдачам", "/submissions?status=submitted"))
		return Page{Text: "🎓 Оценки выставляются в разделе «Сдачи».", Markup: kb.markup()}, nil
	}

	grades, err := v.Sess.Services().Grades.Detailed(ctx)
	if err != nil {
		return Page{}, err
	}
	var b strings.Builder
	b.WriteString("🎓 Мои оценки\n\n")
	if len(grades) == 0 {
		b.WriteString("Оценок пока нет.")
		return Page{Text: b.String()}, nil
	}
	var sum float64
	for _, g := range grades {
		sum += g.Percentage
		fmt.Fprintf(&b, "• %s (%s): %s/%s — %s%%\n", g.AssignmentTitle, g.CourseTitle,
			format.Points(g.PointsEarned), format.Points(g.PointsPossible), format.Points(g.Percentage))
		if g.Feedback != "" {
			fmt.Fprintf(&b, "  💬 %s\n", truncate(g.Feedback, 200))
		}
	}
	fmt.Fprintf(&b, "\nСредний результат: %s%%", format.Points(sum/float64(len(grades))))
	kb.row(actButton("📥 Выгрузить в Excel", "export_grades"))
	return Page{Text: b.String(), Markup: kb.markup()}, nil
}
