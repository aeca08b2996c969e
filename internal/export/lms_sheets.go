package export

import (
	"time"

	"github.com/Spok95/lms-bot/internal/format"
	"github.com/Spok95/lms-bot/internal/models"
)

// GradesSheet — детальные оценки студента.
func GradesSheet(grades []models.DetailedGrade, loc *time.Location) SheetSpec {
	s := SheetSpec{
		Title:  "Оценки",
		Header: []string{"Курс", "Задание", "Баллы", "Из", "Процент", "Отзыв", "Дата"},
	}
	for _, g := range grades {
		s.Rows = append(s.Rows, []any{
			format.Text(g.CourseTitle),
			format.Text(g.AssignmentTitle),
			g.PointsEarned,
			g.PointsPossible,
			g.Percentage,
			g.Feedback,
			format.Date(g.CreatedAt.Time, loc),
		})
	}
	return s
}

// SubmissionsSheet — сдачи в курсах преподавателя.
func SubmissionsSheet(subs []models.TeachingSubmission, loc *time.Location) SheetSpec {
	s := SheetSpec{
		Title:  "Сдачи",
		Header: []string{"Студент", "Email", "Курс", "Урок", "Задание", "Статус", "Сдано", "Баллы", "Отзыв"},
	}
	for _, x := range subs {
		var points any = ""
		if x.PointsEarned != nil {
			points = *x.PointsEarned
		}
		s.Rows = append(s.Rows, []any{
			format.Text(x.StudentName),
			x.StudentEmail,
			format.Text(x.CourseTitle),
			format.Text(x.LessonTitle),
			format.Text(x.AssignmentTitle),
			x.SubmissionStatus.Label(),
			format.Date(x.SubmittedAt.Time, loc),
			points,
			x.Feedback,
		})
	}
	return s
}
