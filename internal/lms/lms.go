// Package lms — тонкие типизированные обёртки над REST-бэкендом LMS.
// Каждый метод делает ровно один запрос; состояния здесь нет.
package lms

import (
	"net/url"
	"strconv"

	"github.com/Spok95/lms-bot/internal/apiclient"
)

type Services struct {
	Auth        *AuthService
	Courses     *CourseService
	Modules     *ModuleService
	Lessons     *LessonService
	Assignments *AssignmentService
	Submissions *SubmissionService
	Grades      *GradeService
	Admin       *AdminService
}

func New(api apiclient.Doer) *Services {
	return &Services{
		Auth:        &AuthService{api: api},
		Courses:     &CourseService{api: api},
		Modules:     &ModuleService{api: api},
		Lessons:     &LessonService{api: api},
		Assignments: &AssignmentService{api: api},
		Submissions: &SubmissionService{api: api},
		Grades:      &GradeService{api: api},
		Admin:       &AdminService{api: api},
	}
}

func id(v int64) string { return strconv.FormatInt(v, 10) }

// statusParams — фильтр ?status=, пустой статус не отправляется.
func statusParams(status string) url.Values {
	if status == "" {
		return nil
	}
	return url.Values{"status": {status}}
}
