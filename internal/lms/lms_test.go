package lms

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/Spok95/lms-bot/internal/apiclient"
	"github.com/Spok95/lms-bot/internal/models"
)

type call struct {
	method string
	path   string
	body   string
	params url.Values
}

// recorder — фейковый Doer: запоминает вызовы и отдаёт заготовленный JSON.
type recorder struct {
	calls []call
	reply string
	err   error
}

func (r *recorder) Do(_ context.Context, method, path string, body any, params url.Values, out any) error {
	c := call{method: method, path: path, params: params}
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		c.body = string(b)
	}
	r.calls = append(r.calls, c)
	if r.err != nil {
		return r.err
	}
	if out != nil && r.reply != "" {
		return json.Unmarshal([]byte(r.reply), out)
	}
	return nil
}

func (r *recorder) last(t *testing.T) call {
	t.Helper()
	if len(r.calls) == 0 {
		t.Fatal("ни одного вызова")
	}
	return r.calls[len(r.calls)-1]
}

func bodyMap(t *testing.T, c call) map[string]any {
	t.Helper()
	m := map[string]any{}
	if err := json.Unmarshal([]byte(c.body), &m); err != nil {
		t.Fatalf("body %q: %v", c.body, err)
	}
	return m
}

func TestEndpoints(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name   string
		invoke func(s *Services) error
		method string
		path   string
	}{
		{"login", func(s *Services) error { _, err := s.Auth.Login(ctx, "a@b", "p"); return err }, http.MethodPost, "/login"},
		{"register", func(s *Services) error {
			_, err := s.Auth.Register(ctx, models.RegisterRequest{})
			return err
		}, http.MethodPost, "/register"},
		{"profile", func(s *Services) error { _, err := s.Auth.Profile(ctx); return err }, http.MethodGet, "/profile"},
		{"profile_stats", func(s *Services) error { _, err := s.Auth.ProfileStats(ctx); return err }, http.MethodGet, "/profile/stats"},
		{"course_get", func(s *Services) error { _, err := s.Courses.Get(ctx, 3); return err }, http.MethodGet, "/courses/3"},
		{"course_update", func(s *Services) error {
			_, err := s.Courses.Update(ctx, 3, models.CourseUpdate{})
			return err
		}, http.MethodPatch, "/courses/3"},
		{"course_enroll", func(s *Services) error { _, err := s.Courses.Enroll(ctx, 3); return err }, http.MethodPost, "/courses/3/enroll"},
		{"course_progress", func(s *Services) error { _, err := s.Courses.Progress(ctx, 3); return err }, http.MethodGet, "/progress/3"},
		{"course_publish", func(s *Services) error { _, err := s.Courses.Publish(ctx, 3); return err }, http.MethodPut, "/courses/3/publish"},
		{"module_get", func(s *Services) error { _, err := s.Modules.Get(ctx, 5); return err }, http.MethodGet, "/modules/5"},
		{"module_update", func(s *Services) error {
			_, err := s.Modules.Update(ctx, 5, models.ModuleUpdate{})
			return err
		}, http.MethodPatch, "/modules/5"},
		{"module_delete", func(s *Services) error { return s.Modules.Delete(ctx, 3, 5) }, http.MethodDelete, "/courses/3/modules/5"},
		{"lesson_get", func(s *Services) error { _, err := s.Lessons.Get(ctx, 7); return err }, http.MethodGet, "/lessons/7"},
		{"lesson_complete", func(s *Services) error { _, err := s.Lessons.Complete(ctx, 7); return err }, http.MethodPost, "/lessons/7/complete"},
		{"lesson_delete", func(s *Services) error { return s.Lessons.Delete(ctx, 7) }, http.MethodDelete, "/lessons/7"},
		{"lesson_assignments", func(s *Services) error { _, err := s.Lessons.Assignments(ctx, 7); return err }, http.MethodGet, "/lessons/7/assignments"},
		{"assignment_get", func(s *Services) error { _, err := s.Assignments.Get(ctx, 9); return err }, http.MethodGet, "/assignments/9"},
		{"assignment_submit_simple", func(s *Services) error { _, err := s.Assignments.SubmitSimple(ctx, 9); return err }, http.MethodPost, "/assignments/9/submit-simple"},
		{"assignment_start", func(s *Services) error { _, err := s.Assignments.Start(ctx, 9); return err }, http.MethodPost, "/assignments/9/start"},
		{"assignment_complete", func(s *Services) error { _, err := s.Assignments.Complete(ctx, 9); return err }, http.MethodPost, "/assignments/9/complete"},
		{"assignment_unsubmit", func(s *Services) error { _, err := s.Assignments.Unsubmit(ctx, 9); return err }, http.MethodDelete, "/assignments/9/my-submission"},
		{"assignment_quiz", func(s *Services) error {
			_, err := s.Assignments.SetQuizQuestions(ctx, 9, models.QuizData{})
			return err
		}, http.MethodPost, "/assignments/9/quiz-questions"},
		{"assignment_submissions", func(s *Services) error { _, err := s.Assignments.Submissions(ctx, 9); return err }, http.MethodGet, "/assignments/9/submissions"},
		{"assignments_teaching", func(s *Services) error { _, err := s.Assignments.Teaching(ctx); return err }, http.MethodGet, "/teaching/assignments"},
		{"submissions_mine", func(s *Services) error { _, err := s.Submissions.Mine(ctx); return err }, http.MethodGet, "/my/submissions"},
		{"submissions_list", func(s *Services) error { _, err := s.Submissions.List(ctx); return err }, http.MethodGet, "/submissions"},
		{"grades_detailed", func(s *Services) error { _, err := s.Grades.Detailed(ctx); return err }, http.MethodGet, "/grades/detailed"},
		{"grades_create", func(s *Services) error {
			_, err := s.Grades.Create(ctx, models.GradeCreate{})
			return err
		}, http.MethodPost, "/grades"},
		{"admin_stats", func(s *Services) error { _, err := s.Admin.Stats(ctx); return err }, http.MethodGet, "/admin/stats"},
		{"health", func(s *Services) error { return s.Admin.Health(ctx) }, http.MethodGet, "/health"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := &recorder{}
			if err := tc.invoke(New(rec)); err != nil {
				t.Fatalf("invoke: %v", err)
			}
			c := rec.last(t)
			if c.method != tc.method || c.path != tc.path {
				t.Fatalf("got %s %s, want %s %s", c.method, c.path, tc.method, tc.path)
			}
		})
	}
}

func TestCreateTakesParentIDFromPath(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	s := New(rec)

	if _, err := s.Modules.Create(ctx, 3, models.ModuleCreate{CourseID: 99, Title: "Введение"}); err != nil {
		t.Fatal(err)
	}
	if c := rec.last(t); c.path != "/courses/3/modules" || bodyMap(t, c)["course_id"] != float64(3) {
		t.Fatalf("module create: %+v", c)
	}

	if _, err := s.Lessons.Create(ctx, 5, models.LessonCreate{Title: "Урок 1"}); err != nil {
		t.Fatal(err)
	}
	if c := rec.last(t); c.path != "/modules/5/lessons" || bodyMap(t, c)["module_id"] != float64(5) {
		t.Fatalf("lesson create: %+v", c)
	}

	if _, err := s.Assignments.Create(ctx, 7, models.AssignmentCreate{Title: "Тест"}); err != nil {
		t.Fatal(err)
	}
	c := rec.last(t)
	m := bodyMap(t, c)
	if c.path != "/lessons/7/assignments" || m["lesson_id"] != float64(7) {
		t.Fatalf("assignment create: %+v", c)
	}
	if m["assignment_type"] != "quiz" || m["points_possible"] != float64(100) {
		t.Fatalf("assignment defaults: %v", m)
	}

	if _, err := s.Assignments.Submit(ctx, 9, models.SubmissionCreate{EssayText: "текст"}); err != nil {
		t.Fatal(err)
	}
	if c := rec.last(t); c.path != "/assignments/9/submit" || bodyMap(t, c)["assignment_id"] != float64(9) {
		t.Fatalf("submit: %+v", c)
	}
}

func TestCourseCreate_DefaultDifficulty(t *testing.T) {
	rec := &recorder{reply: `{"id":11,"title":"Go","status":"draft"}`}
	got, err := New(rec).Courses.Create(context.Background(), models.CourseCreate{Title: "Go"})
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != 11 || got.Status != models.CourseDraft {
		t.Fatalf("decoded: %+v", got)
	}
	if d := bodyMap(t, rec.last(t))["difficulty_level"]; d != "beginner" {
		t.Fatalf("difficulty_level = %v", d)
	}
}

func TestFilters(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	s := New(rec)

	_, _ = s.Courses.List(ctx, CourseFilter{Limit: 20, Status: models.CoursePublished})
	if q := rec.last(t).params.Encode(); q != "limit=20&status=published" {
		t.Fatalf("courses query = %q", q)
	}
	_, _ = s.Courses.List(ctx, CourseFilter{})
	if q := rec.last(t).params.Encode(); q != "" {
		t.Fatalf("empty filter query = %q", q)
	}
	_, _ = s.Assignments.Mine(ctx, "pending")
	if c := rec.last(t); c.path != "/users/me/assignments" || c.params.Get("status") != "pending" {
		t.Fatalf("mine: %+v", c)
	}
	_, _ = s.Assignments.Mine(ctx, "")
	if rec.last(t).params != nil {
		t.Fatal("пустой статус не должен уходить в запрос")
	}
	_, _ = s.Submissions.Teaching(ctx, "submitted")
	if c := rec.last(t); c.path != "/teaching/submissions" || c.params.Get("status") != "submitted" {
		t.Fatalf("teaching: %+v", c)
	}
	_, _ = s.Grades.List(ctx, 4)
	if c := rec.last(t); c.path != "/grades" || c.params.Get("course_id") != "4" {
		t.Fatalf("grades: %+v", c)
	}
	_, _ = s.Grades.List(ctx, 0)
	if rec.last(t).params != nil {
		t.Fatal("course_id=0 не должен уходить в запрос")
	}
}

func TestGrade(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	s := New(rec)

	for _, bad := range []float64{-1, 100.5, math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := s.Submissions.Grade(ctx, 1, bad, ""); err == nil {
			t.Fatalf("ожидали ошибку для %v", bad)
		}
	}
	if len(rec.calls) != 0 {
		t.Fatal("невалидная оценка не должна уходить на бэкенд")
	}

	if _, err := s.Submissions.Grade(ctx, 12, 85, ""); err != nil {
		t.Fatal(err)
	}
	c := rec.last(t)
	if c.method != http.MethodPost || c.path != "/submissions/12/grade" {
		t.Fatalf("grade call: %+v", c)
	}
	if c.body != `{"points_earned":85,"feedback":null}` {
		t.Fatalf("grade body = %s", c.body)
	}

	_, _ = s.Submissions.Grade(ctx, 12, 100, "Отлично")
	if m := bodyMap(t, rec.last(t)); m["feedback"] != "Отлично" {
		t.Fatalf("feedback = %v", m["feedback"])
	}
}

func TestErrorsPassThrough(t *testing.T) {
	rec := &recorder{err: errors.New("boom")}
	if _, err := New(rec).Courses.Get(context.Background(), 1); err == nil || err.Error() != "boom" {
		t.Fatalf("err = %v", err)
	}
}

// Любой фасад поверх настоящего клиента отдаёт 401 как ErrUnauthorized.
func TestUnauthorizedFromAnyFacade(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Not authenticated"}`))
	}))
	defer srv.Close()

	api := apiclient.New(apiclient.Options{BaseURL: srv.URL, Timeout: time.Second}, apiclient.TokenFunc(func() string { return "stale" }))
	s := New(api)
	ctx := context.Background()

	calls := map[string]func() error{
		"courses":     func() error { _, err := s.Courses.List(ctx, CourseFilter{}); return err },
		"assignments": func() error { _, err := s.Assignments.Mine(ctx, ""); return err },
		"grades":      func() error { _, err := s.Grades.Detailed(ctx); return err },
		"admin":       func() error { _, err := s.Admin.Stats(ctx); return err },
	}
	for name, fn := range calls {
		if err := fn(); !errors.Is(err, apiclient.ErrUnauthorized) {
			t.Fatalf("%s: ожидали ErrUnauthorized, получили %v", name, err)
		}
	}
}
