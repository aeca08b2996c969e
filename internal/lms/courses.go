package lms

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Spok95/lms-bot/internal/apiclient"
	"github.com/Spok95/lms-bot/internal/models"
)

type CourseService struct{ api apiclient.Doer }

// CourseFilter — параметры списка курсов; нулевые значения не отправляются.
type CourseFilter struct {
	Skip     int
	Limit    int
	Category string
	Status   models.CourseStatus
}

func (f CourseFilter) values() url.Values {
	v := url.Values{}
	if f.Skip > 0 {
		v.Set("skip", strconv.Itoa(f.Skip))
	}
	if f.Limit > 0 {
		v.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Category != "" {
		v.Set("category", f.Category)
	}
	if f.Status != "" {
		v.Set("status", string(f.Status))
	}
	return v
}

func (s *CourseService) List(ctx context.Context, f CourseFilter) ([]models.Course, error) {
	var out []models.Course
	err := s.api.Do(ctx, http.MethodGet, "/courses", nil, f.values(), &out)
	return out, err
}

func (s *CourseService) Get(ctx context.Context, courseID int64) (models.Course, error) {
	var out models.Course
	err := s.api.Do(ctx, http.MethodGet, "/courses/"+id(courseID), nil, nil, &out)
	return out, err
}

func (s *CourseService) Create(ctx context.Context, in models.CourseCreate) (models.Course, error) {
	if in.DifficultyLevel == "" {
		in.DifficultyLevel = models.DifficultyLevels[0]
	}
	var out models.Course
	err := s.api.Do(ctx, http.MethodPost, "/courses", in, nil, &out)
	return out, err
}

func (s *CourseService) Update(ctx context.Context, courseID int64, in models.CourseUpdate) (models.Course, error) {
	var out models.Course
	err := s.api.Do(ctx, http.MethodPatch, "/courses/"+id(courseID), in, nil, &out)
	return out, err
}

func (s *CourseService) Enroll(ctx context.Context, courseID int64) (models.Enrollment, error) {
	var out models.Enrollment
	err := s.api.Do(ctx, http.MethodPost, "/courses/"+id(courseID)+"/enroll", nil, nil, &out)
	return out, err
}

func (s *CourseService) Progress(ctx context.Context, courseID int64) (models.Progress, error) {
	var out models.Progress
	err := s.api.Do(ctx, http.MethodGet, "/progress/"+id(courseID), nil, nil, &out)
	return out, err
}

func (s *CourseService) Publish(ctx context.Context, courseID int64) (models.Course, error) {
	var out models.Course
	err := s.api.Do(ctx, http.MethodPut, "/courses/"+id(courseID)+"/publish", nil, nil, &out)
	return out, err
}
