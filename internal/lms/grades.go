package lms

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Spok95/lms-bot/internal/apiclient"
	"github.com/Spok95/lms-bot/internal/models"
)

type GradeService struct{ api apiclient.Doer }

// List — оценки пользователя; courseID == 0 — по всем курсам.
func (s *GradeService) List(ctx context.Context, courseID int64) ([]models.Grade, error) {
	var params url.Values
	if courseID > 0 {
		params = url.Values{"course_id": {id(courseID)}}
	}
	var out []models.Grade
	err := s.api.Do(ctx, http.MethodGet, "/grades", nil, params, &out)
	return out, err
}

func (s *GradeService) Detailed(ctx context.Context) ([]models.DetailedGrade, error) {
	var out []models.DetailedGrade
	err := s.api.Do(ctx, http.MethodGet, "/grades/detailed", nil, nil, &out)
	return out, err
}

func (s *GradeService) Create(ctx context.Context, in models.GradeCreate) (models.Grade, error) {
	var out models.Grade
	err := s.api.Do(ctx, http.MethodPost, "/grades", in, nil, &out)
	return out, err
}
