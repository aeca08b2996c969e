package lms

import (
	"context"
	"fmt"
	"math"
	"net/http"

	"github.com/Spok95/lms-bot/internal/apiclient"
	"github.com/Spok95/lms-bot/internal/models"
)

// MaxPoints — верхняя граница оценки за сдачу.
const MaxPoints = 100

// ValidPoints — конечное число в 0..MaxPoints. NaN и ±Inf в JSON не кодируются.
func ValidPoints(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0 && v <= MaxPoints
}

type SubmissionService struct{ api apiclient.Doer }

func (s *SubmissionService) Mine(ctx context.Context) ([]models.SubmissionRow, error) {
	var out []models.SubmissionRow
	err := s.api.Do(ctx, http.MethodGet, "/my/submissions", nil, nil, &out)
	return out, err
}

func (s *SubmissionService) Teaching(ctx context.Context, status string) ([]models.TeachingSubmission, error) {
	var out []models.TeachingSubmission
	err := s.api.Do(ctx, http.MethodGet, "/teaching/submissions", nil, statusParams(status), &out)
	return out, err
}

func (s *SubmissionService) List(ctx context.Context) ([]models.Submission, error) {
	var out []models.Submission
	err := s.api.Do(ctx, http.MethodGet, "/submissions", nil, nil, &out)
	return out, err
}

// Grade выставляет оценку 0..MaxPoints; пустой отзыв уходит как null.
func (s *SubmissionService) Grade(ctx context.Context, submissionID int64, points float64, feedback string) (models.GradeResult, error) {
	if !ValidPoints(points) {
		return models.GradeResult{}, fmt.Errorf("grade submission %d: points %.1f out of range 0..%d", submissionID, points, MaxPoints)
	}
	in := models.GradeInput{PointsEarned: points}
	if feedback != "" {
		in.Feedback = &feedback
	}
	var out models.GradeResult
	err := s.api.Do(ctx, http.MethodPost, "/submissions/"+id(submissionID)+"/grade", in, nil, &out)
	return out, err
}
