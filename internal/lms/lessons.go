package lms

import (
	"context"
	"net/http"

	"github.com/Spok95/lms-bot/internal/apiclient"
	"github.com/Spok95/lms-bot/internal/models"
)

type LessonService struct{ api apiclient.Doer }

func (s *LessonService) Create(ctx context.Context, moduleID int64, in models.LessonCreate) (models.Lesson, error) {
	in.ModuleID = moduleID
	var out models.Lesson
	err := s.api.Do(ctx, http.MethodPost, "/modules/"+id(moduleID)+"/lessons", in, nil, &out)
	return out, err
}

func (s *LessonService) Get(ctx context.Context, lessonID int64) (models.Lesson, error) {
	var out models.Lesson
	err := s.api.Do(ctx, http.MethodGet, "/lessons/"+id(lessonID), nil, nil, &out)
	return out, err
}

func (s *LessonService) Complete(ctx context.Context, lessonID int64) (models.Message, error) {
	var out models.Message
	err := s.api.Do(ctx, http.MethodPost, "/lessons/"+id(lessonID)+"/complete", nil, nil, &out)
	return out, err
}

func (s *LessonService) Delete(ctx context.Context, lessonID int64) error {
	return s.api.Do(ctx, http.MethodDelete, "/lessons/"+id(lessonID), nil, nil, nil)
}

func (s *LessonService) Assignments(ctx context.Context, lessonID int64) ([]models.Assignment, error) {
	var out []models.Assignment
	err := s.api.Do(ctx, http.MethodGet, "/lessons/"+id(lessonID)+"/assignments", nil, nil, &out)
	return out, err
}
