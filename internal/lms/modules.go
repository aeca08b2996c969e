package lms

import (
	"context"
	"net/http"

	"github.com/Spok95/lms-bot/internal/apiclient"
	"github.com/Spok95/lms-bot/internal/models"
)

type ModuleService struct{ api apiclient.Doer }

// Create: course_id в теле всегда берётся из пути.
func (s *ModuleService) Create(ctx context.Context, courseID int64, in models.ModuleCreate) (models.Module, error) {
	in.CourseID = courseID
	var out models.Module
	err := s.api.Do(ctx, http.MethodPost, "/courses/"+id(courseID)+"/modules", in, nil, &out)
	return out, err
}

func (s *ModuleService) Get(ctx context.Context, moduleID int64) (models.Module, error) {
	var out models.Module
	err := s.api.Do(ctx, http.MethodGet, "/modules/"+id(moduleID), nil, nil, &out)
	return out, err
}

func (s *ModuleService) Update(ctx context.Context, moduleID int64, in models.ModuleUpdate) (models.Module, error) {
	var out models.Module
	err := s.api.Do(ctx, http.MethodPatch, "/modules/"+id(moduleID), in, nil, &out)
	return out, err
}

func (s *ModuleService) Delete(ctx context.Context, courseID, moduleID int64) error {
	return s.api.Do(ctx, http.MethodDelete, "/courses/"+id(courseID)+"/modules/"+id(moduleID), nil, nil, nil)
}
