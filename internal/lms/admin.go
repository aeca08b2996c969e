package lms

import (
	"context"
	"net/http"

	"github.com/Spok95/lms-bot/internal/apiclient"
	"github.com/Spok95/lms-bot/internal/models"
)

type AdminService struct{ api apiclient.Doer }

func (s *AdminService) Stats(ctx context.Context) (models.AdminStats, error) {
	var out models.AdminStats
	err := s.api.Do(ctx, http.MethodGet, "/admin/stats", nil, nil, &out)
	return out, err
}

func (s *AdminService) Health(ctx context.Context) error {
	return s.api.Do(ctx, http.MethodGet, "/health", nil, nil, nil)
}
