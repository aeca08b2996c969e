package lms

import (
	"context"
	"net/http"

	"github.com/Spok95/lms-bot/internal/apiclient"
	"github.com/Spok95/lms-bot/internal/models"
)

type AuthService struct{ api apiclient.Doer }

func (s *AuthService) Login(ctx context.Context, email, password string) (models.TokenResponse, error) {
	var out models.TokenResponse
	err := s.api.Do(ctx, http.MethodPost, "/login", models.LoginRequest{Email: email, Password: password}, nil, &out)
	return out, err
}

// Register отправляет роль как есть; нормализацию делает сессия.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (models.User, error) {
	var out models.User
	err := s.api.Do(ctx, http.MethodPost, "/register", req, nil, &out)
	return out, err
}

func (s *AuthService) Profile(ctx context.Context) (models.User, error) {
	var out models.User
	err := s.api.Do(ctx, http.MethodGet, "/profile", nil, nil, &out)
	return out, err
}

func (s *AuthService) ProfileStats(ctx context.Context) (models.ProfileStats, error) {
	var out models.ProfileStats
	err := s.api.Do(ctx, http.MethodGet, "/profile/stats", nil, nil, &out)
	return out, err
}
