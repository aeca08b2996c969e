// Package session — сессия пользователя LMS: токен, профиль, роль и права.
// Сессию меняют только её методы; 401 от бэкенда гасит её через Observe.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/Spok95/lms-bot/internal/apiclient"
	"github.com/Spok95/lms-bot/internal/lms"
	"github.com/Spok95/lms-bot/internal/logging"
	"github.com/Spok95/lms-bot/internal/metrics"
	"github.com/Spok95/lms-bot/internal/models"
)

type State int

const (
	Loading State = iota
	Unauthenticated
	Authenticated
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Authenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// ErrSuperseded — ответ пришёл для уже сменившейся сессии (logout/login/401 в процессе).
var ErrSuperseded = errors.New("session: superseded")

type Session struct {
	mu        sync.RWMutex
	state     State
	token     string
	user      *models.User
	gen       uint64
	restoring bool

	store TokenStore
	base  *apiclient.Client
	svc   *lms.Services
	log   *zap.Logger
	now   func() time.Time
}

func New(base *apiclient.Client, store TokenStore, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Session{
		state: Loading,
		store: store,
		base:  base,
		log:   log,
		now:   time.Now,
	}
	s.svc = lms.New(base.WithTokens(s))
	return s
}

// Token реализует apiclient.TokenSource.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Services — фасады, которые ходят на бэкенд с токеном этой сессии.
func (s *Session) Services() *lms.Services { return s.svc }

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

func (s *Session) role() models.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	return s.user.Role
}

func (s *Session) IsAdmin() bool { return s.role().IsAdmin() }
func (s *Session) IsTeacher() bool { return s.role().IsTeacher() }
func (s *Session) Capabilities() models.Capabilities { return s.role().Capabilities() }

// Generation растёт при каждом входе, выходе и истечении сессии.
func (s *Session) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

// Current: ответ, начатый в поколении gen, ещё можно показывать.
func (s *Session) Current(gen uint64) bool { return s.Generation() == gen }

// Ensure запускает восстановление один раз. Пока оно идёт, конкурентные
// вызовы сразу возвращаются и видят Loading.
func (s *Session) Ensure(ctx context.Context) State {
	s.mu.Lock()
	if s.state != Loading || s.restoring {
		st := s.state
		s.mu.Unlock()
		return st
	}
	s.restoring = true
	s.mu.Unlock()

	s.Restore(ctx)
	return s.State()
}

// Resume — Ensure для фоновых задач. Сбой бэкенда или хранилища (кроме 401)
// не стирает токен: сессия остаётся в Loading до следующей попытки.
func (s *Session) Resume(ctx context.Context) State {
	s.mu.Lock()
	if s.state != Loading || s.restoring {
		st := s.state
		s.mu.Unlock()
		return st
	}
	s.restoring = true
	s.mu.Unlock()

	s.restore(ctx, true)
	return s.State()
}

// Restore поднимает сессию из хранилища. Всегда завершается в
// Authenticated или Unauthenticated.
func (s *Session) Restore(ctx context.Context) { s.restore(ctx, false) }

func (s *Session) restore(ctx context.Context, keepOnOutage bool) {
	log := logging.FromContext(ctx, s.log)
	gen := s.Generation()

	creds, err := s.store.Load(ctx)
	if err != nil {
		log.Warn("session store load failed", zap.Error(err))
		if keepOnOutage {
			s.postpone()
			return
		}
		s.settle(gen, "", nil)
		return
	}
	if creds.Token == "" {
		s.settle(gen, "", nil)
		return
	}
	if tokenExpired(creds.Token, s.now()) {
		log.Info("stored token expired, dropping")
		s.clearStore(ctx)
		s.settle(gen, "", nil)
		return
	}

	user, err := s.profile(ctx, creds.Token)
	if err != nil {
		if keepOnOutage && !errors.Is(err, apiclient.ErrUnauthorized) {
			log.Info("session restore postponed", zap.Error(err))
			s.postpone()
			return
		}
		log.Info("session restore failed", zap.Error(err))
		s.clearStore(ctx)
		s.settle(gen, "", nil)
		return
	}
	s.settle(gen, creds.Token, &user)
}

// postpone оставляет сессию в Loading, следующий Ensure повторит восстановление.
func (s *Session) postpone() {
	s.mu.Lock()
	s.restoring = false
	s.mu.Unlock()
}

// settle фиксирует результат восстановления, если за это время сессию никто не сменил.
func (s *Session) settle(gen uint64, token string, user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restoring = false
	if s.gen != gen {
		return
	}
	if user == nil {
		s.state, s.token, s.user = Unauthenticated, "", nil
		return
	}
	s.state, s.token, s.user = Authenticated, token, user
}

// Login: POST /login → сохранить токен и роль → профиль → Authenticated.
// При ошибке сессия неаутентифицирована, ошибку показывают через apiclient.Message.
func (s *Session) Login(ctx context.Context, email, password string) error {
	gen := s.Generation()

	tok, err := s.svc.Auth.Login(ctx, email, password)
	if err != nil {
		metrics.Logins.WithLabelValues("fail").Inc()
		return fmt.Errorf("login: %w", err)
	}
	if !s.Current(gen) {
		return ErrSuperseded
	}
	if err := s.store.Save(ctx, Credentials{Token: tok.Token, Role: tok.Role}); err != nil {
		metrics.Logins.WithLabelValues("error").Inc()
		return fmt.Errorf("login: save token: %w", err)
	}

	user, err := s.profile(ctx, tok.Token)
	if err != nil {
		s.clearStore(ctx)
		metrics.Logins.WithLabelValues("error").Inc()
		return fmt.Errorf("login: profile: %w", err)
	}

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return ErrSuperseded
	}
	s.gen++
	s.state, s.token, s.user = Authenticated, tok.Token, &user
	s.mu.Unlock()

	metrics.Logins.WithLabelValues("ok").Inc()
	logging.FromContext(ctx, s.log).Info("logged in", zap.Int64("user_id", user.ID), zap.String("role", string(user.Role)))
	return nil
}

// Register создаёт учётную запись; сессию не аутентифицирует.
func (s *Session) Register(ctx context.Context, req models.RegisterRequest) error {
	req.Role = models.NormalizeRegistrationRole(req.Role)
	if _, err := s.svc.Auth.Register(ctx, req); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	return nil
}

// Logout чистит токен и роль без обращения к бэкенду. Состояние
// сбрасывается даже если хранилище вернуло ошибку.
func (s *Session) Logout(ctx context.Context) error {
	s.reset()
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("logout: clear store: %w", err)
	}
	return nil
}

// Observe — единственный обработчик 401: гасит сессию и сообщает true.
// Остальные ошибки не трогает.
func (s *Session) Observe(ctx context.Context, err error) bool {
	return s.ObserveFrom(ctx, s.Generation(), err)
}

// ObserveFrom — Observe для ответа, начатого в поколении gen. 401, который
// опоздал к уже сменившейся сессии, ничего не гасит; тогда false.
func (s *Session) ObserveFrom(ctx context.Context, gen uint64, err error) bool {
	if !errors.Is(err, apiclient.ErrUnauthorized) {
		return false
	}
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return false
	}
	s.resetLocked()
	s.mu.Unlock()
	s.expired(ctx)
	return true
}

func (s *Session) expired(ctx context.Context) {
	s.clearStore(ctx)
	metrics.SessionsExpired.Inc()
	logging.FromContext(ctx, s.log).Info("session expired")
}

func (s *Session) reset() {
	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()
}

func (s *Session) resetLocked() {
	s.gen++
	s.state, s.token, s.user = Unauthenticated, "", nil
	s.restoring = false
}

func (s *Session) clearStore(ctx context.Context) {
	if err := s.store.Clear(ctx); err != nil {
		logging.FromContext(ctx, s.log).Warn("session store clear failed", zap.Error(err))
	}
}

// profile запрашивает /profile с явно переданным токеном, не трогая сессию.
func (s *Session) profile(ctx context.Context, token string) (models.User, error) {
	api := s.base.WithTokens(apiclient.TokenFunc(func() string { return token }))
	return lms.New(api).Auth.Profile(ctx)
}

// tokenExpired смотрит exp у JWT без проверки подписи. Непрозрачный токен
// считается живым: решает бэкенд.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(now)
}
