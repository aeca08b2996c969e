package app

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Spok95/lms-bot/internal/db"
	"github.com/Spok95/lms-bot/internal/metrics"
)

// HealthChecker — проверка живости бэкенда LMS (lms.AdminService).
type HealthChecker interface {
	Health(ctx context.Context) error
}

type HTTPServer struct {
	srv *http.Server
}

// Router: /healthz (БД, если есть, и бэкенд LMS) и /metrics.
func Router(database *sql.DB, backend HealthChecker) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 800*time.Millisecond)
		defer cancel()
		if database != nil {
			if err := db.Ping(ctx, database); err != nil {
				http.Error(w, "db not ok: "+err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		if backend != nil {
			if err := backend.Health(ctx); err != nil {
				http.Error(w, "lms api not ok: "+err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler())
	return r
}

func StartHTTP(ctx context.Context, addr string, database *sql.DB, backend HealthChecker, log *zap.Logger) *HTTPServer {
	srv := &http.Server{Addr: addr, Handler: Router(database, backend), ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server stopped", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
	}()

	return &HTTPServer{srv: srv}
}
