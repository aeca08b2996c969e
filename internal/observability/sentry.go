package observability

import (
	"context"
	"errors"
	"time"

	"github.com/getsentry/sentry-go"
)

func InitSentry(dsn, env, release string) (func(), error) {
	if dsn == "" {
		return func() {}, nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: env,
		Release:     release,
	}); err != nil {
		return func() {}, err
	}
	return func() { sentry.Flush(2 * time.Second) }, nil
}

func CaptureErr(err error) {
	if err != nil {
		sentry.CaptureException(err)
	}
}

// statusError — ошибки, у которых есть HTTP-статус (ответ бэкенда).
type statusError interface {
	StatusCode() int
}

// IsSystemErr: 5xx, 429 и сетевые ошибки считаем системными.
// 4xx — это ошибки пользователя (валидация, доступ), в Sentry их не шлём.
func IsSystemErr(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var se statusError
	if errors.As(err, &se) {
		code := se.StatusCode()
		return code >= 500 || code == 429
	}
	return true
}

// CaptureSystemErr отправляет в Sentry только системные ошибки.
func CaptureSystemErr(err error) {
	if IsSystemErr(err) {
		CaptureErr(err)
	}
}
