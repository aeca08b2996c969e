package apiclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnauthorized — бэкенд ответил 401. Сессию гасит наблюдатель верхнего уровня,
// сам клиент ничего не чистит и никуда не перенаправляет.
var ErrUnauthorized = errors.New("apiclient: unauthorized")

// Error — не-2xx ответ бэкенда.
type Error struct {
	Method string
	Path   string
	Status int
	// Detail — сырое поле "detail": строка, массив {msg} или произвольный объект.
	Detail json.RawMessage
	Body   string
}

func (e *Error) Error() string {
	msg := e.Message("")
	if msg == "" {
		msg = e.Body
	}
	return fmt.Sprintf("%s %s: http %d: %s", e.Method, e.Path, e.Status, msg)
}

func (e *Error) StatusCode() int { return e.Status }

func (e *Error) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// Message — человекочитаемое сообщение из detail или fallback.
func (e *Error) Message(fallback string) string {
	return DetailMessage(e.Detail, fallback)
}

func newError(method, path string, status int, body []byte) *Error {
	e := &Error{
		Method: method,
		Path:   path,
		Status: status,
		Body:   strings.TrimSpace(string(body)),
	}
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(body, &envelope) == nil {
		e.Detail = envelope.Detail
	}
	return e
}

// DetailMessage сводит три формы detail к одной строке:
//   - строка → как есть;
//   - массив → поля msg через ", " (FastAPI 422);
//   - объект и прочее → компактный JSON.
//
// Пустой или отсутствующий detail → fallback.
func DetailMessage(detail json.RawMessage, fallback string) string {
	raw := bytes.TrimSpace(detail)
	if len(raw) == 0 {
		return fallback
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fallback
	}
	switch d := v.(type) {
	case nil:
		return fallback
	case string:
		if d == "" {
			return fallback
		}
		return d
	case bool:
		if !d {
			return fallback
		}
	case float64:
		if d == 0 {
			return fallback
		}
	case []any:
		msgs := make([]string, 0, len(d))
		for _, item := range d {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if s := msgText(m["msg"]); s != "" {
				msgs = append(msgs, s)
			}
		}
		if len(msgs) == 0 {
			return fallback
		}
		return strings.Join(msgs, ", ")
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return fallback
	}
	return buf.String()
}

func msgText(v any) string {
	switch m := v.(type) {
	case nil:
		return ""
	case string:
		return m
	case bool:
		if !m {
			return ""
		}
	case float64:
		if m == 0 {
			return ""
		}
	}
	return fmt.Sprint(v)
}

// Message — сообщение для пользователя из любой ошибки клиента.
// Сетевые ошибки не несут detail и дают fallback.
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message(fallback)
	}
	return fallback
}

// IsStatus сообщает, что err — ответ бэкенда с данным статусом.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == status
}
