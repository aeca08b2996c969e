package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Spok95/lms-bot/internal/ctxutil"
	"github.com/Spok95/lms-bot/internal/models"
	"github.com/Spok95/lms-bot/internal/session"
)

// SessionStore — токен сессии одного чата в chat_sessions.
type SessionStore struct {
	db     *sql.DB
	chatID int64
}

func NewSessionStore(database *sql.DB, chatID int64) *SessionStore {
	return &SessionStore{db: database, chatID: chatID}
}

// SessionStores — фабрика для session.Manager.
func SessionStores(database *sql.DB) session.StoreFactory {
	return func(chatID int64) session.TokenStore { return NewSessionStore(database, chatID) }
}

func (s *SessionStore) Load(ctx context.Context) (session.Credentials, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var c session.Credentials
	var role string
	err := s.db.QueryRowContext(ctx,
		`SELECT token, role FROM chat_sessions WHERE chat_id = $1`, s.chatID).Scan(&c.Token, &role)
	if errors.Is(err, sql.ErrNoRows) {
		return session.Credentials{}, nil
	}
	if err != nil {
		return session.Credentials{}, fmt.Errorf("load session %d: %w", s.chatID, err)
	}
	c.Role = models.Role(role)
	return c, nil
}

func (s *SessionStore) Save(ctx context.Context, c session.Credentials) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chat_sessions (chat_id, token, role, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (chat_id) DO UPDATE
		SET token = EXCLUDED.token, role = EXCLUDED.role, updated_at = now()
	`, s.chatID, c.Token, string(c.Role))
	if err != nil {
		return fmt.Errorf("save session %d: %w", s.chatID, err)
	}
	return nil
}

func (s *SessionStore) Clear(ctx context.Context) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM chat_sessions WHERE chat_id = $1`, s.chatID); err != nil {
		return fmt.Errorf("clear session %d: %w", s.chatID, err)
	}
	return nil
}

// SessionChats — чаты с сохранённым токеном, по возрастанию chat_id.
func SessionChats(ctx context.Context, database *sql.DB) ([]int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := database.QueryContext(ctx, `SELECT chat_id FROM chat_sessions ORDER BY chat_id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
