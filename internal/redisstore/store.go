// Package redisstore — хранилище токенов сессий в Redis (SESSION_BACKEND=redis).
package redisstore

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Spok95/lms-bot/internal/models"
	"github.com/Spok95/lms-bot/internal/session"
)

const keyPrefix = "lms:session:"

func Key(chatID int64) string { return keyPrefix + strconv.FormatInt(chatID, 10) }

// Connect создаёт клиента и проверяет соединение.
func Connect(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// Store — хэш lms:session:<chat> с полями token и role.
type Store struct {
	rdb    *redis.Client
	chatID int64
	ttl    time.Duration
}

func New(rdb *redis.Client, chatID int64, ttl time.Duration) *Store {
	return &Store{rdb: rdb, chatID: chatID, ttl: ttl}
}

// Stores — фабрика для session.Manager; ttl == 0 — без срока жизни.
func Stores(rdb *redis.Client, ttl time.Duration) session.StoreFactory {
	return func(chatID int64) session.TokenStore { return New(rdb, chatID, ttl) }
}

func (s *Store) Load(ctx context.Context) (session.Credentials, error) {
	m, err := s.rdb.HGetAll(ctx, Key(s.chatID)).Result()
	if err != nil {
		return session.Credentials{}, fmt.Errorf("redis load %d: %w", s.chatID, err)
	}
	return session.Credentials{Token: m["token"], Role: models.Role(m["role"])}, nil
}

func (s *Store) Save(ctx context.Context, c session.Credentials) error {
	key := Key(s.chatID)
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, key)
		p.HSet(ctx, key, "token", c.Token, "role", string(c.Role))
		if s.ttl > 0 {
			p.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save %d: %w", s.chatID, err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if err := s.rdb.Del(ctx, Key(s.chatID)).Err(); err != nil {
		return fmt.Errorf("redis clear %d: %w", s.chatID, err)
	}
	return nil
}

// Chats — чаты с сохранённой сессией (SCAN по префиксу).
func Chats(ctx context.Context, rdb *redis.Client) ([]int64, error) {
	var out []int64
	iter := rdb.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		id, err := strconv.ParseInt(strings.TrimPrefix(iter.Val(), keyPrefix), 10, 64)
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	return out, nil
}
