package session

import (
	"context"
	"sync"

	"github.com/Spok95/lms-bot/internal/models"
)

// Credentials — то, что переживает перезапуск: токен и роль из ответа /login.
type Credentials struct {
	Token string
	Role  models.Role
}

// TokenStore хранит Credentials одной сессии (одного чата).
// Load без сохранённого токена возвращает пустые Credentials и nil.
type TokenStore interface {
	Load(ctx context.Context) (Credentials, error)
	Save(ctx context.Context, c Credentials) error
	Clear(ctx context.Context) error
}

// StoreFactory выдаёт хранилище для чата.
type StoreFactory func(chatID int64) TokenStore

type MemoryStore struct {
	mu    sync.Mutex
	creds Credentials
}

func NewMemoryStore(c Credentials) *MemoryStore { return &MemoryStore{creds: c} }

func (m *MemoryStore) Load(context.Context) (Credentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creds, nil
}

func (m *MemoryStore) Save(_ context.Context, c Credentials) error {
	m.mu.Lock()
	m.creds = c
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	m.creds = Credentials{}
	m.mu.Unlock()
	return nil
}

// MemoryStores — фабрика in-memory хранилищ по чатам (SESSION_BACKEND=memory).
func MemoryStores() StoreFactory {
	var mu sync.Mutex
	stores := map[int64]*MemoryStore{}
	return func(chatID int64) TokenStore {
		mu.Lock()
		defer mu.Unlock()
		s, ok := stores[chatID]
		if !ok {
			s = &MemoryStore{}
			stores[chatID] = s
		}
		return s
	}
}
