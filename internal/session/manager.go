package session

import (
	"sync"

	"go.uber.org/zap"

	"github.com/Spok95/lms-bot/internal/apiclient"
)

// Manager держит по одной сессии на чат.
type Manager struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	base     *apiclient.Client
	stores   StoreFactory
	log      *zap.Logger
}

func NewManager(base *apiclient.Client, stores StoreFactory, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		sessions: make(map[int64]*Session),
		base:     base,
		stores:   stores,
		log:      log,
	}
}

// Get возвращает сессию чата, создавая её в состоянии Loading.
// Восстановление запускает Session.Ensure.
func (m *Manager) Get(chatID int64) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[chatID]; ok {
		return s
	}
	s := New(m.base, m.stores(chatID), m.log.With(zap.Int64("chat_id", chatID)))
	m.sessions[chatID] = s
	return s
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
