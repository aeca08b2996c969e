package app

import (
	"context"
	"sync"
)

// ViewTracker — поколение экрана на чат. Новая навигация отменяет
// контекст предыдущей и делает её ответ устаревшим.
type ViewTracker struct {
	mu     sync.Mutex
	byChat map[int64]*viewSlot
}

type viewSlot struct {
	gen    uint64
	cancel context.CancelFunc
}

func NewViewTracker() *ViewTracker {
	return &ViewTracker{byChat: make(map[int64]*viewSlot)}
}

func (t *ViewTracker) slot(chatID int64) *viewSlot {
	s, ok := t.byChat[chatID]
	if !ok {
		s = &viewSlot{}
		t.byChat[chatID] = s
	}
	return s
}

// Begin открывает новый экран чата: отменяет прошлый и возвращает
// контекст, поколение и функцию завершения.
func (t *ViewTracker) Begin(ctx context.Context, chatID int64) (context.Context, uint64, func()) {
	vctx, cancel := context.WithCancel(ctx)

	t.mu.Lock()
	s := t.slot(chatID)
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	s.cancel = cancel
	gen := s.gen
	t.mu.Unlock()

	done := func() {
		cancel()
		t.mu.Lock()
		if s.gen == gen {
			s.cancel = nil
		}
		t.mu.Unlock()
	}
	return vctx, gen, done
}

// Current: экран поколения gen всё ещё последний.
func (t *ViewTracker) Current(chatID int64, gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.byChat[chatID]
	return ok && s.gen == gen
}

// Cancel отменяет текущий экран чата (выход, истечение сессии).
func (t *ViewTracker) Cancel(chatID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.slot(chatID)
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
}
