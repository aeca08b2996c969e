package jobs

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/lms-bot/internal/apiclient"
	"github.com/Spok95/lms-bot/internal/models"
	"github.com/Spok95/lms-bot/internal/session"
)

type fakeBot struct {
	mu   sync.Mutex
	sent []tgbotapi.MessageConfig
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		b.sent = append(b.sent, m)
	}
	return tgbotapi.Message{}, nil
}

func (b *fakeBot) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (b *fakeBot) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sent)
}

type memLog struct {
	mu   sync.Mutex
	seen map[int64]map[int64]bool
}

func (l *memLog) RemindedAmong(_ context.Context, chatID int64, ids []int64) (map[int64]bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := map[int64]bool{}
	for _, id := range ids {
		if l.seen[chatID][id] {
			out[id] = true
		}
	}
	return out, nil
}

func (l *memLog) MarkReminded(_ context.Context, chatID int64, rs []models.Reminder) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.seen[chatID] == nil {
		l.seen[chatID] = map[int64]bool{}
	}
	for _, r := range rs {
		l.seen[chatID][r.AssignmentID] = true
	}
	return nil
}

var now = time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

func newReminders(t *testing.T, h http.HandlerFunc) (*DeadlineReminders, *fakeBot, session.StoreFactory) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	api := apiclient.New(apiclient.Options{BaseURL: srv.URL, Timeout: 2 * time.Second}, nil)

	stores := session.MemoryStores()
	_ = stores(1).Save(context.Background(), session.Credentials{Token: "tok"})
	bot := &fakeBot{}
	return &DeadlineReminders{
		Sessions: session.NewManager(api, stores, nil),
		Chats:    func(context.Context) ([]int64, error) { return []int64{1, 2}, nil },
		Reminded: &memLog{seen: map[int64]map[int64]bool{}},
		Bot:      bot,
		Location: time.UTC,
		Now:      func() time.Time { return now },
	}, bot, stores
}

func TestDeadlineReminders_OncePerAssignment(t *testing.T) {
	var statusParam atomic.Value
	r, bot, _ := newReminders(t, func(w http.ResponseWriter, req *http.Request) {
		switch req.URL.Path {
		case "/profile":
			_, _ = w.Write([]byte(`{"id":1,"name":"Иван","role":"user"}`))
		case "/users/me/assignments":
			statusParam.Store(req.URL.Query().Get("status"))
			_, _ = w.Write([]byte(`[
				{"id":5,"title":"Эссе","course_title":"Go","status":"pending","due_date":"2026-01-10 14:00:00"},
				{"id":6,"title":"Проект","status":"pending","due_date":"2026-01-13 14:00:00"},
				{"id":7,"title":"Прошлое","status":"pending","due_date":"2026-01-09 14:00:00"},
				{"id":8,"title":"Без срока","status":"pending","due_date":null}
			]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	if err := r.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if statusParam.Load() != "pending" {
		t.Fatalf("status = %v", statusParam.Load())
	}
	if bot.count() != 1 {
		t.Fatalf("ожидали одно напоминание, отправлено %d", bot.count())
	}
	msg := bot.sent[0]
	if msg.ChatID != 1 || !strings.Contains(msg.Text, "Эссе") || !strings.Contains(msg.Text, "10 января 2026, 14:00") {
		t.Fatalf("msg = %+v", msg)
	}

	if err := r.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if bot.count() != 1 {
		t.Fatal("повторный прогон не должен напоминать снова")
	}
}

func TestDeadlineReminders_UnauthorizedGoesToObserver(t *testing.T) {
	r, bot, stores := newReminders(t, func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path == "/profile" {
			_, _ = w.Write([]byte(`{"id":1,"role":"user"}`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	})
	var observed int32
	r.Observe = func(ctx context.Context, chatID int64, sess *session.Session, gen uint64, err error) bool {
		atomic.AddInt32(&observed, 1)
		return sess.ObserveFrom(ctx, gen, err)
	}

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("401 гасит сессию и не считается ошибкой: %v", err)
	}
	if atomic.LoadInt32(&observed) != 1 {
		t.Fatalf("observed = %d", observed)
	}
	if c, _ := stores(1).Load(context.Background()); c.Token != "" {
		t.Fatal("токен должен быть удалён")
	}
	if bot.count() != 0 {
		t.Fatal("без сессии напоминаний нет")
	}
}

func TestDeadlineReminders_BackendDownKeepsSessions(t *testing.T) {
	var down atomic.Bool
	down.Store(true)
	r, bot, stores := newReminders(t, func(w http.ResponseWriter, req *http.Request) {
		if down.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		switch req.URL.Path {
		case "/profile":
			_, _ = w.Write([]byte(`{"id":1,"role":"user"}`))
		default:
			_, _ = w.Write([]byte(`[{"id":5,"title":"Эссе","status":"pending","due_date":"2026-01-10 14:00:00"}]`))
		}
	})

	_ = r.Run(context.Background())
	if c, _ := stores(1).Load(context.Background()); c.Token != "tok" {
		t.Fatalf("502 не должен стирать токен: %+v", c)
	}
	if st := r.Sessions.Get(1).State(); st != session.Loading {
		t.Fatalf("state = %v, сессия ждёт следующей попытки", st)
	}

	down.Store(false)
	if err := r.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if bot.count() != 1 {
		t.Fatalf("после восстановления бэкенда ожидали напоминание, отправлено %d", bot.count())
	}
}

func TestDeadlineReminders_DefaultObserverClearsSession(t *testing.T) {
	r, _, stores := newReminders(t, func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path == "/profile" {
			_, _ = w.Write([]byte(`{"id":1,"role":"user"}`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	})
	if err := r.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if c, _ := stores(1).Load(context.Background()); c.Token != "" {
		t.Fatal("401 гасит сессию и без диспетчера")
	}
}

func TestDeadlineReminders_SkipsEditors(t *testing.T) {
	var listed int32
	r, _, _ := newReminders(t, func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path == "/profile" {
			_, _ = w.Write([]byte(`{"id":1,"role":"teacher"}`))
			return
		}
		atomic.AddInt32(&listed, 1)
		_, _ = w.Write([]byte(`[]`))
	})
	if err := r.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if atomic.LoadInt32(&listed) != 0 {
		t.Fatal("у преподавателя свои задания не запрашиваем")
	}
}

func TestDeadlineReminders_ChatsError(t *testing.T) {
	r, _, _ := newReminders(t, func(w http.ResponseWriter, req *http.Request) {})
	boom := errors.New("boom")
	r.Chats = func(context.Context) ([]int64, error) { return nil, boom }
	if err := r.Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}

func TestRunner_RecoversPanics(t *testing.T) {
	r := New(context.Background(), nil)
	r.runOnce("panicky", func(context.Context) error { panic("boom") })
	r.runOnce("failing", func(context.Context) error { return errors.New("x") })
}
