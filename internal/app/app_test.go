package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/lms-bot/internal/apiclient"
	"github.com/Spok95/lms-bot/internal/bot/auth"
	"github.com/Spok95/lms-bot/internal/session"
)

type fakeBot struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, c)
	return tgbotapi.Message{MessageID: len(b.sent)}, nil
}

func (b *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (b *fakeBot) texts() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, c := range b.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m.Text)
		}
	}
	return out
}

func (b *fakeBot) contains(sub string) bool {
	for _, s := range b.texts() {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func (b *fakeBot) deleted(msgID int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range b.requests {
		if d, ok := c.(tgbotapi.DeleteMessageConfig); ok && d.MessageID == msgID {
			return true
		}
	}
	return false
}

func (b *fakeBot) lastMarkup() any {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.sent) - 1; i >= 0; i-- {
		if m, ok := b.sent[i].(tgbotapi.MessageConfig); ok {
			return m.ReplyMarkup
		}
	}
	return nil
}

// backend — LMS с одним пользователем; expired=true заставляет всё, кроме /login, отвечать 401.
type backend struct {
	mu      sync.Mutex
	role    string
	expired bool
	gate    chan struct{}
	hits    map[string]int
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.hits[r.Method+" "+r.URL.Path]++
	expired, role, gate := b.expired, b.role, b.gate
	b.mu.Unlock()

	if r.URL.Path == "/login" {
		if !strings.Contains(readAll(r), `"password":"pw"`) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Неверный email или пароль"}`))
			return
		}
		_, _ = w.Write([]byte(`{"token":"tok","role":"` + role + `"}`))
		return
	}
	if expired || r.Header.Get("Authorization") != "Bearer tok" {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Could not validate credentials"}`))
		return
	}
	switch r.URL.Path {
	case "/profile":
		_, _ = w.Write([]byte(`{"id":1,"name":"Анна","email":"a@x.ru","role":"` + role + `"}`))
	case "/courses":
		_, _ = w.Write([]byte(`[{"id":1,"title":"Основы Go","difficulty_level":"beginner","status":"published"}]`))
	case "/courses/1":
		if gate != nil {
			select {
			case <-gate:
			case <-r.Context().Done():
				return
			}
		}
		_, _ = w.Write([]byte(`{"id":1,"title":"Медленный курс","status":"published"}`))
	case "/courses/2":
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"db is down"}`))
	case "/users/me/assignments", "/grades/detailed", "/teaching/assignments":
		_, _ = w.Write([]byte(`[]`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (b *backend) hit(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[key]
}

func readAll(r *http.Request) string {
	var sb strings.Builder
	buf := make([]byte, 512)
	for {
		n, err := r.Body.Read(buf)
		sb.Write(buf[:n])
		if err != nil {
			return sb.String()
		}
	}
}

const chatID int64 = 42

type harness struct {
	app   *App
	bot   *fakeBot
	lms   *backend
	store *session.MemoryStore
}

func newHarness(t *testing.T, role string, creds session.Credentials) *harness {
	t.Helper()
	be := &backend{role: role, hits: map[string]int{}}
	srv := httptest.NewServer(be)
	t.Cleanup(srv.Close)

	store := session.NewMemoryStore(creds)
	api := apiclient.New(apiclient.Options{BaseURL: srv.URL, Timeout: 2 * time.Second}, nil)
	mgr := session.NewManager(api, func(int64) session.TokenStore { return store }, nil)
	bot := &fakeBot{}
	a := New(Options{Bot: bot, Sessions: mgr, Location: time.UTC})
	return &harness{app: a, bot: bot, lms: be, store: store}
}

func (h *harness) text(id int, s string) {
	h.app.HandleUpdate(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: id, Chat: &tgbotapi.Chat{ID: chatID}, Text: s,
	}})
}

func (h *harness) press(data string) {
	h.app.HandleUpdate(context.Background(), tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID: "cb", Data: data, Message: &tgbotapi.Message{MessageID: 100, Chat: &tgbotapi.Chat{ID: chatID}},
	}})
}

func (h *harness) creds(t *testing.T) session.Credentials {
	t.Helper()
	c, _ := h.store.Load(context.Background())
	return c
}

func TestUnauthenticatedRedirectsToLogin(t *testing.T) {
	h := newHarness(t, "user", session.Credentials{})
	h.text(1, "/courses")

	if !h.bot.contains("Вход") {
		t.Fatalf("ожидали экран входа, получили %v", h.bot.texts())
	}
	dlg, ok := h.app.dialogs.Get(chatID)
	if !ok {
		t.Fatal("экран входа должен запускать диалог")
	}
	if _, isLogin := dlg.(*auth.Login); !isLogin {
		t.Fatalf("dialog = %T", dlg)
	}
	if h.lms.hit("GET /profile") != 0 {
		t.Fatal("без токена профиль не запрашиваем")
	}
}

func TestStartShowsDashboard(t *testing.T) {
	h := newHarness(t, "user", session.Credentials{Token: "tok", Role: "user"})
	h.text(1, "/start")

	if h.bot.contains("Страница не найдена") {
		t.Fatalf("/start должен вести на главную: %v", h.bot.texts())
	}
	if !h.bot.contains("Курсов: 1") {
		t.Fatalf("ожидали главную, получили %v", h.bot.texts())
	}
}

func TestLoginFlow(t *testing.T) {
	h := newHarness(t, "teacher", session.Credentials{})
	h.text(1, "/login")
	h.text(2, "anna@x.ru")
	h.text(3, "wrong")

	if !h.bot.deleted(3) {
		t.Fatal("сообщение с паролем должно удаляться")
	}
	if !h.bot.contains("Неверный email или пароль") {
		t.Fatalf("нет сообщения об ошибке: %v", h.bot.texts())
	}
	if h.bot.contains("Сессия истекла") {
		t.Fatal("неверный пароль — не истечение сессии")
	}

	h.text(4, "anna@x.ru")
	h.text(5, "pw")
	if !h.bot.deleted(5) {
		t.Fatal("сообщение с паролем должно удаляться")
	}
	if !h.bot.contains("Вход выполнен") || !h.bot.contains("Анна") {
		t.Fatalf("ожидали вход и главную, получили %v", h.bot.texts())
	}
	if _, ok := h.app.dialogs.Get(chatID); ok {
		t.Fatal("после входа диалог закрыт")
	}
	if got := h.creds(t); got.Token != "tok" {
		t.Fatalf("creds = %+v", got)
	}
}

func TestUnauthorizedTearsDownSession(t *testing.T) {
	h := newHarness(t, "user", session.Credentials{Token: "tok", Role: "user"})
	h.text(1, "/courses")
	if !h.bot.contains("Основы Go") {
		t.Fatalf("texts = %v", h.bot.texts())
	}

	h.lms.mu.Lock()
	h.lms.expired = true
	h.lms.mu.Unlock()
	h.press("nav:/courses")

	if !h.bot.contains("Сессия истекла") {
		t.Fatalf("texts = %v", h.bot.texts())
	}
	if got := h.creds(t); got.Token != "" || got.Role != "" {
		t.Fatalf("токен и роль должны быть удалены: %+v", got)
	}
	sess := h.app.sessions.Get(chatID)
	if sess.State() != session.Unauthenticated {
		t.Fatalf("state = %v", sess.State())
	}
	if _, ok := sess.User(); ok {
		t.Fatal("пользователь должен быть сброшен")
	}
	if dlg, ok := h.app.dialogs.Get(chatID); !ok {
		t.Fatal("после истечения ожидаем экран входа")
	} else if _, isLogin := dlg.(*auth.Login); !isLogin {
		t.Fatalf("dialog = %T", dlg)
	}
}

func TestLateUnauthorizedKeepsNewDialog(t *testing.T) {
	h := newHarness(t, "user", session.Credentials{Token: "tok", Role: "user"})
	h.text(1, "/courses")
	sess := h.app.sessions.Get(chatID)
	old := sess.Generation()

	h.text(2, "/logout")
	h.text(3, "/login")

	late := &apiclient.Error{Status: http.StatusUnauthorized}
	if !h.app.Observe(context.Background(), chatID, sess, old, late) {
		t.Fatal("401 распознаётся и для старого поколения")
	}
	if h.bot.contains("Сессия истекла") {
		t.Fatalf("опоздавший 401 не должен сообщать об истечении: %v", h.bot.texts())
	}
	if dlg, ok := h.app.dialogs.Get(chatID); !ok {
		t.Fatal("начатый вход не должен сбрасываться")
	} else if _, isLogin := dlg.(*auth.Login); !isLogin {
		t.Fatalf("dialog = %T", dlg)
	}
}

func TestForbiddenRoute(t *testing.T) {
	h := newHarness(t, "student", session.Credentials{Token: "tok"})
	h.text(1, "/admin")
	if !h.bot.contains("Недостаточно прав") {
		t.Fatalf("texts = %v", h.bot.texts())
	}
	if h.lms.hit("GET /admin/stats") != 0 {
		t.Fatal("статистику без прав не запрашиваем")
	}
}

func TestForbiddenAction(t *testing.T) {
	h := newHarness(t, "student", session.Credentials{Token: "tok"})
	h.press("act:publish:1")
	if !h.bot.contains("Недостаточно прав") {
		t.Fatalf("texts = %v", h.bot.texts())
	}
	if h.lms.hit("PUT /courses/1/publish") != 0 {
		t.Fatal("действие без прав не выполняется")
	}
}

func TestErrorOffersRetry(t *testing.T) {
	h := newHarness(t, "user", session.Credentials{Token: "tok"})
	h.press("nav:/courses/2")

	if !h.bot.contains("❌ db is down") {
		t.Fatalf("texts = %v", h.bot.texts())
	}
	mk, ok := h.bot.lastMarkup().(tgbotapi.InlineKeyboardMarkup)
	if !ok || len(mk.InlineKeyboard) != 1 || *mk.InlineKeyboard[0][0].CallbackData != "nav:/courses/2" {
		t.Fatalf("markup = %#v", h.bot.lastMarkup())
	}
	if h.app.sessions.Get(chatID).State() != session.Authenticated {
		t.Fatal("5xx не трогает сессию")
	}
}

func TestStaleViewDiscarded(t *testing.T) {
	h := newHarness(t, "user", session.Credentials{Token: "tok"})
	gate := make(chan struct{})
	h.lms.mu.Lock()
	h.lms.gate = gate
	h.lms.mu.Unlock()
	defer close(gate)

	// сессия восстанавливается заранее, чтобы медленный экран ждал только /courses/1
	h.app.sessions.Get(chatID).Ensure(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.press("nav:/courses/1")
	}()
	deadline := time.Now().Add(2 * time.Second)
	for h.lms.hit("GET /courses/1") == 0 {
		if time.Now().After(deadline) {
			t.Fatal("медленный запрос так и не начался")
		}
		time.Sleep(5 * time.Millisecond)
	}

	h.press("nav:/courses")
	<-done

	if h.bot.contains("Медленный курс") {
		t.Fatal("ответ устаревшего экрана должен отбрасываться")
	}
	if h.bot.contains("❌") {
		t.Fatalf("отмена устаревшего экрана — не ошибка: %v", h.bot.texts())
	}
	if !h.bot.contains("Основы Go") {
		t.Fatalf("texts = %v", h.bot.texts())
	}
}

func TestLogout(t *testing.T) {
	h := newHarness(t, "user", session.Credentials{Token: "tok", Role: "user"})
	h.text(1, "/dashboard")
	before := h.lms.hit("GET /profile")

	h.text(2, "🚪 Выйти")
	if got := h.creds(t); got.Token != "" {
		t.Fatalf("creds = %+v", got)
	}
	if h.lms.hit("GET /profile") != before {
		t.Fatal("выход не ходит на бэкенд")
	}
	if !h.bot.contains("Вы вышли") || !h.bot.contains("Вход") {
		t.Fatalf("texts = %v", h.bot.texts())
	}
}

func TestCancelDialog(t *testing.T) {
	h := newHarness(t, "user", session.Credentials{})
	h.text(1, "/register")
	if _, ok := h.app.dialogs.Get(chatID); !ok {
		t.Fatal("ожидали диалог регистрации")
	}
	h.press("act:cancel")
	if _, ok := h.app.dialogs.Get(chatID); ok {
		t.Fatal("диалог должен быть сброшен")
	}
	if !h.bot.contains("Отменено") {
		t.Fatalf("texts = %v", h.bot.texts())
	}
}

func TestViewTracker(t *testing.T) {
	vt := NewViewTracker()
	ctx1, gen1, done1 := vt.Begin(context.Background(), 1)
	ctx2, gen2, done2 := vt.Begin(context.Background(), 1)
	defer done2()

	if ctx1.Err() == nil {
		t.Fatal("новый экран отменяет предыдущий")
	}
	if vt.Current(1, gen1) || !vt.Current(1, gen2) {
		t.Fatal("текущим должен быть только последний экран")
	}
	done1()
	if ctx2.Err() != nil {
		t.Fatal("завершение старого экрана не трогает новый")
	}

	_, gen3, done3 := vt.Begin(context.Background(), 2)
	defer done3()
	vt.Cancel(1)
	if vt.Current(1, gen2) || !vt.Current(2, gen3) {
		t.Fatal("Cancel касается только своего чата")
	}
}
