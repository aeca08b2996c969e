package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(t *testing.T, h http.HandlerFunc, tok string) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Options{BaseURL: srv.URL, Timeout: 2 * time.Second}, TokenFunc(func() string { return tok }))
}

func TestDo_AttachesHeadersAndDecodes(t *testing.T) {
	var gotAuth, gotCT, gotRID, gotQuery, gotBody string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotCT = r.Header.Get("Content-Type")
		gotRID = r.Header.Get("X-Request-ID")
		gotQuery = r.URL.RawQuery
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		_, _ = w.Write([]byte(`{"id":5,"title":"Go"}`))
	}, "tok-1")

	var out struct {
		ID    int64  `json:"id"`
		Title string `json:"title"`
	}
	params := url.Values{"status": {"draft"}}
	err := c.Do(context.Background(), http.MethodPost, "/courses", map[string]string{"title": "Go"}, params, &out)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if gotAuth != "Bearer tok-1" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	if gotCT != "application/json" {
		t.Fatalf("Content-Type = %q", gotCT)
	}
	if gotRID == "" {
		t.Fatal("ожидали X-Request-ID")
	}
	if gotQuery != "status=draft" {
		t.Fatalf("query = %q", gotQuery)
	}
	if gotBody != `{"title":"Go"}` {
		t.Fatalf("body = %q", gotBody)
	}
	if out.ID != 5 || out.Title != "Go" {
		t.Fatalf("out = %+v", out)
	}
}

func TestDo_NoTokenNoHeader(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}, "")

	if err := c.Do(context.Background(), http.MethodGet, "/courses", nil, nil, nil); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if gotAuth != "" {
		t.Fatalf("Authorization не должен отправляться без токена, получили %q", gotAuth)
	}
}

func TestDo_UnauthorizedIsTyped(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Could not validate credentials"}`))
	}, "expired")

	err := c.Do(context.Background(), http.MethodGet, "/profile", nil, nil, nil)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("ожидали ErrUnauthorized, получили %v", err)
	}
	if msg := Message(err, "Ошибка"); msg != "Could not validate credentials" {
		t.Fatalf("Message = %q", msg)
	}
}

func TestDo_ErrorDetailShapes(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"string", 400, `{"detail":"bad password"}`, "bad password"},
		{"array", 422, `{"detail":[{"msg":"too short","loc":["body","title"]},{"msg":"required"}]}`, "too short, required"},
		{"object", 400, `{"detail":{"code":5}}`, `{"code":5}`},
		{"absent", 500, `{}`, "Ошибка"},
		{"not_json", 502, `Bad Gateway`, "Ошибка"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}, "t")
			err := c.Do(context.Background(), http.MethodGet, "/x", nil, nil, nil)
			var apiErr *Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("ожидали *Error, получили %T %v", err, err)
			}
			if apiErr.StatusCode() != tc.status {
				t.Fatalf("status = %d", apiErr.StatusCode())
			}
			if errors.Is(err, ErrUnauthorized) {
				t.Fatal("не-401 не должен быть ErrUnauthorized")
			}
			if got := Message(err, "Ошибка"); got != tc.want {
				t.Fatalf("Message = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDo_SingleAttempt(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}, "t")

	_ = c.Do(context.Background(), http.MethodGet, "/courses", nil, nil, nil)
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("ожидали ровно одну попытку, было %d", n)
	}
}

func TestDo_NetworkErrorHasNoDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	c := New(Options{BaseURL: base, Timeout: time.Second}, nil)
	err := c.Do(context.Background(), http.MethodGet, "/courses", nil, nil, nil)
	if err == nil {
		t.Fatal("ожидали сетевую ошибку")
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		t.Fatal("сетевая ошибка не должна быть *Error")
	}
	if got := Message(err, "Ошибка сети"); got != "Ошибка сети" {
		t.Fatalf("Message = %q", got)
	}
}

func TestDo_DecodeError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}, "t")
	var out map[string]any
	if err := c.Do(context.Background(), http.MethodGet, "/x", nil, nil, &out); err == nil {
		t.Fatal("ожидали ошибку декодирования")
	}
}

func TestDo_RespectsContextCancel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}, "t")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.Do(ctx, http.MethodGet, "/slow", nil, nil, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("ожидали context.Canceled, получили %v", err)
	}
}

func TestWithTokens_SharesTransport(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}, "first")
	other := c.WithTokens(TokenFunc(func() string { return "second" }))

	if err := other.Do(context.Background(), http.MethodGet, "/profile", nil, nil, nil); err != nil {
		t.Fatal(err)
	}
	if gotAuth != "Bearer second" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	if err := c.WithTokens(nil).Do(context.Background(), http.MethodGet, "/health", nil, nil, nil); err != nil {
		t.Fatal(err)
	}
	if gotAuth != "" {
		t.Fatalf("без источника токена заголовка нет, получили %q", gotAuth)
	}
}

func TestDetailMessage(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"string", `"bad password"`, "bad password"},
		{"array", `[{"msg":"too short"},{"msg":"required"}]`, "too short, required"},
		{"array_without_msg", `[{"loc":["x"]}]`, "fallback"},
		{"array_mixed", `[{"msg":"a"},"junk",{"msg":""},{"msg":"b"}]`, "a, b"},
		{"object", `{"code":5}`, `{"code":5}`},
		{"object_spaces", "{ \"code\" : 5 }", `{"code":5}`},
		{"empty_string", `""`, "fallback"},
		{"null", `null`, "fallback"},
		{"absent", ``, "fallback"},
		{"number", `42`, "42"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DetailMessage(json.RawMessage(tc.raw), "fallback"); got != tc.want {
				t.Fatalf("DetailMessage(%s) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}
