package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Spok95/lms-bot/internal/ctxutil"
	"github.com/Spok95/lms-bot/internal/logging"
	"github.com/Spok95/lms-bot/internal/metrics"
)

const maxBody = 4 << 20

// TokenSource отдаёт текущий токен сессии; пустая строка — без авторизации.
type TokenSource interface {
	Token() string
}

type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// Doer — то, что нужно фасадам: один вызов REST.
type Doer interface {
	Do(ctx context.Context, method, path string, body any, params url.Values, out any) error
}

type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     *zap.Logger
}

type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	log     *zap.Logger
	tokens  TokenSource
}

func New(opts Options, tokens TokenSource) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: opts.BaseURL,
		http:    hc,
		timeout: opts.Timeout,
		log:     log,
		tokens:  tokens,
	}
}

// WithTokens — копия клиента с тем же транспортом, но другим источником токена.
func (c *Client) WithTokens(tokens TokenSource) *Client {
	cp := *c
	cp.tokens = tokens
	return &cp
}

// Do выполняет ровно одну попытку запроса. 2xx-ответ декодируется в out (если out != nil).
func (c *Client) Do(ctx context.Context, method, path string, body any, params url.Values, out any) error {
	ctx, cancel := ctxutil.WithAPITimeout(ctx, c.timeout)
	defer cancel()

	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s %s: encode body: %w", method, path, err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, rdr)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	rid, ok := ctxutil.RequestID(ctx)
	if !ok {
		rid = uuid.NewString()
	}
	req.Header.Set("X-Request-ID", rid)
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	log := logging.FromContext(ctxutil.WithRequestID(ctx, rid), c.log)
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveAPI(method, 0, time.Since(start))
		log.Debug("api request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	metrics.ObserveAPI(method, resp.StatusCode, time.Since(start))

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}
	log.Debug("api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
	)

	if resp.StatusCode/100 != 2 {
		return newError(method, path, resp.StatusCode, data)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: decode: %w", method, path, err)
	}
	return nil
}
