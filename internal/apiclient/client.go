// Package apiclient вызывает API бэкенда: подставляет Bearer-токен текущей сессии,
// сериализует тело в JSON и приводит успех и ошибку к одному контракту.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sololeveling/internal/logger"
)

// DefaultBaseURL — адрес бэкенда прототипа (uvicorn по умолчанию).
const DefaultBaseURL = "http://127.0.0.1:8000"

// TokenSource отдаёт токен текущей сессии; пустая строка — запрос без Authorization.
type TokenSource interface {
	Token() string
}

// Client — один запрос на вызов: без повторов и без собственного таймаута.
// Отмена и дедлайн задаются только через ctx вызывающего.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	userAgent  string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New создаёт клиент. tokens может быть nil — тогда все запросы анонимные.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{},
		tokens:     tokens,
		userAgent:  "solo-client",
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL — адрес API без завершающего слэша.
func (c *Client) BaseURL() string { return c.baseURL }

// Request описывает один вызов API. Path всегда начинается с "/".
type Request struct {
	Method string
	Path   string
	// Body: nil — без тела; []byte и json.RawMessage уходят как есть; остальное — json.Marshal.
	Body any
	// Header дополняет и переопределяет заголовки по умолчанию. Authorization отсюда не берётся.
	Header http.Header
}

// DoRaw выполняет запрос. При 2xx возвращает тело, если это валидный JSON, иначе nil без ошибки.
// При статусе вне 2xx возвращает *RequestError.
func (c *Client) DoRaw(ctx context.Context, r Request) (json.RawMessage, error) {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}
	defer logger.DeferLogDuration("apiclient "+method+" "+r.Path, time.Now())()

	body, err := encodeBody(r.Body)
	if err != nil {
		return nil, fmt.Errorf("apiclient: encode %s %s: %w", method, r.Path, err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+r.Path, body)
	if err != nil {
		return nil, fmt.Errorf("apiclient: build %s %s: %w", method, r.Path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for k, vs := range r.Header {
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	// Authorization определяется только сессией: без токена заголовка нет.
	req.Header.Del("Authorization")
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("apiclient: %s %s: %w", method, r.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("apiclient: read %s %s: %w", method, r.Path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Debugf("apiclient %s %s -> %d", method, r.Path, resp.StatusCode)
		return nil, newRequestError(resp.StatusCode, data)
	}
	if len(bytes.TrimSpace(data)) == 0 || !json.Valid(data) {
		return nil, nil
	}
	return json.RawMessage(data), nil
}

// Do выполняет запрос и декодирует тело успешного ответа в out (если out != nil).
// Пустое или не-JSON тело при 2xx — не ошибка: out остаётся нетронутым.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	raw, err := c.DoRaw(ctx, Request{Method: method, Path: path, Body: body})
	if err != nil {
		return err
	}
	if raw == nil || out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("apiclient: decode %s: %w", path, err)
	}
	return nil
}

func encodeBody(body any) (io.Reader, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return bytes.NewReader(b), nil
	case []byte:
		return bytes.NewReader(b), nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, err
		}
		return bytes.NewReader(data), nil
	}
}
