// Package stubapi — поддельный бэкенд для тестов: заранее заданные ответы по "METHOD /path"
// и журнал всех входящих запросов.
package stubapi

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Recorded — входящий запрос, как его увидел сервер.
type Recorded struct {
	Method        string
	Path          string
	Authorization string
	ContentType   string
	Body          []byte
}

type response struct {
	status int
	body   string
}

type Server struct {
	URL string

	srv      *httptest.Server
	mu       sync.Mutex
	routes   map[string][]response
	requests []Recorded
}

// New запускает сервер и закрывает его по окончании теста.
// Незарегистрированный маршрут отвечает 404 с пустым телом.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{routes: make(map[string][]response)}
	s.srv = httptest.NewServer(http.HandlerFunc(s.serve))
	s.URL = s.srv.URL
	t.Cleanup(s.srv.Close)
	return s
}

// Handle задаёт ответ на METHOD path. Повторный вызов для того же маршрута ставит ответ в очередь:
// ответы отдаются по порядку, последний повторяется.
func (s *Server) Handle(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := method + " " + path
	s.routes[key] = append(s.routes[key], response{status: status, body: body})
}

// Reset забывает ответы для маршрута.
func (s *Server) Reset(method, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.routes, method+" "+path)
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	s.mu.Lock()
	s.requests = append(s.requests, Recorded{
		Method:        r.Method,
		Path:          r.URL.Path,
		Authorization: r.Header.Get("Authorization"),
		ContentType:   r.Header.Get("Content-Type"),
		Body:          body,
	})
	key := r.Method + " " + r.URL.Path
	queue := s.routes[key]
	var resp response
	found := len(queue) > 0
	if found {
		resp = queue[0]
		if len(queue) > 1 {
			s.routes[key] = queue[1:]
		}
	}
	s.mu.Unlock()

	if !found {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if resp.body != "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(resp.status)
	io.WriteString(w, resp.body)
}

// Requests возвращает копию журнала запросов.
func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Recorded, len(s.requests))
	copy(out, s.requests)
	return out
}

// Last возвращает последний запрос на METHOD path.
func (s *Server) Last(method, path string) (Recorded, bool) {
	reqs := s.Requests()
	for i := len(reqs) - 1; i >= 0; i-- {
		if reqs[i].Method == method && reqs[i].Path == path {
			return reqs[i], true
		}
	}
	return Recorded{}, false
}

// Count — сколько раз вызывался METHOD path.
func (s *Server) Count(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// Token выпускает HS256 JWT с sub и exp, как это делает бэкенд прототипа.
func Token(t testing.TB, sub string, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sub,
		IssuedAt:  jwt.NewNumericDate(exp.Add(-7 * 24 * time.Hour)),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}
