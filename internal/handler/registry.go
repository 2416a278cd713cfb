package handler

import (
	"context"
	"sync"

	"github.com/sololeveling/internal/apiclient"
	"github.com/sololeveling/internal/dashboard"
	"github.com/sololeveling/internal/logger"
	"github.com/sololeveling/internal/middleware"
	"github.com/sololeveling/internal/session"
	"github.com/sololeveling/internal/storage"
)

// DefaultMaxBrowsers — сколько экранов держать в памяти одновременно.
const DefaultMaxBrowsers = 10000

// ClientFactory создаёт API-клиент, берущий токен из сессии конкретного браузера.
type ClientFactory func(tokens apiclient.TokenSource) dashboard.API

type registryEntry struct {
	once  sync.Once
	board *dashboard.Dashboard
}

// Registry держит экран (dashboard) на каждый браузер. Сессия браузера живёт в общем
// хранилище под префиксом browser:<id>:, поэтому вытеснение экрана из памяти
// или перезапуск сервера не разлогинивают пользователя.
type Registry struct {
	backend   storage.Store
	newClient ClientFactory
	max       int

	mu      sync.Mutex
	entries map[string]*registryEntry
}

func NewRegistry(backend storage.Store, newClient ClientFactory, maxBrowsers int) *Registry {
	if maxBrowsers <= 0 {
		maxBrowsers = DefaultMaxBrowsers
	}
	return &Registry{
		backend:   backend,
		newClient: newClient,
		max:       maxBrowsers,
		entries:   make(map[string]*registryEntry),
	}
}

// SessionPrefix — префикс ключей сессии браузера в хранилище.
func SessionPrefix(browserID string) string {
	return "browser:" + browserID + ":"
}

// Get возвращает экран браузера; при первом обращении восстанавливает сессию и список миссий.
func (g *Registry) Get(ctx context.Context, browserID string) *dashboard.Dashboard {
	g.mu.Lock()
	e, ok := g.entries[browserID]
	if !ok {
		if len(g.entries) >= g.max {
			for id := range g.entries {
				delete(g.entries, id)
				break
			}
		}
		sess := session.New(g.backend, session.WithPrefix(SessionPrefix(browserID)))
		e = &registryEntry{board: dashboard.New(g.newClient(sess), sess)}
		g.entries[browserID] = e
	}
	g.mu.Unlock()

	e.once.Do(func() {
		if err := e.board.Restore(context.WithoutCancel(ctx)); err != nil {
			logger.Errorf("restore session browser=%s: %v", middleware.MaskID(browserID), err)
		}
	})
	return e.board
}

// Len — число экранов в памяти.
func (g *Registry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.entries)
}
