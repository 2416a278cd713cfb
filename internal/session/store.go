// Package session хранит пару (токен, user_id) в памяти и в долговременном хранилище,
// чтобы перезапуск клиента не требовал повторного входа.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sololeveling/internal/logger"
	"github.com/sololeveling/internal/model"
	"github.com/sololeveling/internal/storage"
)

// Имена ключей те же, что у браузерного клиента в localStorage.
const (
	TokenKey  = "solo_token"
	UserIDKey = "solo_user_id"
)

// ErrIncompleteSession — попытка сохранить сессию без токена или без user_id.
var ErrIncompleteSession = errors.New("session: token and user id are both required")

// Option настраивает Store.
type Option func(*Store)

// WithPrefix добавляет префикс к обоим ключам (веб-клиент: отдельная сессия на браузер).
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.tokenKey = prefix + TokenKey
		s.userIDKey = prefix + UserIDKey
	}
}

// Store — единственный источник правды о том, вошёл ли пользователь.
// Пишется только из Set и Clear; чтения идут из памяти.
type Store struct {
	backend   storage.Store
	tokenKey  string
	userIDKey string

	mu  sync.RWMutex
	cur model.Session
}

func New(backend storage.Store, opts ...Option) *Store {
	s := &Store{backend: backend, tokenKey: TokenKey, userIDKey: UserIDKey}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Restore читает сессию из хранилища. Отсутствие любого из ключей даёт пустую сессию без ошибки.
func (s *Store) Restore(ctx context.Context) (model.Session, error) {
	token, okToken, err := s.backend.Get(ctx, s.tokenKey)
	if err != nil {
		s.reset()
		return model.Session{}, fmt.Errorf("session restore: %w", err)
	}
	userID, okUser, err := s.backend.Get(ctx, s.userIDKey)
	if err != nil {
		s.reset()
		return model.Session{}, fmt.Errorf("session restore: %w", err)
	}
	restored := model.Session{}
	if okToken && okUser {
		restored = model.Session{Token: token, UserID: userID}
	}
	if restored.Empty() {
		if okToken != okUser {
			logger.Debugf("session restore: incomplete pair (token=%v user=%v), treating as logged out", okToken, okUser)
		}
		restored = model.Session{}
	}
	s.mu.Lock()
	s.cur = restored
	s.mu.Unlock()
	return restored, nil
}

// Set сохраняет обе части сессии одной операцией хранилища, затем обновляет память.
// При ошибке хранилища состояние в памяти не меняется.
func (s *Store) Set(ctx context.Context, token, userID string) error {
	if token == "" || userID == "" {
		return ErrIncompleteSession
	}
	if err := s.backend.SetMany(ctx, map[string]string{
		s.tokenKey:  token,
		s.userIDKey: userID,
	}); err != nil {
		return fmt.Errorf("session set: %w", err)
	}
	s.mu.Lock()
	s.cur = model.Session{Token: token, UserID: userID}
	s.mu.Unlock()
	return nil
}

// Clear удаляет сессию из хранилища, затем из памяти (logout). Повторный вызов — не ошибка.
// При ошибке хранилища сессия в памяти остаётся: она совпадает с тем, что вернёт Restore.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.backend.Delete(ctx, s.tokenKey, s.userIDKey); err != nil {
		return fmt.Errorf("session clear: %w", err)
	}
	s.reset()
	return nil
}

func (s *Store) reset() {
	s.mu.Lock()
	s.cur = model.Session{}
	s.mu.Unlock()
}

// Current возвращает копию текущей сессии.
func (s *Store) Current() model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// Token возвращает текущий токен или "" (реализует apiclient.TokenSource).
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.Token
}

func (s *Store) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.UserID
}

func (s *Store) Authenticated() bool {
	return !s.Current().Empty()
}
