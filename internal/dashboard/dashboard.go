// Package dashboard держит состояние экрана клиента: режим формы, текст ошибки,
// флаг загрузки и последний полученный список миссий. Рендеринг — в handler и CLI.
package dashboard

import (
	"context"
	"errors"
	"sync"

	"github.com/sololeveling/internal/logger"
	"github.com/sololeveling/internal/model"
)

// Mode — какая форма показана: регистрация или вход.
type Mode string

const (
	ModeSignup Mode = "signup"
	ModeLogin  Mode = "login"
)

// ErrBusy — генерация миссий уже выполняется; повторный запуск отклоняется.
var ErrBusy = errors.New("dashboard: request already in flight")

// Тексты ошибок, если у ошибки нет собственного сообщения.
const (
	msgSignupFailed   = "Signup failed"
	msgLoginFailed    = "Login failed"
	msgGenerateFailed = "Failed to generate missions"
	msgLogoutFailed   = "Logout failed"
)

// API — операции бэкенда, которые нужны экрану (реализует *apiclient.Client).
type API interface {
	Signup(ctx context.Context, req model.SignupRequest) (*model.AuthResponse, error)
	Login(ctx context.Context, email, password string) (*model.AuthResponse, error)
	GenerateMissions(ctx context.Context) error
	GetMissions(ctx context.Context) ([]model.Mission, error)
}

// Sessions — хранилище сессии (реализует *session.Store).
type Sessions interface {
	Restore(ctx context.Context) (model.Session, error)
	Set(ctx context.Context, token, userID string) error
	Clear(ctx context.Context) error
	Current() model.Session
}

// State — снимок состояния для отрисовки.
type State struct {
	Mode     Mode            `json:"mode"`
	Session  model.Session   `json:"-"`
	UserID   string          `json:"user_id,omitempty"`
	LoggedIn bool            `json:"logged_in"`
	Error    string          `json:"error,omitempty"`
	Busy     bool            `json:"busy"`
	Missions []model.Mission `json:"missions"`
	TotalXP  int             `json:"total_xp"`
}

// Dashboard — обработчики действий пользователя. Сетевые вызовы идут без удержания мьютекса:
// если два обновления списка пересекаются, побеждает завершившееся последним.
type Dashboard struct {
	api      API
	sessions Sessions

	mu       sync.Mutex
	mode     Mode
	errMsg   string
	busy     bool
	missions []model.Mission
}

func New(api API, sessions Sessions) *Dashboard {
	return &Dashboard{api: api, sessions: sessions, mode: ModeSignup, missions: []model.Mission{}}
}

// Restore поднимает сессию из хранилища и, если пользователь вошёл, сразу загружает миссии.
// Ошибка этой загрузки игнорируется: список остаётся пустым до следующего обновления.
func (d *Dashboard) Restore(ctx context.Context) error {
	sess, err := d.sessions.Restore(ctx)
	if err != nil {
		return err
	}
	if !sess.Empty() {
		d.loadQuietly(ctx)
	}
	return nil
}

// Signup регистрирует пользователя и сохраняет сессию. При ошибке сессия не меняется.
func (d *Dashboard) Signup(ctx context.Context, req model.SignupRequest) error {
	d.setError("")
	resp, err := d.api.Signup(ctx, req)
	if err == nil {
		err = d.sessions.Set(ctx, resp.Token, resp.UserID)
	}
	if err != nil {
		d.setError(messageOr(err, msgSignupFailed))
		return err
	}
	logger.Infof("signup ok user=%s", resp.UserID)
	d.loadQuietly(ctx)
	return nil
}

// Login входит по email и паролю и сохраняет сессию.
func (d *Dashboard) Login(ctx context.Context, email, password string) error {
	d.setError("")
	resp, err := d.api.Login(ctx, email, password)
	if err == nil {
		err = d.sessions.Set(ctx, resp.Token, resp.UserID)
	}
	if err != nil {
		d.setError(messageOr(err, msgLoginFailed))
		return err
	}
	logger.Infof("login ok user=%s", resp.UserID)
	d.loadQuietly(ctx)
	return nil
}

// Logout очищает сессию и список миссий. Если хранилище не удалось очистить,
// пользователь остаётся в системе и видит ошибку.
func (d *Dashboard) Logout(ctx context.Context) error {
	if err := d.sessions.Clear(ctx); err != nil {
		d.setError(messageOr(err, msgLogoutFailed))
		return err
	}
	d.mu.Lock()
	d.missions = []model.Mission{}
	d.errMsg = ""
	d.mu.Unlock()
	return nil
}

// GenerateMissions создаёт миссии на сервере и перечитывает список.
// При ошибке прежний список сохраняется, текст ошибки попадает в State.Error.
func (d *Dashboard) GenerateMissions(ctx context.Context) error {
	d.mu.Lock()
	if d.busy {
		d.mu.Unlock()
		return ErrBusy
	}
	d.busy = true
	d.errMsg = ""
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.busy = false
		d.mu.Unlock()
	}()

	err := d.api.GenerateMissions(ctx)
	var missions []model.Mission
	if err == nil {
		missions, err = d.api.GetMissions(ctx)
	}
	if err != nil {
		d.setError(messageOr(err, msgGenerateFailed))
		return err
	}
	d.setMissions(missions)
	return nil
}

// Refresh перечитывает список миссий. Ошибка возвращается, прежний список не трогается.
func (d *Dashboard) Refresh(ctx context.Context) error {
	missions, err := d.api.GetMissions(ctx)
	if err != nil {
		return err
	}
	d.setMissions(missions)
	return nil
}

// SetError показывает сообщение об ошибке, найденной до обращения к API (например, неверное число в форме).
func (d *Dashboard) SetError(msg string) {
	d.setError(msg)
}

// SetMode переключает форму; неизвестное значение игнорируется.
func (d *Dashboard) SetMode(m Mode) {
	if m != ModeSignup && m != ModeLogin {
		return
	}
	d.mu.Lock()
	d.mode = m
	d.mu.Unlock()
}

// Snapshot возвращает копию состояния.
func (d *Dashboard) Snapshot() State {
	sess := d.sessions.Current()
	d.mu.Lock()
	defer d.mu.Unlock()
	missions := make([]model.Mission, len(d.missions))
	copy(missions, d.missions)
	return State{
		Mode:     d.mode,
		Session:  sess,
		UserID:   sess.UserID,
		LoggedIn: !sess.Empty(),
		Error:    d.errMsg,
		Busy:     d.busy,
		Missions: missions,
		TotalXP:  model.TotalXP(missions),
	}
}

func (d *Dashboard) loadQuietly(ctx context.Context) {
	if err := d.Refresh(ctx); err != nil {
		logger.Debugf("initial missions load ignored: %v", err)
	}
}

func (d *Dashboard) setError(msg string) {
	d.mu.Lock()
	d.errMsg = msg
	d.mu.Unlock()
}

func (d *Dashboard) setMissions(missions []model.Mission) {
	if missions == nil {
		missions = []model.Mission{}
	}
	d.mu.Lock()
	d.missions = missions
	d.mu.Unlock()
}

func messageOr(err error, fallback string) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
