package apiclient

import (
	"context"
	"net/http"

	"github.com/sololeveling/internal/model"
)

// Пути API бэкенда.
const (
	PathSignup           = "/auth/signup"
	PathLogin            = "/auth/login"
	PathGenerateMissions = "/missions/generate"
	PathMissions         = "/missions"
	PathHealth           = "/health"
)

// Signup регистрирует пользователя. Ожидаемый ответ: {status, user_id, token}.
func (c *Client) Signup(ctx context.Context, req model.SignupRequest) (*model.AuthResponse, error) {
	var resp model.AuthResponse
	if err := c.Do(ctx, http.MethodPost, PathSignup, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login обменивает email и пароль на токен.
func (c *Client) Login(ctx context.Context, email, password string) (*model.AuthResponse, error) {
	var resp model.AuthResponse
	if err := c.Do(ctx, http.MethodPost, PathLogin, model.LoginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GenerateMissions просит сервер создать миссии для пользователя текущей сессии.
// Тело ответа не используется.
func (c *Client) GenerateMissions(ctx context.Context) error {
	return c.Do(ctx, http.MethodPost, PathGenerateMissions, nil, nil)
}

// GetMissions возвращает миссии в порядке сервера. Пустой ответ — пустой список.
func (c *Client) GetMissions(ctx context.Context) ([]model.Mission, error) {
	var missions []model.Mission
	if err := c.Do(ctx, http.MethodGet, PathMissions, nil, &missions); err != nil {
		return nil, err
	}
	if missions == nil {
		missions = []model.Mission{}
	}
	return missions, nil
}

// Health проверяет, что бэкенд отвечает.
func (c *Client) Health(ctx context.Context) error {
	return c.Do(ctx, http.MethodGet, PathHealth, nil, nil)
}
