package model

import "time"

// Session — пара (токен, user_id) аутентифицированного клиента.
// Оба поля заполняются вместе после signup/login и очищаются вместе при logout.
type Session struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

// Empty — сессия без токена или без пользователя считается пустой.
func (s Session) Empty() bool {
	return s.Token == "" || s.UserID == ""
}

// TokenClaims — поля JWT, которые клиент показывает пользователю (подпись не проверяется).
type TokenClaims struct {
	Subject   string     `json:"sub"`
	IssuedAt  *time.Time `json:"iat,omitempty"`
	ExpiresAt *time.Time `json:"exp,omitempty"`
}

// Expired сообщает, истёк ли токен на момент now. Токен без exp не истекает.
func (c TokenClaims) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !now.Before(*c.ExpiresAt)
}
