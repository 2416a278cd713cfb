package session

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sololeveling/internal/model"
)

// ParseClaims читает sub/iat/exp из JWT без проверки подписи. Только для отображения
// (whoami, срок действия на странице), не для решений о доступе.
func ParseClaims(token string) (model.TokenClaims, error) {
	var rc jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &rc); err != nil {
		return model.TokenClaims{}, fmt.Errorf("parse token claims: %w", err)
	}
	c := model.TokenClaims{Subject: rc.Subject}
	if rc.IssuedAt != nil {
		t := rc.IssuedAt.Time
		c.IssuedAt = &t
	}
	if rc.ExpiresAt != nil {
		t := rc.ExpiresAt.Time
		c.ExpiresAt = &t
	}
	return c, nil
}
