package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/sololeveling/internal/logger"
)

// BrowserCookie — имя cookie с id браузера; по нему веб-клиент находит сессию в хранилище.
const BrowserCookie = "solo_browser"

const browserCookieMaxAge = 30 * 24 * time.Hour

// BrowserSession выдаёт каждому браузеру постоянный uuid в cookie и кладёт его в контекст.
// Cookie с невалидным значением перевыпускается.
func BrowserSession(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(BrowserCookie); err == nil {
				if parsed, err := uuid.Parse(c.Value); err == nil {
					id = parsed.String()
				}
			}
			if id == "" {
				id = uuid.New().String()
				logger.Debugf("new browser session %s", MaskID(id))
			}
			http.SetCookie(w, &http.Cookie{
				Name:     BrowserCookie,
				Value:    id,
				Path:     "/",
				MaxAge:   int(browserCookieMaxAge.Seconds()),
				HttpOnly: true,
				Secure:   secure,
				SameSite: http.SameSiteLaxMode,
			})
			ctx := context.WithValue(r.Context(), BrowserIDKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
