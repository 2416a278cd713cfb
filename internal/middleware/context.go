package middleware

import "context"

type contextKey string

const BrowserIDKey contextKey = "browser_id"

// GetBrowserID возвращает id браузера из контекста (устанавливается BrowserSession).
func GetBrowserID(ctx context.Context) string {
	v, _ := ctx.Value(BrowserIDKey).(string)
	return v
}

// WithBrowserID кладёт id браузера в контекст (тесты handler без cookie).
func WithBrowserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, BrowserIDKey, id)
}
