package middleware

import "strings"

// MaskID маскирует id браузера или токен в логах (в prod не светить полное значение).
func MaskID(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + "***"
}
