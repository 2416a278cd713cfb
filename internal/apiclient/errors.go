package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// RequestError — ответ API со статусом вне 2xx.
// Message — текст тела ответа как есть либо "Request failed with status N", если тело пустое.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

func newRequestError(status int, body []byte) *RequestError {
	msg := string(body)
	if len(body) == 0 {
		msg = fmt.Sprintf("Request failed with status %d", status)
	}
	return &RequestError{Status: status, Message: msg}
}

// StatusOf возвращает HTTP-статус из RequestError в цепочке err, иначе 0.
func StatusOf(err error) int {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Status
	}
	return 0
}

// IsUnauthorized — сервер отклонил токен (401/403): сессию имеет смысл сбросить.
func IsUnauthorized(err error) bool {
	s := StatusOf(err)
	return s == http.StatusUnauthorized || s == http.StatusForbidden
}
