// CLI-клиент: регистрация, вход и миссии из терминала. Сессия хранится в ~/.solo/session.json.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/sololeveling/internal/apiclient"
	"github.com/sololeveling/internal/config"
	"github.com/sololeveling/internal/logger"
)

func main() {
	logger.SetPrefix("cli")
	if os.Getenv("LOG_LEVEL") == "" {
		logger.SetLevel("quiet")
	}
	if err := newRootCmd().Execute(); err != nil {
		config.Exitf("Error: %s", describe(err))
	}
}

// describe — текст ошибки для пользователя: у ответа API это тело ответа как есть.
// Если сервер отклонил сохранённый токен, добавляется подсказка войти заново.
func describe(err error) string {
	msg := err.Error()
	var re *apiclient.RequestError
	if errors.As(err, &re) {
		msg = fmt.Sprintf("%s (HTTP %d)", re.Message, re.Status)
	}
	var stale *staleSessionError
	if errors.As(err, &stale) {
		msg += "\nSession expired or revoked: run `solo login` again"
	}
	return msg
}
