// Package logger предоставляет логирование с префиксом процесса (cli, web) и асинхронной записью,
// чтобы ожидание ответа API и рендеринг страниц не блокировались на выводе.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

const asyncBufferSize = 4096

var (
	mu       sync.RWMutex
	prefix   string
	logLevel = levelInfo
	out      = log.New(os.Stderr, "", log.LstdFlags)
	ch       chan string
	once     sync.Once
)

type level int

const (
	levelDebug level = iota
	levelInfo
	levelQuiet
)

func parseLevel(s string) level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "trace":
		return levelDebug
	case "quiet", "off", "none":
		return levelQuiet
	default:
		return levelInfo
	}
}

func initWorker() {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		SetLevel(v)
	}
	ch = make(chan string, asyncBufferSize)
	go func() {
		for msg := range ch {
			mu.RLock()
			l := out
			mu.RUnlock()
			l.Print(msg)
		}
	}()
}

func enqueue(msg string) {
	once.Do(initWorker)
	select {
	case ch <- msg:
	default:
		// Буфер полон — не блокируем вызывающего, сообщение теряется
	}
}

func current() level {
	mu.RLock()
	defer mu.RUnlock()
	return logLevel
}

// SetPrefix задаёт префикс для всех последующих логов (например "web", "cli").
func SetPrefix(p string) {
	mu.Lock()
	prefix = p
	mu.Unlock()
}

// SetLevel переключает уровень: debug, info или quiet (CLI по умолчанию не шумит в stderr).
func SetLevel(s string) {
	mu.Lock()
	logLevel = parseLevel(s)
	mu.Unlock()
}

// SetOutput перенаправляет вывод (тесты, файл лога).
func SetOutput(w io.Writer) {
	mu.Lock()
	out = log.New(w, "", log.LstdFlags)
	mu.Unlock()
}

func tag() string {
	mu.RLock()
	defer mu.RUnlock()
	if prefix == "" {
		return ""
	}
	return "[" + prefix + "] "
}

// Info пишет в log с префиксом (асинхронно).
func Info(v ...any) {
	if current() > levelInfo {
		return
	}
	enqueue(tag() + fmt.Sprint(v...))
}

// Infof форматирует и пишет с префиксом (асинхронно).
func Infof(format string, v ...any) {
	if current() > levelInfo {
		return
	}
	enqueue(tag() + fmt.Sprintf(format, v...))
}

// Debugf пишет только при LOG_LEVEL=debug.
func Debugf(format string, v ...any) {
	if current() != levelDebug {
		return
	}
	enqueue(tag() + "DEBUG: " + fmt.Sprintf(format, v...))
}

// Error пишет ошибку с префиксом (асинхронно). Ошибки пишутся на любом уровне.
func Error(v ...any) {
	enqueue(tag() + "ERROR: " + fmt.Sprint(v...))
}

// Errorf форматирует ошибку с префиксом (асинхронно).
func Errorf(format string, v ...any) {
	enqueue(tag() + "ERROR: " + fmt.Sprintf(format, v...))
}

// LogDuration логирует имя операции и время выполнения в миллисекундах.
// При info логирует только вызовы дольше 500ms (медленный API); при debug — все.
func LogDuration(fn string, start time.Time) {
	elapsed := time.Since(start)
	lvl := current()
	if lvl == levelDebug || (lvl == levelInfo && elapsed >= 500*time.Millisecond) {
		enqueue(fmt.Sprintf("%sfn=%s duration_ms=%d", tag(), fn, elapsed.Milliseconds()))
	}
}

// DeferLogDuration возвращает функцию для вызова в defer: defer logger.DeferLogDuration("apiclient.Login", time.Now())().
func DeferLogDuration(fn string, start time.Time) func() {
	return func() { LogDuration(fn, start) }
}
