package startup

import (
	"context"
	"fmt"
	"time"

	"github.com/sololeveling/internal/logger"
	redisstorage "github.com/sololeveling/internal/storage/redis"
)

// ConnectRedisWithRetry подключается к Redis с повторами до истечения maxWait.
// logPrefix добавляется к сообщениям лога (например "web: ").
func ConnectRedisWithRetry(ctx context.Context, redisURL, keyPrefix string, maxWait time.Duration, logPrefix string) (*redisstorage.Client, error) {
	deadline := time.Now().Add(maxWait)
	backoff := 2 * time.Second
	for {
		connCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		client, err := redisstorage.New(connCtx, redisURL, keyPrefix)
		cancel()
		if err == nil {
			return client, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%sredis (gave up after %v): %w", logPrefix, maxWait, err)
		}
		logger.Errorf("%sredis connect failed, retry in %v: %v", logPrefix, backoff, err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}
