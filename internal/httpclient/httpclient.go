// Package httpclient собирает HTTP-клиент с повторами (go-retryablehttp) для
// исходящих вызовов: скачивание файлов Telegram и индексация в search-service.
package httpclient

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// LeveledSlog адаптирует slog к retryablehttp.LeveledLogger.
type LeveledSlog struct {
	inner *slog.Logger
}

// Error пишется как WARN: промежуточные ошибки повторяются.
func (l LeveledSlog) Error(msg string, keysAndValues ...any) {
	l.inner.Warn(msg, keysAndValues...)
}

func (l LeveledSlog) Warn(msg string, keysAndValues ...any) {
	l.inner.Warn(msg, keysAndValues...)
}

func (l LeveledSlog) Info(msg string, keysAndValues ...any) {
	l.inner.Info(msg, keysAndValues...)
}

func (l LeveledSlog) Debug(msg string, keysAndValues ...any) {
	l.inner.Debug(msg, keysAndValues...)
}

type Option func(*retryablehttp.Client)

func WithMaxRetries(n int) Option {
	return func(c *retryablehttp.Client) {
		c.RetryMax = n
	}
}

func WithRetryWait(minWait, maxWait time.Duration) Option {
	return func(c *retryablehttp.Client) {
		c.RetryWaitMin = minWait
		c.RetryWaitMax = maxWait
	}
}

// New возвращает клиент с ретраями. 429 не повторяется: как ждать, решает вызывающий.
func New(log *slog.Logger, opts ...Option) *retryablehttp.Client {
	if log == nil {
		log = slog.Default()
	}
	c := retryablehttp.NewClient()
	c.RetryMax = 3
	c.RetryWaitMin = 500 * time.Millisecond
	c.RetryWaitMax = 5 * time.Second
	c.Logger = retryablehttp.LeveledLogger(LeveledSlog{inner: log.With("component", "httpclient")})
	c.CheckRetry = RetryPolicy
	c.HTTPClient.Timeout = 30 * time.Second
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewStandard — New, обёрнутый в обычный *http.Client.
func NewStandard(log *slog.Logger, opts ...Option) *http.Client {
	return New(log, opts...).StandardClient()
}

func RetryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if err == nil && resp.StatusCode == http.StatusTooManyRequests {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}
