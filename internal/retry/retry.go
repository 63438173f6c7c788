// Package retry cung cấp cơ chế retry với exponential backoff cho các lời gọi vendor.
package retry

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
)

// Config chứa cấu hình chiến lược retry
type Config struct {
	MaxAttempts       int           // Tổng số lần thử (bao gồm lần đầu tiên)
	InitialBackoff    time.Duration // Thời gian chờ trước lần thử thứ hai
	MaxBackoff        time.Duration // Trần thời gian chờ
	BackoffMultiplier float64       // Hệ số nhân backoff giữa các lần thử
}

// DefaultConfig trả về cấu hình mặc định cho lời gọi vendor:
// 3 lần thử, chờ 1s rồi 2s giữa các lần.
func DefaultConfig() *Config {
	return &Config{
		MaxAttempts:       3,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// Retryable là một function có thể được retry
type Retryable[T any] func(ctx context.Context) (T, error)

// Do thực thi một retryable function với exponential backoff.
//
// isRetryable quyết định lỗi nào được retry: lỗi không retryable được trả về
// ngay lập tức, không chờ backoff. isRetryable nil nghĩa là mọi lỗi đều retryable.
// Khi hết số lần thử, lỗi cuối cùng được trả về.
func Do[T any](ctx context.Context, cfg *Config, log *logrus.Logger, op string, isRetryable func(error) bool, fn Retryable[T]) (T, error) {
	var zero T
	var lastErr error

	if cfg == nil {
		cfg = DefaultConfig()
	}

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}

		lastErr = err

		// Lỗi không retryable (4xx khác 429, lỗi nghiệp vụ) trả về ngay
		if isRetryable != nil && !isRetryable(err) {
			return zero, err
		}

		if attempt < cfg.MaxAttempts {
			backoff := calculateBackoff(attempt-1, cfg)
			if log != nil {
				log.WithFields(logrus.Fields{
					"operation":    op,
					"attempt":      attempt,
					"max_attempts": cfg.MaxAttempts,
					"backoff":      backoff.String(),
					"error":        err.Error(),
				}).Warn("operation failed, retrying")
			}

			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	return zero, fmt.Errorf("operation '%s' failed after %d attempts: %w", op, cfg.MaxAttempts, lastErr)
}

// calculateBackoff trả về thời gian exponential backoff cho lần thử thứ attemptNum
func calculateBackoff(attemptNum int, cfg *Config) time.Duration {
	backoff := time.Duration(float64(cfg.InitialBackoff) * math.Pow(cfg.BackoffMultiplier, float64(attemptNum)))
	if backoff > cfg.MaxBackoff {
		backoff = cfg.MaxBackoff
	}
	return backoff
}
