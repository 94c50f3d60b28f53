package market

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"time"
)

// RetryConfig는 재시도 설정을 정의합니다
type RetryConfig struct {
	MaxRetries int           // 최대 재시도 횟수
	BaseDelay  time.Duration // 기본 대기 시간
	MaxDelay   time.Duration // 최대 대기 시간
	Factor     float64       // 대기 시간 증가 계수
}

// DefaultRetryConfig는 기본 재시도 설정입니다
var DefaultRetryConfig = RetryConfig{
	MaxRetries: 3,
	BaseDelay:  1 * time.Second,
	MaxDelay:   30 * time.Second,
	Factor:     2.0,
}

// temporary는 재시도 가능 여부를 스스로 알려주는 에러입니다
type temporary interface {
	Temporary() bool
}

// IsRetryableError는 재시도로 해결될 수 있는 에러인지 판단합니다
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var t temporary
	if errors.As(err, &t) {
		return t.Temporary()
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

// withRetry는 재시도 가능한 에러에 대해 지수 백오프로 fn을 다시 실행합니다
func withRetry(ctx context.Context, cfg RetryConfig, operation string, fn func() error) error {
	var lastErr error
	delay := cfg.BaseDelay

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !IsRetryableError(err) {
			log.Printf("%s 실패 (재시도 불필요): %v", operation, err)
			return err
		}

		if attempt == cfg.MaxRetries {
			break
		}

		log.Printf("%s 실패 (attempt %d/%d): %v", operation, attempt+1, cfg.MaxRetries, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			// 대기 시간을 늘리되 최대 대기 시간을 넘지 않도록 함
			delay = time.Duration(float64(delay) * cfg.Factor)
			if delay > cfg.MaxDelay {
				delay = cfg.MaxDelay
			}
		}
	}

	return fmt.Errorf("%s: 최대 재시도 횟수 초과: %w", operation, lastErr)
}
