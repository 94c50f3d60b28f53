package binance

import (
	"fmt"
	"net/http"
)

// APIError는 바이낸스 API가 돌려준 에러 응답입니다
type APIError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("API 에러(코드: %d): %s", e.Code, e.Message)
	}
	return fmt.Sprintf("HTTP 에러(%d): %s", e.StatusCode, e.Message)
}

// Temporary는 재시도로 해결될 수 있는 에러인지 반환합니다
func (e *APIError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode == 418 || // IP 차단 직전 경고
		e.StatusCode >= http.StatusInternalServerError
}
