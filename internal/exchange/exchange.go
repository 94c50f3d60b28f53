// internal/exchange/exchange.go
package exchange

import (
	"context"
	"time"

	"github.com/assist-by/swing/internal/domain"
)

// Exchange는 캔들 데이터 공급원과의 상호작용을 위한 인터페이스입니다.
// GetKlines는 오래된 캔들이 먼저 오도록 정렬된 목록을 반환해야 합니다.
type Exchange interface {
	// 시장 데이터 조회
	GetServerTime(ctx context.Context) (time.Time, error)
	GetKlines(ctx context.Context, symbol string, interval domain.TimeInterval, limit int) (domain.CandleList, error)
}

// SymbolLister는 거래량 기준 상위 심볼을 조회할 수 있는 공급원입니다
type SymbolLister interface {
	GetTopVolumeSymbols(ctx context.Context, n int) ([]string, error)
}
