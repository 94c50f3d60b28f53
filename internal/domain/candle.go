package domain

import (
	"fmt"
	"time"
)

// Candle은 캔들 데이터를 표현합니다
type Candle struct {
	OpenTime  time.Time    // 캔들 시작 시간
	CloseTime time.Time    // 캔들 종료 시간
	Open      float64      // 시가
	High      float64      // 고가
	Low       float64      // 저가
	Close     float64      // 종가
	Volume    float64      // 거래량
	Symbol    string       // 심볼 (예: BTCUSDT)
	Interval  TimeInterval // 시간 간격 (예: 15m, 1h)
}

// CandleList는 캔들 데이터 목록입니다.
// 인덱스 0이 가장 오래된 캔들입니다.
type CandleList []Candle

// GetLastCandle은 가장 최근 캔들을 반환합니다
func (cl CandleList) GetLastCandle() (Candle, bool) {
	if len(cl) == 0 {
		return Candle{}, false
	}
	return cl[len(cl)-1], true
}

// GetSubList는 지정된 범위의 부분 리스트를 반환합니다
func (cl CandleList) GetSubList(start, end int) (CandleList, bool) {
	if start < 0 || end > len(cl) || start >= end {
		return nil, false
	}
	return cl[start:end], true
}

// ClosedAt은 now 시점에 아직 마감되지 않은 뒤쪽 캔들을 제외한 목록을 반환합니다.
// CloseTime이 비어 있는 캔들은 마감된 것으로 봅니다.
func (cl CandleList) ClosedAt(now time.Time) CandleList {
	end := len(cl)
	for end > 0 {
		ct := cl[end-1].CloseTime
		if ct.IsZero() || !ct.After(now) {
			break
		}
		end--
	}
	if end == len(cl) {
		return cl
	}
	sub, ok := cl.GetSubList(0, end)
	if !ok {
		return CandleList{}
	}
	return sub
}

// Closes는 종가 시계열을 반환합니다
func (cl CandleList) Closes() []float64 {
	out := make([]float64, len(cl))
	for i, c := range cl {
		out[i] = c.Close
	}
	return out
}

// Reverse는 순서를 뒤집은 새 리스트를 반환합니다.
// 최신 데이터가 앞에 오는 목록을 오래된 순서로 바꿀 때 사용합니다.
func (cl CandleList) Reverse() CandleList {
	out := make(CandleList, len(cl))
	for i, c := range cl {
		out[len(cl)-1-i] = c
	}
	return out
}

// EnsureAscending은 캔들이 시간순(오래된 것 먼저)으로 정렬되어 있는지 확인합니다
func (cl CandleList) EnsureAscending() error {
	for i := 1; i < len(cl); i++ {
		if !cl[i].OpenTime.After(cl[i-1].OpenTime) {
			return fmt.Errorf("캔들 데이터가 시간순으로 정렬되어 있지 않습니다 (인덱스 %d: %s <= %s)",
				i, cl[i].OpenTime.Format(time.RFC3339), cl[i-1].OpenTime.Format(time.RFC3339))
		}
	}
	return nil
}
