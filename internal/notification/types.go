package notification

import (
	"time"

	"github.com/assist-by/swing/internal/domain"
)

// Notifier는 알림 전송 인터페이스를 정의합니다
type Notifier interface {
	// SendSwing은 새로 확정된 스윙 포인트를 알립니다
	SendSwing(alert SwingAlert) error

	// SendError는 에러 알림을 전송합니다
	SendError(err error) error

	// SendInfo는 일반 정보 알림을 전송합니다
	SendInfo(message string) error
}

// SwingAlert는 확정된 스윙 포인트 알림 내용입니다
type SwingAlert struct {
	Symbol      string
	Interval    domain.TimeInterval
	Kind        domain.SwingKind
	Price       float64   // 극값 가격
	ExtremeTime time.Time // 극값이 발생한 캔들 시각
	ConfirmTime time.Time // 반전이 확정된 캔들 시각
	LastClose   float64   // 확정 캔들의 종가
}

// Retracement는 극값 대비 확정 종가의 변화율(%)을 반환합니다
func (a SwingAlert) Retracement() float64 {
	if a.Price == 0 {
		return 0
	}
	return (a.LastClose - a.Price) / a.Price * 100
}
