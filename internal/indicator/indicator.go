package indicator

import (
	"errors"
	"fmt"
	"time"

	"github.com/assist-by/swing/internal/domain"
)

var (
	// ErrInvalidArgument는 인자 제약 위반을 나타냅니다
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotImplemented는 아직 구현되지 않은 확장 지점을 나타냅니다
	ErrNotImplemented = errors.New("not implemented")
)

// PriceData는 지표 계산에 필요한 가격 정보를 정의합니다
type PriceData struct {
	Time   time.Time // 타임스탬프
	Open   float64   // 시가
	High   float64   // 고가
	Low    float64   // 저가
	Close  float64   // 종가
	Volume float64   // 거래량
}

// Result는 지표 계산의 기본 결과 구조체입니다
type Result interface {
	GetTimestamp() time.Time
}

// ValidationError는 입력값 검증 에러를 정의합니다
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("유효하지 않은 %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is는 모든 검증 에러를 ErrInvalidArgument로 취급합니다
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// Indicator는 모든 기술적 지표가 구현해야 하는 인터페이스입니다
type Indicator interface {
	// Calculate는 가격 데이터를 기반으로 지표를 계산합니다
	Calculate(data []PriceData) ([]Result, error)

	// GetName은 지표의 이름을 반환합니다
	GetName() string

	// GetConfig는 지표의 현재 설정을 반환합니다
	GetConfig() map[string]interface{}
}

// BaseIndicator는 모든 지표 구현체에서 공통적으로 사용할 수 있는 기본 구현을 제공합니다
type BaseIndicator struct {
	Name   string
	Config map[string]interface{}
}

// GetName은 지표의 이름을 반환합니다
func (b *BaseIndicator) GetName() string {
	return b.Name
}

// GetConfig는 지표의 현재 설정을 반환합니다
func (b *BaseIndicator) GetConfig() map[string]interface{} {
	// 설정의 복사본 반환
	configCopy := make(map[string]interface{})
	for k, v := range b.Config {
		configCopy[k] = v
	}
	return configCopy
}

// ConvertCandlesToPriceData는 캔들 데이터를 지표 계산용 PriceData로 변환합니다
func ConvertCandlesToPriceData(candles domain.CandleList) []PriceData {
	priceData := make([]PriceData, len(candles))
	for i, candle := range candles {
		priceData[i] = PriceData{
			Time:   candle.OpenTime,
			Open:   candle.Open,
			High:   candle.High,
			Low:    candle.Low,
			Close:  candle.Close,
			Volume: candle.Volume,
		}
	}
	return priceData
}

// Closes는 PriceData에서 종가 시계열을 추출합니다
func Closes(prices []PriceData) []float64 {
	out := make([]float64, len(prices))
	for i, p := range prices {
		out[i] = p.Close
	}
	return out
}

// ReverseSeries는 최신순 시계열을 오래된 순서로 뒤집은 복사본을 반환합니다
func ReverseSeries(series []float64) []float64 {
	out := make([]float64, len(series))
	for i, v := range series {
		out[len(series)-1-i] = v
	}
	return out
}
