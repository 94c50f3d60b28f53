package indicator

import (
	"fmt"
	"time"

	"github.com/assist-by/swing/internal/domain"
)

// ExtremumOption은 롤링 윈도우 극값 판별 옵션을 정의합니다
type ExtremumOption struct {
	Order int              // 좌우로 비교할 이웃 개수 (윈도우 반폭)
	Kind  domain.SwingKind // 고점 또는 저점
}

// ValidateExtremumOption은 극값 판별 옵션을 검증합니다
func ValidateExtremumOption(opt ExtremumOption) error {
	if opt.Order < 1 {
		return &ValidationError{
			Field: "order",
			Err:   fmt.Errorf("order는 1 이상이어야 합니다: %d", opt.Order),
		}
	}
	if opt.Kind != domain.SwingTop && opt.Kind != domain.SwingBottom {
		return &ValidationError{
			Field: "kind",
			Err:   fmt.Errorf("지원하지 않는 극값 종류: %d", opt.Kind),
		}
	}
	return nil
}

// Tops는 각 인덱스가 order 차수의 국소 고점인지 표시합니다.
// 결과 길이는 입력과 같고, 양쪽 이웃이 order개 미만인 인덱스는 항상 false입니다.
func Tops(series []float64, order int) ([]bool, error) {
	return detectExtrema(series, ExtremumOption{Order: order, Kind: domain.SwingTop})
}

// Bottoms는 각 인덱스가 order 차수의 국소 저점인지 표시합니다
func Bottoms(series []float64, order int) ([]bool, error) {
	return detectExtrema(series, ExtremumOption{Order: order, Kind: domain.SwingBottom})
}

func detectExtrema(series []float64, opt ExtremumOption) ([]bool, error) {
	if err := ValidateExtremumOption(opt); err != nil {
		return nil, err
	}

	flags := make([]bool, len(series))
	for k := opt.Order; k < len(series)-opt.Order; k++ {
		flags[k] = isExtremum(series, k, opt)
	}
	return flags, nil
}

// isExtremum은 중심 k를 기준으로 j = 1..order 이웃을 비교합니다.
// 같은 값은 탈락 사유가 아니며, 첫 번째 탈락 이웃에서 바로 중단합니다.
func isExtremum(series []float64, k int, opt ExtremumOption) bool {
	v := series[k]
	for j := 1; j <= opt.Order; j++ {
		if opt.Kind == domain.SwingTop {
			if series[k+j] > v || series[k-j] > v {
				return false
			}
		} else {
			if series[k+j] < v || series[k-j] < v {
				return false
			}
		}
	}
	return true
}

// ExtremumResult는 극값 지표의 인덱스별 결과입니다
type ExtremumResult struct {
	Index     int
	Price     float64
	IsExtreme bool
	Timestamp time.Time
}

// GetTimestamp는 결과의 타임스탬프를 반환합니다 (Result 인터페이스 구현)
func (r ExtremumResult) GetTimestamp() time.Time {
	return r.Timestamp
}

// Extrema는 종가 기준 롤링 윈도우 극값 지표입니다
type Extrema struct {
	BaseIndicator
	Option ExtremumOption
}

// NewExtrema는 새로운 극값 지표 인스턴스를 생성합니다
func NewExtrema(order int, kind domain.SwingKind) *Extrema {
	return &Extrema{
		BaseIndicator: BaseIndicator{
			Name: fmt.Sprintf("RW_%s(%d)", kind, order),
			Config: map[string]interface{}{
				"order": order,
				"kind":  kind.String(),
			},
		},
		Option: ExtremumOption{Order: order, Kind: kind},
	}
}

// Calculate는 종가 시계열에 대해 극값 여부를 계산합니다
func (e *Extrema) Calculate(prices []PriceData) ([]Result, error) {
	flags, err := detectExtrema(Closes(prices), e.Option)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(prices))
	for i, p := range prices {
		results[i] = ExtremumResult{
			Index:     i,
			Price:     p.Close,
			IsExtreme: flags[i],
			Timestamp: p.Time,
		}
	}
	return results, nil
}
