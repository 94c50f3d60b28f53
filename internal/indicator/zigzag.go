package indicator

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/assist-by/swing/internal/domain"
)

// SeekMode는 지그재그 상태 머신의 현재 탐색 방향입니다
type SeekMode int

const (
	SeekingHigh SeekMode = iota // 고점 갱신을 추적 중
	SeekingLow                  // 저점 갱신을 추적 중
)

// String은 SeekMode의 문자열 표현을 반환합니다
func (m SeekMode) String() string {
	switch m {
	case SeekingHigh:
		return "high"
	case SeekingLow:
		return "low"
	default:
		return "unknown"
	}
}

// ParseSeekMode는 "high"/"low" 문자열을 SeekMode로 변환합니다
func ParseSeekMode(s string) (SeekMode, error) {
	switch s {
	case "", "high":
		return SeekingHigh, nil
	case "low":
		return SeekingLow, nil
	default:
		return 0, &ValidationError{Field: "start", Err: fmt.Errorf("지원하지 않는 시작 방향: %q", s)}
	}
}

// SwingPoint는 확정된 지그재그 스윙 포인트입니다
type SwingPoint struct {
	Kind         domain.SwingKind // 고점 또는 저점
	ConfirmIndex int              // 반전이 확정된 인덱스
	ExtremeIndex int              // 실제 극값이 발생한 인덱스 (ConfirmIndex 이하)
	Price        float64          // 극값 가격
}

// ZigzagOption은 지그재그 계산 옵션을 정의합니다
type ZigzagOption struct {
	Sigma float64  // 반전 확정 비율 (0.02 -> 2%)
	Start SeekMode // 초기 탐색 방향 (기본값: SeekingHigh)
}

// ValidateZigzagOption은 지그재그 옵션을 검증합니다
func ValidateZigzagOption(opt ZigzagOption) error {
	if math.IsNaN(opt.Sigma) || opt.Sigma <= 0 || opt.Sigma >= 1 {
		return &ValidationError{
			Field: "sigma",
			Err:   fmt.Errorf("sigma는 0보다 크고 1보다 작아야 합니다: %v", opt.Sigma),
		}
	}
	if opt.Start != SeekingHigh && opt.Start != SeekingLow {
		return &ValidationError{
			Field: "start",
			Err:   fmt.Errorf("지원하지 않는 시작 방향: %d", opt.Start),
		}
	}
	return nil
}

// zigzagState는 탐색 방향과 현재까지의 극값을 함께 보관합니다
type zigzagState struct {
	mode       SeekMode
	extreme    float64
	extremeIdx int
}

// Zigzag는 종가 기준 sigma 비율 반전으로 확정되는 스윙 고점/저점을 계산합니다.
// 반환되는 tops와 bottoms는 각각 ConfirmIndex 오름차순이며, 합치면 종류가 번갈아 나타납니다.
func Zigzag(prices []PriceData, opt ZigzagOption) (tops, bottoms []SwingPoint, err error) {
	if err := ValidateZigzagOption(opt); err != nil {
		return nil, nil, err
	}
	if len(prices) == 0 {
		return nil, nil, &ValidationError{
			Field: "prices",
			Err:   fmt.Errorf("가격 데이터가 비어있습니다"),
		}
	}

	st := zigzagState{mode: opt.Start, extremeIdx: 0}
	if st.mode == SeekingHigh {
		st.extreme = prices[0].High
	} else {
		st.extreme = prices[0].Low
	}

	for i := 1; i < len(prices); i++ {
		p := prices[i]
		switch st.mode {
		case SeekingHigh:
			if p.High > st.extreme {
				st.extreme, st.extremeIdx = p.High, i
			} else if p.Close < st.extreme*(1-opt.Sigma) {
				tops = append(tops, SwingPoint{
					Kind:         domain.SwingTop,
					ConfirmIndex: i,
					ExtremeIndex: st.extremeIdx,
					Price:        st.extreme,
				})
				st = zigzagState{mode: SeekingLow, extreme: p.Low, extremeIdx: i}
			}
		case SeekingLow:
			if p.Low < st.extreme {
				st.extreme, st.extremeIdx = p.Low, i
			} else if p.Close > st.extreme*(1+opt.Sigma) {
				bottoms = append(bottoms, SwingPoint{
					Kind:         domain.SwingBottom,
					ConfirmIndex: i,
					ExtremeIndex: st.extremeIdx,
					Price:        st.extreme,
				})
				st = zigzagState{mode: SeekingHigh, extreme: p.High, extremeIdx: i}
			}
		}
	}

	return tops, bottoms, nil
}

// MergeSwings는 고점/저점 목록을 ConfirmIndex 순서로 합칩니다
func MergeSwings(tops, bottoms []SwingPoint) []SwingPoint {
	merged := make([]SwingPoint, 0, len(tops)+len(bottoms))
	merged = append(merged, tops...)
	merged = append(merged, bottoms...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].ConfirmIndex < merged[j].ConfirmIndex
	})
	return merged
}

// ZigzagResult는 지그재그 지표의 결과 한 건입니다
type ZigzagResult struct {
	SwingPoint
	Timestamp time.Time // 극값이 발생한 캔들의 시각
}

// GetTimestamp는 결과의 타임스탬프를 반환합니다 (Result 인터페이스 구현)
func (r ZigzagResult) GetTimestamp() time.Time {
	return r.Timestamp
}

// ZigzagIndicator는 Indicator 인터페이스로 감싼 지그재그 지표입니다
type ZigzagIndicator struct {
	BaseIndicator
	Option ZigzagOption
}

// NewZigzag는 새로운 지그재그 지표 인스턴스를 생성합니다
func NewZigzag(sigma float64, start SeekMode) *ZigzagIndicator {
	return &ZigzagIndicator{
		BaseIndicator: BaseIndicator{
			Name: fmt.Sprintf("ZIGZAG(%.4f)", sigma),
			Config: map[string]interface{}{
				"sigma": sigma,
				"start": start.String(),
			},
		},
		Option: ZigzagOption{Sigma: sigma, Start: start},
	}
}

// Calculate는 확정된 스윙 포인트를 확정 순서대로 반환합니다
func (z *ZigzagIndicator) Calculate(prices []PriceData) ([]Result, error) {
	tops, bottoms, err := Zigzag(prices, z.Option)
	if err != nil {
		return nil, err
	}

	swings := MergeSwings(tops, bottoms)
	results := make([]Result, len(swings))
	for i, s := range swings {
		results[i] = ZigzagResult{SwingPoint: s, Timestamp: prices[s.ExtremeIndex].Time}
	}
	return results, nil
}
