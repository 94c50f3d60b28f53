package feature

import (
	"fmt"

	"github.com/assist-by/swing/internal/domain"
	"github.com/assist-by/swing/internal/indicator"
)

// Spec은 지표 명세를 나타냅니다
type Spec struct {
	Type       string                 // 지표 유형 (RW_TOP, RW_BOTTOM, ZIGZAG)
	Parameters map[string]interface{} // 지표 파라미터
}

const (
	TypeTops    = "RW_TOP"
	TypeBottoms = "RW_BOTTOM"
	TypeZigzag  = "ZIGZAG"
)

// CreateIndicator는 지표 명세에 따라 지표 인스턴스를 생성합니다
func CreateIndicator(spec Spec) (indicator.Indicator, error) {
	switch spec.Type {
	case TypeTops, TypeBottoms:
		order, ok := spec.Parameters["order"].(int)
		if !ok {
			return nil, fmt.Errorf("%s에는 'order' 파라미터가 필요합니다", spec.Type)
		}
		kind := domain.SwingTop
		if spec.Type == TypeBottoms {
			kind = domain.SwingBottom
		}
		return indicator.NewExtrema(order, kind), nil

	case TypeZigzag:
		sigma, ok := spec.Parameters["sigma"].(float64)
		if !ok {
			return nil, fmt.Errorf("ZIGZAG에는 'sigma' 파라미터가 필요합니다")
		}
		start := indicator.SeekingHigh
		if s, ok := spec.Parameters["start"].(indicator.SeekMode); ok {
			start = s
		}
		return indicator.NewZigzag(sigma, start), nil

	default:
		return nil, fmt.Errorf("지원하지 않는 지표 유형: %s", spec.Type)
	}
}

// DefaultSpecs는 추출기가 사용하는 기본 지표 명세를 반환합니다
func DefaultSpecs(order int, sigma float64, start indicator.SeekMode) []Spec {
	return []Spec{
		{Type: TypeTops, Parameters: map[string]interface{}{"order": order}},
		{Type: TypeBottoms, Parameters: map[string]interface{}{"order": order}},
		{Type: TypeZigzag, Parameters: map[string]interface{}{"sigma": sigma, "start": start}},
	}
}
