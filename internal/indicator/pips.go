package indicator

import "fmt"

// DistanceMeasure는 대표점 선택에 사용할 거리 척도입니다
type DistanceMeasure int

const (
	Euclidean DistanceMeasure = iota + 1
	Perpendicular
	Vertical
)

// SelectRepresentativePoints는 시계열에서 n개의 대표점 인덱스를 고르는 확장 지점입니다.
// 인자만 검증하고 ErrNotImplemented를 반환합니다.
func SelectRepresentativePoints(series []float64, n int, measure DistanceMeasure) ([]int, error) {
	if n < 2 {
		return nil, &ValidationError{Field: "n", Err: fmt.Errorf("대표점은 2개 이상이어야 합니다: %d", n)}
	}
	switch measure {
	case Euclidean, Perpendicular, Vertical:
	default:
		return nil, &ValidationError{Field: "measure", Err: fmt.Errorf("지원하지 않는 거리 척도: %d", measure)}
	}
	return nil, fmt.Errorf("대표점 선택: %w", ErrNotImplemented)
}
