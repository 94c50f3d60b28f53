package feature

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/assist-by/swing/internal/domain"
	"github.com/assist-by/swing/internal/indicator"
)

// Set은 한 번의 추출 결과입니다
type Set struct {
	Symbol   string
	Interval domain.TimeInterval
	Candles  domain.CandleList

	Tops    []bool // 롤링 윈도우 고점 플래그 (캔들과 1:1 정렬)
	Bottoms []bool // 롤링 윈도우 저점 플래그

	SwingTops    []indicator.SwingPoint
	SwingBottoms []indicator.SwingPoint
	Swings       []indicator.SwingPoint // 확정 순서로 합친 스윙
}

// TopIndices는 고점으로 표시된 인덱스 목록을 반환합니다
func (s *Set) TopIndices() []int {
	return flagged(s.Tops)
}

// BottomIndices는 저점으로 표시된 인덱스 목록을 반환합니다
func (s *Set) BottomIndices() []int {
	return flagged(s.Bottoms)
}

func flagged(flags []bool) []int {
	var idx []int
	for i, f := range flags {
		if f {
			idx = append(idx, i)
		}
	}
	return idx
}

// Extractor는 캔들 목록에서 극값과 스윙 포인트를 추출합니다
type Extractor struct {
	specs []Spec
}

// NewExtractor는 새로운 추출기를 생성합니다. 명세를 생략하면 기본값을 사용합니다
func NewExtractor(specs ...Spec) *Extractor {
	if len(specs) == 0 {
		specs = DefaultSpecs(3, 0.02, indicator.SeekingHigh)
	}
	return &Extractor{specs: specs}
}

// Extract는 명세별 지표를 동시에 계산해 하나의 Set으로 모읍니다.
// 입력 캔들은 읽기 전용으로만 공유됩니다.
func (e *Extractor) Extract(ctx context.Context, candles domain.CandleList) (*Set, error) {
	if len(candles) == 0 {
		return nil, &indicator.ValidationError{Field: "candles", Err: fmt.Errorf("캔들 데이터가 비어있습니다")}
	}

	prices := indicator.ConvertCandlesToPriceData(candles)
	results := make([][]indicator.Result, len(e.specs))

	// 모든 지표를 먼저 생성해 실패 시 고루틴을 띄우지 않음
	indicators := make([]indicator.Indicator, len(e.specs))
	for i, spec := range e.specs {
		ind, err := CreateIndicator(spec)
		if err != nil {
			return nil, fmt.Errorf("지표 생성 실패 '%s': %w", spec.Type, err)
		}
		indicators[i] = ind
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, ind := range indicators {
		i, ind := i, ind
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := ind.Calculate(prices)
			if err != nil {
				return fmt.Errorf("지표 '%s' 계산 실패: %w", ind.GetName(), err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	last, _ := candles.GetLastCandle()
	set := &Set{
		Symbol:   last.Symbol,
		Interval: last.Interval,
		Candles:  candles,
	}

	for i, spec := range e.specs {
		switch spec.Type {
		case TypeTops:
			set.Tops = toFlags(results[i])
		case TypeBottoms:
			set.Bottoms = toFlags(results[i])
		case TypeZigzag:
			for _, r := range results[i] {
				zr := r.(indicator.ZigzagResult)
				if zr.Kind == domain.SwingTop {
					set.SwingTops = append(set.SwingTops, zr.SwingPoint)
				} else {
					set.SwingBottoms = append(set.SwingBottoms, zr.SwingPoint)
				}
			}
		}
	}
	set.Swings = indicator.MergeSwings(set.SwingTops, set.SwingBottoms)

	return set, nil
}

func toFlags(results []indicator.Result) []bool {
	flags := make([]bool, len(results))
	for i, r := range results {
		flags[i] = r.(indicator.ExtremumResult).IsExtreme
	}
	return flags
}
