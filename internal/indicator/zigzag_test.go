package indicator

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assist-by/swing/internal/domain"
)

// 고가/저가/종가 배열로 테스트용 가격 데이터 생성
func makePrices(highs, lows, closes []float64) []PriceData {
	baseTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	prices := make([]PriceData, len(closes))
	for i := range closes {
		prices[i] = PriceData{
			Time:  baseTime.Add(time.Duration(i) * time.Hour),
			Open:  closes[i],
			High:  highs[i],
			Low:   lows[i],
			Close: closes[i],
		}
	}
	return prices
}

// 랜덤 워크 캔들 생성
func randomWalkPrices(seed int64, n int) []PriceData {
	rng := rand.New(rand.NewSource(seed))
	baseTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	prices := make([]PriceData, n)
	last := 100.0
	for i := 0; i < n; i++ {
		open := last
		closePrice := open * (1 + rng.NormFloat64()*0.015)
		high := maxFloat(open, closePrice) * (1 + rng.Float64()*0.005)
		low := minFloat(open, closePrice) * (1 - rng.Float64()*0.005)
		prices[i] = PriceData{
			Time:  baseTime.Add(time.Duration(i) * time.Hour),
			Open:  open,
			High:  high,
			Low:   low,
			Close: closePrice,
		}
		last = closePrice
	}
	return prices
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func TestZigzag_Scenarios(t *testing.T) {
	tests := []struct {
		name        string
		highs       []float64
		lows        []float64
		closes      []float64
		sigma       float64
		wantTops    []SwingPoint
		wantBottoms []SwingPoint
	}{
		{
			// 인덱스 2의 종가 10이 이미 12*0.9=10.8 아래이므로 인덱스 2에서 확정됨
			name:   "고점 12에서 반전",
			highs:  []float64{10, 12, 11, 9, 8},
			lows:   []float64{9.5, 10.5, 9.5, 8, 7.5},
			closes: []float64{10, 11, 10, 8.5, 8},
			sigma:  0.1,
			wantTops: []SwingPoint{
				{Kind: domain.SwingTop, ConfirmIndex: 2, ExtremeIndex: 1, Price: 12},
			},
		},
		{
			name:   "인덱스 3에서 확정",
			highs:  []float64{10, 12, 11, 9, 8},
			lows:   []float64{9.5, 10.5, 10.5, 8, 7.5},
			closes: []float64{10, 11, 11, 8.5, 8},
			sigma:  0.1,
			wantTops: []SwingPoint{
				{Kind: domain.SwingTop, ConfirmIndex: 3, ExtremeIndex: 1, Price: 12},
			},
		},
		{
			name:   "고점-저점-고점",
			highs:  []float64{100, 110, 106, 96, 92, 95, 103, 101, 90},
			lows:   []float64{98, 105, 100, 91, 88, 90, 97, 95, 85},
			closes: []float64{99, 108, 105, 92, 90, 92, 102, 98, 86},
			sigma:  0.05,
			wantTops: []SwingPoint{
				{Kind: domain.SwingTop, ConfirmIndex: 3, ExtremeIndex: 1, Price: 110},
				{Kind: domain.SwingTop, ConfirmIndex: 8, ExtremeIndex: 6, Price: 103},
			},
			wantBottoms: []SwingPoint{
				{Kind: domain.SwingBottom, ConfirmIndex: 6, ExtremeIndex: 4, Price: 88},
			},
		},
		{
			name:   "반전 없음",
			highs:  []float64{10, 11, 12, 13},
			lows:   []float64{9, 10, 11, 12},
			closes: []float64{10, 11, 12, 13},
			sigma:  0.02,
		},
		{
			name:   "캔들 하나",
			highs:  []float64{10},
			lows:   []float64{9},
			closes: []float64{9.5},
			sigma:  0.02,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tops, bottoms, err := Zigzag(makePrices(tt.highs, tt.lows, tt.closes), ZigzagOption{Sigma: tt.sigma})
			require.NoError(t, err)
			assert.Equal(t, tt.wantTops, tops)
			assert.Equal(t, tt.wantBottoms, bottoms)
		})
	}
}

func TestZigzag_ThresholdBoundary(t *testing.T) {
	const sigma = 0.05
	const eps = 1e-6

	build := func(lastClose float64) []PriceData {
		return makePrices(
			[]float64{90, 100, 99},
			[]float64{89, 98, 90},
			[]float64{90, 99, lastClose},
		)
	}

	tops, _, err := Zigzag(build(100*(1-sigma-eps)), ZigzagOption{Sigma: sigma})
	require.NoError(t, err)
	require.Len(t, tops, 1)
	assert.Equal(t, SwingPoint{Kind: domain.SwingTop, ConfirmIndex: 2, ExtremeIndex: 1, Price: 100}, tops[0])

	tops, _, err = Zigzag(build(100*(1-sigma+eps)), ZigzagOption{Sigma: sigma})
	require.NoError(t, err)
	assert.Empty(t, tops)
}

func TestZigzag_BottomThresholdBoundary(t *testing.T) {
	const sigma = 0.05
	const eps = 1e-6

	build := func(lastClose float64) []PriceData {
		return makePrices(
			[]float64{110, 102, 106},
			[]float64{105, 100, 101},
			[]float64{106, 101, lastClose},
		)
	}
	start := ZigzagOption{Sigma: sigma, Start: SeekingLow}

	_, bottoms, err := Zigzag(build(100*(1+sigma+eps)), start)
	require.NoError(t, err)
	require.Len(t, bottoms, 1)
	assert.Equal(t, SwingPoint{Kind: domain.SwingBottom, ConfirmIndex: 2, ExtremeIndex: 1, Price: 100}, bottoms[0])

	_, bottoms, err = Zigzag(build(100*(1+sigma-eps)), start)
	require.NoError(t, err)
	assert.Empty(t, bottoms)
}

func TestZigzag_InvalidArguments(t *testing.T) {
	prices := makePrices([]float64{1}, []float64{1}, []float64{1})

	tests := []struct {
		name   string
		prices []PriceData
		opt    ZigzagOption
		field  string
	}{
		{"sigma 0", prices, ZigzagOption{Sigma: 0}, "sigma"},
		{"sigma 음수", prices, ZigzagOption{Sigma: -0.1}, "sigma"},
		{"sigma 1", prices, ZigzagOption{Sigma: 1}, "sigma"},
		{"알 수 없는 시작 방향", prices, ZigzagOption{Sigma: 0.1, Start: SeekMode(7)}, "start"},
		{"빈 데이터", nil, ZigzagOption{Sigma: 0.1}, "prices"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tops, bottoms, err := Zigzag(tt.prices, tt.opt)
			require.ErrorIs(t, err, ErrInvalidArgument)
			assert.Nil(t, tops)
			assert.Nil(t, bottoms)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestZigzag_Properties(t *testing.T) {
	for _, seed := range []int64{1, 2, 3, 4, 5} {
		prices := randomWalkPrices(seed, 500)
		for _, start := range []SeekMode{SeekingHigh, SeekingLow} {
			opt := ZigzagOption{Sigma: 0.03, Start: start}
			tops, bottoms, err := Zigzag(prices, opt)
			require.NoError(t, err)

			swings := MergeSwings(tops, bottoms)
			require.NotEmpty(t, swings, "seed=%d", seed)

			// 첫 스윙 종류는 시작 방향에 따라 결정됨
			if start == SeekingHigh {
				assert.Equal(t, domain.SwingTop, swings[0].Kind)
			} else {
				assert.Equal(t, domain.SwingBottom, swings[0].Kind)
			}

			for i, s := range swings {
				assert.LessOrEqual(t, s.ExtremeIndex, s.ConfirmIndex)
				if i == 0 {
					continue
				}
				prev := swings[i-1]
				assert.NotEqual(t, prev.Kind, s.Kind, "seed=%d i=%d", seed, i)
				assert.Greater(t, s.ConfirmIndex, prev.ConfirmIndex)
				assert.GreaterOrEqual(t, s.ExtremeIndex, prev.ConfirmIndex)
			}

			for _, s := range tops {
				assert.Less(t, prices[s.ConfirmIndex].Close, s.Price*(1-opt.Sigma))
				assert.Equal(t, prices[s.ExtremeIndex].High, s.Price)
			}
			for _, s := range bottoms {
				assert.Greater(t, prices[s.ConfirmIndex].Close, s.Price*(1+opt.Sigma))
				assert.Equal(t, prices[s.ExtremeIndex].Low, s.Price)
			}

			again, againBottoms, err := Zigzag(prices, opt)
			require.NoError(t, err)
			assert.Equal(t, tops, again)
			assert.Equal(t, bottoms, againBottoms)
		}
	}
}

func TestZigzagIndicator_Calculate(t *testing.T) {
	prices := makePrices(
		[]float64{100, 110, 106, 96, 92, 95, 103, 101, 90},
		[]float64{98, 105, 100, 91, 88, 90, 97, 95, 85},
		[]float64{99, 108, 105, 92, 90, 92, 102, 98, 86},
	)

	ind := NewZigzag(0.05, SeekingHigh)
	assert.Equal(t, "ZIGZAG(0.0500)", ind.GetName())
	assert.Equal(t, "high", ind.GetConfig()["start"])

	results, err := ind.Calculate(prices)
	require.NoError(t, err)
	require.Len(t, results, 3)

	kinds := make([]domain.SwingKind, len(results))
	for i, r := range results {
		zr := r.(ZigzagResult)
		kinds[i] = zr.Kind
		assert.Equal(t, prices[zr.ExtremeIndex].Time, zr.GetTimestamp())
	}
	assert.Equal(t, []domain.SwingKind{domain.SwingTop, domain.SwingBottom, domain.SwingTop}, kinds)
}

func TestParseSeekMode(t *testing.T) {
	m, err := ParseSeekMode("low")
	require.NoError(t, err)
	assert.Equal(t, SeekingLow, m)

	m, err = ParseSeekMode("")
	require.NoError(t, err)
	assert.Equal(t, SeekingHigh, m)

	_, err = ParseSeekMode("sideways")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSelectRepresentativePoints(t *testing.T) {
	_, err := SelectRepresentativePoints([]float64{1, 2, 3}, 2, Perpendicular)
	assert.ErrorIs(t, err, ErrNotImplemented)

	_, err = SelectRepresentativePoints([]float64{1, 2, 3}, 1, Euclidean)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = SelectRepresentativePoints([]float64{1, 2, 3}, 3, DistanceMeasure(0))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
