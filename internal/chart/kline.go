package chart

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/assist-by/swing/internal/domain"
	"github.com/assist-by/swing/internal/feature"
)

const (
	topColor    = "#2e7d32"
	bottomColor = "#c62828"
	// 처음 열었을 때 보이는 구간(%)
	initialZoomEnd = 15
	histogramBins  = 50
)

// KLine은 캔들 차트 위에 스윙 포인트를 표시한 차트를 만듭니다
func KLine(set *feature.Set) *charts.Kline {
	kline := charts.NewKLine()
	kline.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s %s", set.Symbol, set.Interval),
			Subtitle: fmt.Sprintf("스윙 %d개 (고점 %d, 저점 %d)", len(set.Swings), len(set.SwingTops), len(set.SwingBottoms)),
		}),
		charts.WithYAxisOpts(opts.YAxis{Scale: opts.Bool(true)}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:       "slider",
			Start:      0,
			End:        initialZoomEnd,
			XAxisIndex: []int{0},
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)

	x := make([]string, len(set.Candles))
	y := make([]opts.KlineData, len(set.Candles))
	for i, c := range set.Candles {
		x[i] = c.OpenTime.Format("2006-01-02 15:04")
		// echarts 캔들 순서: open, close, low, high
		y[i] = opts.KlineData{Value: [4]float64{c.Open, c.Close, c.Low, c.High}}
	}

	kline.SetXAxis(x).AddSeries(set.Symbol, y, charts.WithMarkPointNameCoordItemOpts(markPoints(set, x)...))
	return kline
}

func markPoints(set *feature.Set, x []string) []opts.MarkPointNameCoordItem {
	points := make([]opts.MarkPointNameCoordItem, 0, len(set.Swings))
	for _, sp := range set.Swings {
		color := topColor
		if sp.Kind == domain.SwingBottom {
			color = bottomColor
		}
		points = append(points, opts.MarkPointNameCoordItem{
			Name:       fmt.Sprintf("%s %.4f", sp.Kind, sp.Price),
			Coordinate: []interface{}{x[sp.ExtremeIndex], sp.Price},
			SymbolSize: 30,
			ItemStyle:  &opts.ItemStyle{Color: color},
		})
	}
	return points
}

// Histogram은 종가 분포를 가로 막대로 그린 차트를 만듭니다
func Histogram(set *feature.Set) *charts.Bar {
	labels, counts := closeHistogram(set.Candles.Closes(), histogramBins)

	data := make([]opts.BarData, len(counts))
	for i, n := range counts {
		data[i] = opts.BarData{Value: n}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "종가 분포"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(labels).AddSeries("close", data).XYReversal()
	return bar
}

// closeHistogram은 종가를 [min, max] 구간의 bins개 칸으로 셉니다. 마지막 칸은 max를 포함합니다
func closeHistogram(closes []float64, bins int) ([]string, []int) {
	if len(closes) == 0 || bins < 1 {
		return nil, nil
	}

	lo, hi := closes[0], closes[0]
	for _, c := range closes[1:] {
		lo = math.Min(lo, c)
		hi = math.Max(hi, c)
	}
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}

	width := (hi - lo) / float64(bins)
	counts := make([]int, bins)
	for _, c := range closes {
		i := int((c - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		counts[i]++
	}

	labels := make([]string, bins)
	for i := range labels {
		labels[i] = fmt.Sprintf("%.2f", lo+width*(float64(i)+0.5))
	}
	return labels, counts
}

// Render는 캔들 차트와 종가 분포를 한 HTML 페이지로 출력합니다
func Render(w io.Writer, set *feature.Set) error {
	if len(set.Candles) == 0 {
		return fmt.Errorf("차트를 그릴 캔들 데이터가 없습니다")
	}
	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(KLine(set), Histogram(set))
	return page.Render(w)
}
