package report

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/assist-by/swing/internal/domain"
	"github.com/assist-by/swing/internal/feature"
	"github.com/assist-by/swing/internal/store"
)

const timeLayout = "2006-01-02 15:04"

func newWriter(title string) table.Writer {
	tw := table.NewWriter()
	tw.SetTitle(title)
	tw.SetStyle(table.StyleLight)
	return tw
}

// Swings는 지그재그 스윙 포인트를 표로 출력합니다
func Swings(w io.Writer, set *feature.Set) error {
	tw := newWriter(fmt.Sprintf("%s %s 스윙 포인트", set.Symbol, set.Interval))
	tw.AppendHeader(table.Row{"#", "종류", "극값 시각", "가격", "확정 시각", "지연(봉)"})

	for i, sp := range set.Swings {
		tw.AppendRow(table.Row{
			i + 1,
			sp.Kind.String(),
			set.Candles[sp.ExtremeIndex].OpenTime.Format(timeLayout),
			fmt.Sprintf("%.4f", sp.Price),
			set.Candles[sp.ConfirmIndex].OpenTime.Format(timeLayout),
			sp.ConfirmIndex - sp.ExtremeIndex,
		})
	}
	tw.AppendFooter(table.Row{"", "합계", fmt.Sprintf("고점 %d", len(set.SwingTops)), "", fmt.Sprintf("저점 %d", len(set.SwingBottoms)), ""})

	_, err := fmt.Fprintln(w, tw.Render())
	return err
}

// Extrema는 롤링 윈도우 극값을 시간순으로 표로 출력합니다
func Extrema(w io.Writer, set *feature.Set) error {
	tw := newWriter(fmt.Sprintf("%s %s 롤링 윈도우 극값", set.Symbol, set.Interval))
	tw.AppendHeader(table.Row{"인덱스", "종류", "시각", "종가"})

	tops, bottoms := set.TopIndices(), set.BottomIndices()
	ti, bi := 0, 0
	for ti < len(tops) || bi < len(bottoms) {
		var idx int
		var kind domain.SwingKind
		if bi >= len(bottoms) || (ti < len(tops) && tops[ti] <= bottoms[bi]) {
			idx, kind = tops[ti], domain.SwingTop
			ti++
		} else {
			idx, kind = bottoms[bi], domain.SwingBottom
			bi++
		}
		c := set.Candles[idx]
		tw.AppendRow(table.Row{idx, kind.String(), c.OpenTime.Format(timeLayout), fmt.Sprintf("%.4f", c.Close)})
	}
	tw.AppendFooter(table.Row{"", "합계", fmt.Sprintf("고점 %d", len(tops)), fmt.Sprintf("저점 %d", len(bottoms))})

	_, err := fmt.Fprintln(w, tw.Render())
	return err
}

// Records는 저장소에서 읽은 스윙 기록을 표로 출력합니다
func Records(w io.Writer, records []store.SwingRecord) error {
	tw := newWriter("저장된 스윙 기록")
	tw.AppendHeader(table.Row{"심볼", "간격", "종류", "극값 시각", "가격", "확정 시각"})
	for _, r := range records {
		tw.AppendRow(table.Row{
			r.Symbol,
			r.Interval,
			r.KindName,
			r.ExtremeTime.Format(timeLayout),
			fmt.Sprintf("%.4f", r.Price),
			r.ConfirmTime.Format(timeLayout),
		})
	}

	_, err := fmt.Fprintln(w, tw.Render())
	return err
}
