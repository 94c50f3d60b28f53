package domain

import (
	"fmt"
	"time"
)

// GapSummary는 누락 구간의 요약입니다. 누락 시각을 모두 보관하지 않습니다
type GapSummary struct {
	Count  int         // 누락 캔들 수
	Days   int         // 누락이 발생한 UTC 날짜 수
	First  time.Time   // 첫 누락 시각
	Sample []time.Time // 앞쪽 누락 시각 (최대 sampleLimit개)
}

// MissingOpenTimes는 첫 캔들부터 마지막 캔들 직전까지 step 간격의 격자에서
// 캔들이 없는 시각 목록을 반환합니다. 마지막 캔들 시각은 검사 범위에 포함되지 않습니다.
// 누락이 많을 수 있는 입력에는 SummarizeGaps를 사용하세요.
func (cl CandleList) MissingOpenTimes(step time.Duration) ([]time.Time, error) {
	var missing []time.Time
	err := cl.walkMissing(step, func(ts time.Time) {
		missing = append(missing, ts)
	})
	if err != nil {
		return nil, err
	}
	return missing, nil
}

// SummarizeGaps는 누락 구간을 개수와 날짜 수로 요약합니다.
// 시각은 sampleLimit개까지만 보관합니다.
func (cl CandleList) SummarizeGaps(step time.Duration, sampleLimit int) (GapSummary, error) {
	var summary GapSummary
	days := make(map[int64]struct{})
	err := cl.walkMissing(step, func(ts time.Time) {
		if summary.Count == 0 {
			summary.First = ts
		}
		summary.Count++
		if len(summary.Sample) < sampleLimit {
			summary.Sample = append(summary.Sample, ts)
		}
		days[ts.Unix()/86400] = struct{}{}
	})
	if err != nil {
		return GapSummary{}, err
	}
	summary.Days = len(days)
	return summary, nil
}

func (cl CandleList) walkMissing(step time.Duration, fn func(time.Time)) error {
	if step <= 0 {
		return fmt.Errorf("간격은 0보다 커야 합니다: %v", step)
	}
	if len(cl) < 2 {
		return nil
	}

	present := make(map[int64]struct{}, len(cl))
	for _, c := range cl {
		present[c.OpenTime.UnixMilli()] = struct{}{}
	}

	start := cl[0].OpenTime.UnixMilli()
	end := cl[len(cl)-1].OpenTime.UnixMilli()
	stepMs := step.Milliseconds()

	for ts := start; ts < end; ts += stepMs {
		if _, ok := present[ts]; !ok {
			fn(time.UnixMilli(ts).UTC())
		}
	}
	return nil
}

// MissingDays는 누락 시각 목록을 UTC 날짜 단위로 묶어 중복 없이 반환합니다
func MissingDays(missing []time.Time) []time.Time {
	var days []time.Time
	seen := make(map[time.Time]struct{})
	for _, ts := range missing {
		u := ts.UTC()
		day := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	return days
}
