package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/assist-by/swing/internal/domain"
)

// Source는 OHLCV CSV 파일을 캔들 공급원으로 사용합니다.
// 헤더: open_time,open,high,low,close,volume (open_time은 unix ms 또는 RFC3339)
type Source struct {
	path string
}

// New는 CSV 공급원을 생성합니다
func New(path string) *Source {
	return &Source{path: path}
}

// GetServerTime은 현재 시각을 반환합니다
func (s *Source) GetServerTime(ctx context.Context) (time.Time, error) {
	return time.Now().UTC(), nil
}

// GetKlines는 파일 전체를 읽어 시간순으로 정렬한 뒤 마지막 limit개를 반환합니다
func (s *Source) GetKlines(ctx context.Context, symbol string, interval domain.TimeInterval, limit int) (domain.CandleList, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("CSV 파일 열기 실패: %w", err)
	}
	defer f.Close()

	candles, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}

	step, err := domain.TimeIntervalToDuration(interval)
	if err != nil {
		return nil, err
	}
	for i := range candles {
		candles[i].Symbol = strings.ToUpper(symbol)
		candles[i].Interval = interval
		candles[i].CloseTime = candles[i].OpenTime.Add(step - time.Millisecond)
	}

	if limit > 0 && len(candles) > limit {
		candles = candles[len(candles)-limit:]
	}
	return candles, nil
}

// Read는 CSV를 파싱해 오래된 순서로 정렬된 캔들 목록을 반환합니다
func Read(r io.Reader) (domain.CandleList, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("CSV 헤더가 없습니다")
		}
		return nil, fmt.Errorf("CSV 헤더 읽기 실패: %w", err)
	}

	cols, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var candles domain.CandleList
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%d번째 줄 읽기 실패: %w", line, err)
		}

		c, err := parseRecord(rec, cols)
		if err != nil {
			return nil, fmt.Errorf("%d번째 줄 파싱 실패: %w", line, err)
		}
		candles = append(candles, c)
	}

	sort.SliceStable(candles, func(i, j int) bool {
		return candles[i].OpenTime.Before(candles[j].OpenTime)
	})
	return candles, nil
}

var requiredColumns = []string{"open_time", "open", "high", "low", "close"}

func columnIndex(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	// "time"도 open_time으로 허용
	if _, ok := cols["open_time"]; !ok {
		if i, ok := cols["time"]; ok {
			cols["open_time"] = i
		}
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("필수 컬럼 누락: %s", name)
		}
	}
	return cols, nil
}

func parseRecord(rec []string, cols map[string]int) (domain.Candle, error) {
	field := func(name string) (string, bool) {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return "", false
		}
		return strings.TrimSpace(rec[i]), true
	}

	raw, _ := field("open_time")
	openTime, err := parseTime(raw)
	if err != nil {
		return domain.Candle{}, err
	}

	c := domain.Candle{OpenTime: openTime}
	targets := map[string]*float64{
		"open":  &c.Open,
		"high":  &c.High,
		"low":   &c.Low,
		"close": &c.Close,
	}
	for name, dst := range targets {
		s, ok := field(name)
		if !ok {
			return domain.Candle{}, fmt.Errorf("%s 값 누락", name)
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return domain.Candle{}, fmt.Errorf("%s 변환 실패: %w", name, err)
		}
		*dst = v
	}
	if s, ok := field("volume"); ok && s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return domain.Candle{}, fmt.Errorf("volume 변환 실패: %w", err)
		}
		c.Volume = v
	}
	return c, nil
}

func parseTime(s string) (time.Time, error) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("시간 형식 오류: %q", s)
	}
	return t.UTC(), nil
}
