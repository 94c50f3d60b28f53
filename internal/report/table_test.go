package report

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assist-by/swing/internal/domain"
	"github.com/assist-by/swing/internal/feature"
	"github.com/assist-by/swing/internal/indicator"
	"github.com/assist-by/swing/internal/store"
)

func testSet(t *testing.T) *feature.Set {
	t.Helper()
	baseTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	highs := []float64{100, 110, 106, 96, 92, 95, 103, 101, 90}
	lows := []float64{98, 105, 100, 91, 88, 90, 97, 95, 85}
	closes := []float64{99, 108, 105, 92, 90, 92, 102, 98, 86}

	candles := make(domain.CandleList, len(closes))
	for i := range closes {
		candles[i] = domain.Candle{
			OpenTime: baseTime.Add(time.Duration(i) * time.Hour),
			High:     highs[i],
			Low:      lows[i],
			Close:    closes[i],
			Symbol:   "BTCUSDT",
			Interval: domain.Interval1h,
		}
	}
	set, err := feature.NewExtractor(feature.DefaultSpecs(1, 0.05, indicator.SeekingHigh)...).
		Extract(context.Background(), candles)
	require.NoError(t, err)
	return set
}

func TestSwings(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Swings(&buf, testSet(t)))

	out := buf.String()
	assert.Contains(t, out, "BTCUSDT 1h")
	assert.Contains(t, out, "110.0000")
	assert.Contains(t, out, "88.0000")
	assert.Contains(t, out, "2024-01-01 01:00")
	assert.Equal(t, 2, strings.Count(out, "top"))
	assert.Equal(t, 1, strings.Count(out, "bottom"))
}

func TestExtrema(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Extrema(&buf, testSet(t)))

	out := buf.String()
	// 고점 1, 저점 4, 고점 6 순서
	first := strings.Index(out, "108.0000")
	second := strings.Index(out, "90.0000")
	third := strings.Index(out, "102.0000")
	require.True(t, first > 0 && second > 0 && third > 0)
	assert.Less(t, first, second)
	assert.Less(t, second, third)
}

func TestRecords(t *testing.T) {
	var buf bytes.Buffer
	err := Records(&buf, []store.SwingRecord{{
		Symbol:      "ETHUSDT",
		Interval:    "4h",
		KindName:    "bottom",
		Price:       2000.5,
		ExtremeTime: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		ConfirmTime: time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC),
	}})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "ETHUSDT")
	assert.Contains(t, buf.String(), "2000.5000")
}
