package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assist-by/swing/internal/domain"
	"github.com/assist-by/swing/internal/feature"
	"github.com/assist-by/swing/internal/indicator"
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
			Open:     closes[i],
			High:     highs[i],
			Low:      lows[i],
			Close:    closes[i],
			Symbol:   "BTCUSDT",
			Interval: domain.Interval1h,
		}
	}

	ex := feature.NewExtractor(feature.DefaultSpecs(1, 0.05, indicator.SeekingHigh)...)
	set, err := ex.Extract(context.Background(), candles)
	require.NoError(t, err)
	return set
}

func newTestRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "swing.db"))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestSQLiteRecorder_RecordAndRead(t *testing.T) {
	ctx := context.Background()
	r := newTestRecorder(t)
	set := testSet(t)

	runID, err := r.RecordFeatures(ctx, set)
	require.NoError(t, err)
	assert.Len(t, runID, 36)

	var extremaCount int
	require.NoError(t, r.db.QueryRow(`SELECT COUNT(*) FROM extrema WHERE run_id = ?`, runID).Scan(&extremaCount))
	assert.Equal(t, 3, extremaCount) // 고점 1, 6 / 저점 4

	all, err := r.LatestSwings(ctx, "btcusdt", domain.Interval1h, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, runID, all[0].RunID)
	assert.Equal(t, domain.SwingTop, all[0].Kind)
	assert.Equal(t, 3, all[0].ConfirmIndex)
	assert.Equal(t, 1, all[0].ExtremeIndex)
	assert.Equal(t, 110.0, all[0].Price)
	assert.Equal(t, time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC), all[0].ExtremeTime)
	assert.Equal(t, time.Date(2024, 1, 1, 3, 0, 0, 0, time.UTC), all[0].ConfirmTime)

	last2, err := r.LatestSwings(ctx, "BTCUSDT", domain.Interval1h, 2)
	require.NoError(t, err)
	require.Len(t, last2, 2)
	assert.Equal(t, domain.SwingBottom, last2[0].Kind)
	assert.Equal(t, "bottom", last2[0].KindName)
	assert.Equal(t, 88.0, last2[0].Price)
	assert.Equal(t, 8, last2[1].ConfirmIndex)
}

func TestSQLiteRecorder_LatestRunWins(t *testing.T) {
	ctx := context.Background()
	r := newTestRecorder(t)

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return clock }
	_, err := r.RecordFeatures(ctx, testSet(t))
	require.NoError(t, err)

	clock = clock.Add(time.Hour)
	second, err := r.RecordFeatures(ctx, testSet(t))
	require.NoError(t, err)

	swings, err := r.LatestSwings(ctx, "BTCUSDT", domain.Interval1h, 10)
	require.NoError(t, err)
	require.NotEmpty(t, swings)
	for _, s := range swings {
		assert.Equal(t, second, s.RunID)
	}
}

func TestSQLiteRecorder_Empty(t *testing.T) {
	ctx := context.Background()
	r := newTestRecorder(t)

	swings, err := r.LatestSwings(ctx, "ETHUSDT", domain.Interval4h, 10)
	require.NoError(t, err)
	assert.Empty(t, swings)

	_, err = r.RecordFeatures(ctx, &feature.Set{})
	assert.Error(t, err)
}

func TestNoopRecorder(t *testing.T) {
	var rec Recorder = NewNoopRecorder()
	id, err := rec.RecordFeatures(context.Background(), nil)
	assert.NoError(t, err)
	assert.Empty(t, id)
	assert.NoError(t, rec.Close())
}
