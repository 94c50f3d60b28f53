package store

import (
	"context"
	"time"

	"github.com/assist-by/swing/internal/domain"
	"github.com/assist-by/swing/internal/feature"
)

// SwingRecord는 저장된 스윙 포인트 한 건입니다
type SwingRecord struct {
	RunID        string           `json:"runId"`
	Symbol       string           `json:"symbol"`
	Interval     string           `json:"interval"`
	Kind         domain.SwingKind `json:"-"`
	KindName     string           `json:"kind"`
	ConfirmIndex int              `json:"confirmIndex"`
	ExtremeIndex int              `json:"extremeIndex"`
	Price        float64          `json:"price"`
	ExtremeTime  time.Time        `json:"extremeTime"`
	ConfirmTime  time.Time        `json:"confirmTime"`
}

// Recorder는 추출 결과를 기록하고 조회합니다
type Recorder interface {
	// RecordFeatures는 추출 결과 한 건을 저장하고 실행 ID를 반환합니다
	RecordFeatures(ctx context.Context, set *feature.Set) (string, error)
	// LatestSwings는 심볼/간격의 가장 최근 실행에서 마지막 limit개 스윙을 확정 순서로 반환합니다
	LatestSwings(ctx context.Context, symbol string, interval domain.TimeInterval, limit int) ([]SwingRecord, error)
	Close() error
}

// NoopRecorder는 저장소가 설정되지 않았을 때 사용합니다
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordFeatures(_ context.Context, _ *feature.Set) (string, error) {
	return "", nil
}

func (n *NoopRecorder) LatestSwings(_ context.Context, _ string, _ domain.TimeInterval, _ int) ([]SwingRecord, error) {
	return nil, nil
}

func (n *NoopRecorder) Close() error { return nil }
