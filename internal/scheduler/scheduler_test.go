package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingTask(counter *int32, err error) TaskFunc {
	return func(ctx context.Context) error {
		atomic.AddInt32(counter, 1)
		return err
	}
}

func TestScheduler_RunsOnIntervalBoundary(t *testing.T) {
	var runs int32
	// 작업이 실패해도 스케줄러는 계속 돌아야 함
	s := NewScheduler(20*time.Millisecond, countingTask(&runs, errors.New("boom")))

	done := make(chan error, 1)
	go func() { done <- s.Start(context.Background()) }()

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&runs) >= 2 }, 2*time.Second, 5*time.Millisecond)

	s.Stop()
	s.Stop() // 중복 호출 허용
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("스케줄러가 중지되지 않음")
	}
}

func TestScheduler_ContextCancel(t *testing.T) {
	var runs int32
	s := NewScheduler(time.Hour, countingTask(&runs, nil))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("스케줄러가 중지되지 않음")
	}
	assert.Equal(t, int32(0), atomic.LoadInt32(&runs))
}

func TestScheduler_NextWait(t *testing.T) {
	s := NewScheduler(time.Hour, countingTask(new(int32), nil))
	s.now = func() time.Time { return time.Date(2024, 1, 1, 10, 40, 0, 0, time.UTC) }

	wait, next := s.nextWait()
	assert.Equal(t, 20*time.Minute, wait)
	assert.Equal(t, time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC), next)
}

func TestCronScheduler(t *testing.T) {
	t.Run("잘못된 표현식", func(t *testing.T) {
		_, err := NewCronScheduler("every hour", countingTask(new(int32), nil))
		assert.Error(t, err)
	})

	t.Run("다음 실행 시각", func(t *testing.T) {
		s, err := NewCronScheduler("0 5 * * * *", countingTask(new(int32), nil))
		require.NoError(t, err)

		base := time.Date(2024, 1, 1, 10, 40, 0, 0, time.UTC)
		assert.Equal(t, time.Date(2024, 1, 1, 11, 5, 0, 0, time.UTC), s.Next(base))
	})

	t.Run("실행 후 중지", func(t *testing.T) {
		var runs int32
		s, err := NewCronScheduler("@every 1s", countingTask(&runs, nil))
		require.NoError(t, err)

		done := make(chan error, 1)
		go func() { done <- s.Start(context.Background()) }()

		assert.Eventually(t, func() bool { return atomic.LoadInt32(&runs) >= 1 }, 3*time.Second, 20*time.Millisecond)
		s.Stop()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("cron 스케줄러가 중지되지 않음")
		}
	})
}
