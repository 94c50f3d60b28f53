package scheduler

import (
	"context"
	"log"
	"sync"
	"time"
)

// Task는 스케줄러가 실행할 작업을 정의하는 인터페이스입니다
type Task interface {
	Execute(ctx context.Context) error
}

// TaskFunc는 함수를 Task로 사용할 수 있게 합니다
type TaskFunc func(ctx context.Context) error

// Execute는 함수를 호출합니다
func (f TaskFunc) Execute(ctx context.Context) error {
	return f(ctx)
}

// Runner는 스케줄러 공통 동작입니다
type Runner interface {
	Start(ctx context.Context) error
	Stop()
}

// Scheduler는 interval 경계에 맞춰 작업을 실행하는 스케줄러입니다
type Scheduler struct {
	interval time.Duration
	task     Task
	now      func() time.Time

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewScheduler는 새로운 스케줄러를 생성합니다
func NewScheduler(interval time.Duration, task Task) *Scheduler {
	return &Scheduler{
		interval: interval,
		task:     task,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// nextWait는 다음 interval 경계까지 남은 시간을 계산합니다
func (s *Scheduler) nextWait() (time.Duration, time.Time) {
	now := s.now()
	nextRun := now.Truncate(s.interval).Add(s.interval)
	return nextRun.Sub(now), nextRun
}

// Start는 스케줄러를 시작합니다. ctx 취소 시 ctx.Err(), Stop 호출 시 nil을 반환합니다
func (s *Scheduler) Start(ctx context.Context) error {
	waitDuration, nextRun := s.nextWait()
	log.Printf("다음 실행까지 %v 대기 (다음 실행: %s)",
		waitDuration.Round(time.Second),
		nextRun.Format("15:04:05"))

	timer := time.NewTimer(waitDuration)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-s.stopCh:
			return nil

		case <-timer.C:
			// 에러가 발생해도 계속 실행
			if err := s.task.Execute(ctx); err != nil {
				log.Printf("작업 실행 실패: %v", err)
			}

			waitDuration, nextRun = s.nextWait()
			log.Printf("다음 실행까지 %v 대기 (다음 실행: %s)",
				waitDuration.Round(time.Second),
				nextRun.Format("15:04:05"))

			timer.Reset(waitDuration)
		}
	}
}

// Stop은 스케줄러를 중지합니다. 여러 번 호출해도 안전합니다
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}
