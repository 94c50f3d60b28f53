package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// cronParser는 초 필드를 포함한 6필드 표현식과 @every 같은 기술자를 해석합니다
var cronParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// CronScheduler는 cron 표현식에 맞춰 작업을 실행합니다
type CronScheduler struct {
	cron     *cron.Cron
	schedule cron.Schedule
	task     Task

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewCronScheduler는 새로운 cron 스케줄러를 생성합니다. 예: "0 5 * * * *" (매시 5분)
func NewCronScheduler(spec string, task Task) (*CronScheduler, error) {
	schedule, err := cronParser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("cron 표현식 파싱 실패 '%s': %w", spec, err)
	}

	return &CronScheduler{
		cron:     cron.New(cron.WithParser(cronParser)),
		schedule: schedule,
		task:     task,
		stopCh:   make(chan struct{}),
	}, nil
}

// Start는 스케줄러를 시작하고 ctx 취소 또는 Stop 호출까지 대기합니다
func (s *CronScheduler) Start(ctx context.Context) error {
	s.cron.Schedule(s.schedule, cron.FuncJob(func() {
		if err := s.task.Execute(ctx); err != nil {
			log.Printf("작업 실행 실패: %v", err)
		}
	}))
	s.cron.Start()
	log.Printf("cron 스케줄러 시작 (다음 실행: %s)", s.schedule.Next(time.Now()).Format("2006-01-02 15:04:05"))

	var err error
	select {
	case <-ctx.Done():
		err = ctx.Err()
	case <-s.stopCh:
	}

	// 실행 중인 작업이 끝날 때까지 대기
	<-s.cron.Stop().Done()
	log.Println("cron 스케줄러 중지")
	return err
}

// Stop은 스케줄러를 중지합니다
func (s *CronScheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// Next는 기준 시각 이후의 다음 실행 시각을 반환합니다
func (s *CronScheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t)
}
