package market

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/assist-by/swing/internal/config"
	"github.com/assist-by/swing/internal/domain"
	"github.com/assist-by/swing/internal/exchange"
	"github.com/assist-by/swing/internal/feature"
	"github.com/assist-by/swing/internal/notification"
	"github.com/assist-by/swing/internal/store"
)

// ResultHandler는 심볼 하나의 추출이 끝날 때마다 호출됩니다
type ResultHandler func(set *feature.Set, runID string)

// Collector는 캔들을 수집해 스윙 특징을 추출하고 기록합니다
type Collector struct {
	exchange  exchange.Exchange
	extractor *feature.Extractor
	recorder  store.Recorder
	config    *config.Config

	candleLimit int
	retry       RetryConfig
	onResult    ResultHandler
	notifier    notification.Notifier
	lastAlert   map[string]time.Time // 심볼별 마지막으로 알린 확정 시각
	alertMu     sync.Mutex
	mu          sync.Mutex
}

// NewCollector는 새로운 데이터 수집기를 생성합니다
func NewCollector(exchange exchange.Exchange, extractor *feature.Extractor, recorder store.Recorder, config *config.Config, opts ...CollectorOption) *Collector {
	if recorder == nil {
		recorder = store.NewNoopRecorder()
	}
	c := &Collector{
		exchange:    exchange,
		extractor:   extractor,
		recorder:    recorder,
		config:      config,
		candleLimit: config.App.CandleLimit,
		retry:       DefaultRetryConfig,
		lastAlert:   make(map[string]time.Time),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// CollectorOption은 수집기의 옵션을 정의합니다
type CollectorOption func(*Collector)

// WithCandleLimit은 캔들 데이터 조회 개수를 설정합니다
func WithCandleLimit(limit int) CollectorOption {
	return func(c *Collector) {
		c.candleLimit = limit
	}
}

// WithRetryConfig는 재시도 설정을 지정합니다
func WithRetryConfig(config RetryConfig) CollectorOption {
	return func(c *Collector) {
		c.retry = config
	}
}

// WithResultHandler는 추출 결과 콜백을 지정합니다
func WithResultHandler(h ResultHandler) CollectorOption {
	return func(c *Collector) {
		c.onResult = h
	}
}

// WithNotifier는 스윙 확정과 수집 실패를 알릴 대상을 지정합니다
func WithNotifier(n notification.Notifier) CollectorOption {
	return func(c *Collector) {
		c.notifier = n
	}
}

// Execute는 scheduler.Task 구현입니다. 실패 시 알림을 보냅니다
func (c *Collector) Execute(ctx context.Context) error {
	if err := c.Collect(ctx); err != nil {
		if c.notifier != nil {
			if err := c.notifier.SendError(err); err != nil {
				log.Printf("에러 알림 전송 실패: %v", err)
			}
		}
		return err
	}
	return nil
}

// Collect는 한 번의 수집 사이클을 수행합니다. 한 심볼의 실패가 다른 심볼을 막지 않습니다
func (c *Collector) Collect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	symbols, err := c.symbols(ctx)
	if err != nil {
		return err
	}

	var errs []error
	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return err
		}

		set, runID, err := c.CollectSymbol(ctx, symbol)
		if err != nil {
			log.Printf("%s 처리 실패: %v", symbol, err)
			errs = append(errs, fmt.Errorf("%s: %w", symbol, err))
			continue
		}
		if c.onResult != nil {
			c.onResult(set, runID)
		}
	}

	return errors.Join(errs...)
}

// symbols는 이번 사이클에 처리할 심볼 목록을 결정합니다
func (c *Collector) symbols(ctx context.Context) ([]string, error) {
	if c.config.App.TopSymbols > 0 {
		lister, ok := c.exchange.(exchange.SymbolLister)
		if !ok {
			return nil, fmt.Errorf("상위 거래량 심볼 조회를 지원하지 않는 공급원입니다")
		}

		var symbols []string
		err := withRetry(ctx, c.retry, "상위 거래량 심볼 조회", func() error {
			var err error
			symbols, err = lister.GetTopVolumeSymbols(ctx, c.config.App.TopSymbols)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("상위 거래량 심볼 조회 실패: %w", err)
		}
		return symbols, nil
	}

	if len(c.config.App.Symbols) > 0 {
		return c.config.App.Symbols, nil
	}
	// 기본값으로 BTCUSDT 사용
	return []string{"BTCUSDT"}, nil
}

// CollectSymbol은 심볼 하나의 캔들을 조회해 특징을 추출하고 기록합니다
func (c *Collector) CollectSymbol(ctx context.Context, symbol string) (*feature.Set, string, error) {
	interval := domain.TimeInterval(c.config.App.Interval)

	var candles domain.CandleList
	err := withRetry(ctx, c.retry, fmt.Sprintf("%s 캔들 데이터 조회", symbol), func() error {
		var err error
		candles, err = c.exchange.GetKlines(ctx, symbol, interval, c.candleLimit)
		return err
	})
	if err != nil {
		return nil, "", err
	}
	log.Printf("%s 심볼의 캔들 데이터 %d개 수집 완료", symbol, len(candles))

	if err := candles.EnsureAscending(); err != nil {
		return nil, "", err
	}

	candles, err = c.closedCandles(ctx, symbol, candles)
	if err != nil {
		return nil, "", err
	}

	// 누락 구간은 계산을 막지 않고 기록만 함
	if step, err := domain.TimeIntervalToDuration(interval); err == nil {
		if gaps, err := candles.SummarizeGaps(step, 1); err == nil && gaps.Count > 0 {
			log.Printf("%s 캔들 %d개 누락 (누락 일자: %d일, 첫 누락: %s)",
				symbol, gaps.Count, gaps.Days, gaps.First.Format("2006-01-02 15:04"))
		}
	}

	set, err := c.extractor.Extract(ctx, candles)
	if err != nil {
		return nil, "", fmt.Errorf("특징 추출 실패: %w", err)
	}
	if set.Symbol == "" {
		set.Symbol = symbol
	}
	if set.Interval == "" {
		set.Interval = interval
	}

	runID, err := c.recorder.RecordFeatures(ctx, set)
	if err != nil {
		return nil, "", fmt.Errorf("결과 저장 실패: %w", err)
	}

	log.Printf("%s 스윙 %d개 (고점 %d, 저점 %d), 극값 고점 %d개, 저점 %d개",
		symbol, len(set.Swings), len(set.SwingTops), len(set.SwingBottoms),
		len(set.TopIndices()), len(set.BottomIndices()))

	c.notifySwing(set)

	return set, runID, nil
}

// closedCandles는 서버 시각 기준으로 아직 마감되지 않은 뒤쪽 캔들을 제외합니다
func (c *Collector) closedCandles(ctx context.Context, symbol string, candles domain.CandleList) (domain.CandleList, error) {
	var now time.Time
	err := withRetry(ctx, c.retry, "서버 시간 조회", func() error {
		var err error
		now, err = c.exchange.GetServerTime(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("서버 시간 조회 실패: %w", err)
	}

	closed := candles.ClosedAt(now)
	if dropped := len(candles) - len(closed); dropped > 0 {
		log.Printf("%s 진행 중인 캔들 %d개 제외", symbol, dropped)
	}
	if len(closed) == 0 {
		return nil, fmt.Errorf("마감된 캔들이 없습니다")
	}
	return closed, nil
}

// notifySwing은 마지막 캔들에서 확정된 스윙이 있으면 한 번만 알립니다
func (c *Collector) notifySwing(set *feature.Set) {
	if c.notifier == nil || len(set.Swings) == 0 {
		return
	}

	lastCandle, ok := set.Candles.GetLastCandle()
	if !ok {
		return
	}
	last := set.Swings[len(set.Swings)-1]
	if last.ConfirmIndex != len(set.Candles)-1 {
		return
	}

	c.alertMu.Lock()
	defer c.alertMu.Unlock()

	confirmTime := lastCandle.OpenTime
	key := set.Symbol + "|" + string(set.Interval)
	if prev, ok := c.lastAlert[key]; ok && !confirmTime.After(prev) {
		return
	}

	alert := notification.SwingAlert{
		Symbol:      set.Symbol,
		Interval:    set.Interval,
		Kind:        last.Kind,
		Price:       last.Price,
		ExtremeTime: set.Candles[last.ExtremeIndex].OpenTime,
		ConfirmTime: confirmTime,
		LastClose:   lastCandle.Close,
	}
	if err := c.notifier.SendSwing(alert); err != nil {
		log.Printf("%s 스윙 알림 전송 실패: %v", set.Symbol, err)
		return
	}
	c.lastAlert[key] = confirmTime
}
