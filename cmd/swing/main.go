package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	osSignal "os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/assist-by/swing/internal/chart"
	"github.com/assist-by/swing/internal/config"
	"github.com/assist-by/swing/internal/domain"
	"github.com/assist-by/swing/internal/exchange"
	eBinance "github.com/assist-by/swing/internal/exchange/binance"
	"github.com/assist-by/swing/internal/exchange/csvfile"
	"github.com/assist-by/swing/internal/feature"
	"github.com/assist-by/swing/internal/market"
	"github.com/assist-by/swing/internal/notification/discord"
	"github.com/assist-by/swing/internal/report"
	"github.com/assist-by/swing/internal/scheduler"
	"github.com/assist-by/swing/internal/store"
	"github.com/assist-by/swing/internal/transport/http/api"
)

func main() {
	// 명령줄 플래그 정의 (.env 설정보다 우선)
	symbolFlag := flag.String("symbol", "", "분석할 심볼 (SYMBOLS 대신 사용)")
	intervalFlag := flag.String("interval", "", "캔들 간격 (예: 15m, 1h, 4h)")
	limitFlag := flag.Int("limit", 0, "조회할 캔들 개수")
	csvFlag := flag.String("csv", "", "바이낸스 대신 읽을 OHLCV CSV 파일")
	orderFlag := flag.Int("order", 0, "롤링 윈도우 반경")
	sigmaFlag := flag.Float64("sigma", 0, "지그재그 반전 비율 (0.02 -> 2%)")
	startFlag := flag.String("start", "", "지그재그 시작 방향 (high|low)")
	chartFlag := flag.String("chart", "", "캔들 차트 HTML 출력 경로")
	watchFlag := flag.Bool("watch", false, "스케줄에 따라 반복 수집")
	serveFlag := flag.Bool("serve", false, "HTTP API 서버 실행")
	historyFlag := flag.Bool("history", false, "저장된 최근 스윙 기록을 출력하고 종료")

	// 플래그 파싱
	flag.Parse()

	// 컨텍스트 생성
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 로그 설정
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("스윙 탐지기 시작...")

	// 설정 로드
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("설정 로드 실패: %v", err)
	}

	applyFlags(cfg, *symbolFlag, *intervalFlag, *limitFlag, *orderFlag, *sigmaFlag, *startFlag)
	if err := config.ValidateConfig(cfg); err != nil {
		log.Fatalf("플래그 검증 실패: %v", err)
	}

	// 캔들 공급원 선택
	var source exchange.Exchange
	if *csvFlag != "" {
		log.Printf("CSV 파일을 캔들 공급원으로 사용합니다: %s", *csvFlag)
		source = csvfile.New(*csvFlag)
	} else {
		opts := []eBinance.ClientOption{
			eBinance.WithTimeout(cfg.Binance.Timeout),
			eBinance.WithTestnet(cfg.Binance.UseTestnet),
		}
		if !cfg.Binance.UseTestnet {
			opts = append(opts, eBinance.WithBaseURL(cfg.Binance.BaseURL))
		}
		source = eBinance.NewClient(opts...)
	}

	// 저장소 생성
	var recorder store.Recorder = store.NewNoopRecorder()
	if cfg.Store.Path != "" {
		sqliteRecorder, err := store.NewSQLiteRecorder(cfg.Store.Path)
		if err != nil {
			log.Fatalf("저장소 초기화 실패: %v", err)
		}
		recorder = sqliteRecorder
	}
	defer recorder.Close()

	if *historyFlag {
		printHistory(ctx, recorder, cfg)
		return
	}

	extractor := feature.NewExtractor(feature.DefaultSpecs(cfg.Swing.Order, cfg.Swing.Sigma, cfg.SeekMode())...)

	collectorOpts := []market.CollectorOption{
		market.WithRetryConfig(market.DefaultRetryConfig),
		market.WithResultHandler(func(set *feature.Set, runID string) {
			printResult(set, runID, *chartFlag, len(cfg.App.Symbols) > 1 || cfg.App.TopSymbols > 0)
		}),
	}

	// Discord 클라이언트 생성 (반복 수집에서만 사용)
	var discordClient *discord.Client
	if *watchFlag && cfg.Discord.SwingWebhook != "" {
		discordClient = discord.NewClient(
			cfg.Discord.SwingWebhook,
			cfg.Discord.ErrorWebhook,
			discord.WithTimeout(10*time.Second),
		)
		collectorOpts = append(collectorOpts, market.WithNotifier(discordClient))

		if err := discordClient.SendInfo("📈 스윙 탐지기가 시작되었습니다."); err != nil {
			log.Printf("시작 알림 전송 실패: %v", err)
		}
	}

	collector := market.NewCollector(source, extractor, recorder, cfg, collectorOpts...)

	// 단발 실행
	if !*watchFlag && !*serveFlag {
		if err := collector.Collect(ctx); err != nil {
			log.Printf("수집 실패: %v", err)
			recorder.Close()
			os.Exit(1)
		}
		log.Println("프로그램을 종료합니다.")
		return
	}

	g, gctx := errgroup.WithContext(ctx)

	var runner scheduler.Runner
	if *watchFlag {
		if cfg.App.ScheduleCron != "" {
			cronScheduler, err := scheduler.NewCronScheduler(cfg.App.ScheduleCron, collector)
			if err != nil {
				log.Fatalf("스케줄러 생성 실패: %v", err)
			}
			runner = cronScheduler
		} else {
			runner = scheduler.NewScheduler(cfg.App.FetchInterval, collector)
		}

		g.Go(func() error {
			// 시작 직후 한 번 수집
			if err := collector.Collect(gctx); err != nil {
				log.Printf("초기 수집 실패: %v", err)
			}
			return runner.Start(gctx)
		})
	}

	if *serveFlag {
		server := api.NewServer(api.Config{
			Addr:     cfg.HTTP.Addr,
			Recorder: recorder,
			Order:    cfg.Swing.Order,
			Sigma:    cfg.Swing.Sigma,
			Start:    cfg.SeekMode(),
			Interval: domain.TimeInterval(cfg.App.Interval),
		})
		g.Go(func() error {
			return server.Start(gctx)
		})
	}

	// 시그널 처리
	sigChan := make(chan os.Signal, 1)
	osSignal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			log.Printf("시스템 종료 신호 수신: %v", sig)
		case <-gctx.Done():
		}
		if runner != nil {
			runner.Stop()
		}
		cancel()
	}()

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("실행 중 에러 발생: %v", err)
		if discordClient != nil {
			if err := discordClient.SendError(err); err != nil {
				log.Printf("에러 알림 전송 실패: %v", err)
			}
		}
	}

	// 종료 알림 전송
	if discordClient != nil {
		if err := discordClient.SendInfo("👋 스윙 탐지기가 정상적으로 종료되었습니다."); err != nil {
			log.Printf("종료 알림 전송 실패: %v", err)
		}
	}

	log.Println("프로그램을 종료합니다.")
}

// applyFlags는 비어있지 않은 플래그 값으로 설정을 덮어씁니다
func applyFlags(cfg *config.Config, symbol, interval string, limit, order int, sigma float64, start string) {
	if symbol != "" {
		cfg.App.Symbols = []string{strings.ToUpper(symbol)}
		cfg.App.TopSymbols = 0
	}
	if interval != "" {
		cfg.App.Interval = interval
	}
	if limit > 0 {
		cfg.App.CandleLimit = limit
	}
	if order != 0 {
		cfg.Swing.Order = order
	}
	if sigma != 0 {
		cfg.Swing.Sigma = sigma
	}
	if start != "" {
		cfg.Swing.Start = start
	}
}

// printResult는 추출 결과를 표로 출력하고 필요하면 차트를 저장합니다
func printResult(set *feature.Set, runID, chartPath string, perSymbol bool) {
	if runID != "" {
		log.Printf("%s 결과 저장 완료 (run: %s)", set.Symbol, runID)
	}
	if err := report.Swings(os.Stdout, set); err != nil {
		log.Printf("스윙 출력 실패: %v", err)
	}
	if err := report.Extrema(os.Stdout, set); err != nil {
		log.Printf("극값 출력 실패: %v", err)
	}

	if chartPath == "" {
		return
	}
	if perSymbol {
		ext := filepath.Ext(chartPath)
		chartPath = fmt.Sprintf("%s_%s%s", strings.TrimSuffix(chartPath, ext), set.Symbol, ext)
	}

	f, err := os.Create(chartPath)
	if err != nil {
		log.Printf("차트 파일 생성 실패: %v", err)
		return
	}
	defer f.Close()

	if err := chart.Render(f, set); err != nil {
		log.Printf("차트 렌더링 실패: %v", err)
		return
	}
	log.Printf("차트 저장 완료: %s", chartPath)
}

// printHistory는 저장된 심볼별 최근 스윙을 출력합니다
func printHistory(ctx context.Context, recorder store.Recorder, cfg *config.Config) {
	interval := domain.TimeInterval(cfg.App.Interval)
	for _, symbol := range cfg.App.Symbols {
		records, err := recorder.LatestSwings(ctx, symbol, interval, 20)
		if err != nil {
			log.Printf("%s 기록 조회 실패: %v", symbol, err)
			continue
		}
		if err := report.Records(os.Stdout, records); err != nil {
			log.Printf("기록 출력 실패: %v", err)
		}
	}
}
