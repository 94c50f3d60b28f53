package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/assist-by/swing/internal/domain"
	"github.com/assist-by/swing/internal/indicator"
)

type Config struct {
	// 바이낸스 API 설정
	Binance struct {
		BaseURL    string        `envconfig:"BINANCE_BASE_URL" default:"https://fapi.binance.com"`
		Timeout    time.Duration `envconfig:"BINANCE_TIMEOUT" default:"10s"`
		UseTestnet bool          `envconfig:"USE_TESTNET" default:"false"`
	}

	// 애플리케이션 설정
	App struct {
		Symbols       []string      `envconfig:"SYMBOLS" default:"BTCUSDT"`
		TopSymbols    int           `envconfig:"TOP_SYMBOLS" default:"0"`
		Interval      string        `envconfig:"INTERVAL" default:"1h"`
		CandleLimit   int           `envconfig:"CANDLE_LIMIT" default:"500"`
		FetchInterval time.Duration `envconfig:"FETCH_INTERVAL" default:"1h"`
		ScheduleCron  string        `envconfig:"SCHEDULE_CRON"`
	}

	// 스윙 탐지 설정
	Swing struct {
		Order int     `envconfig:"SWING_ORDER" default:"3"`
		Sigma float64 `envconfig:"SWING_SIGMA" default:"0.02"`
		Start string  `envconfig:"SWING_START" default:"high"`
	}

	// 저장소 설정 (빈 값이면 기록하지 않음)
	Store struct {
		Path string `envconfig:"STORE_PATH" default:"swing.db"`
	}

	// Discord 알림 설정 (비어있으면 알림 없음)
	Discord struct {
		SwingWebhook string `envconfig:"DISCORD_SWING_WEBHOOK"`
		ErrorWebhook string `envconfig:"DISCORD_ERROR_WEBHOOK"`
	}

	// HTTP 서버 설정
	HTTP struct {
		Addr string `envconfig:"HTTP_ADDR" default:":8080"`
	}
}

// ValidateConfig는 설정이 유효한지 확인합니다.
func ValidateConfig(cfg *Config) error {
	if len(cfg.App.Symbols) == 0 && cfg.App.TopSymbols <= 0 {
		return fmt.Errorf("SYMBOLS 또는 TOP_SYMBOLS 중 하나는 지정되어야 합니다")
	}

	if _, err := domain.TimeIntervalToDuration(domain.TimeInterval(cfg.App.Interval)); err != nil {
		return fmt.Errorf("INTERVAL 검증 실패: %w", err)
	}

	if cfg.App.CandleLimit < 1 || cfg.App.CandleLimit > 1500 {
		return fmt.Errorf("CANDLE_LIMIT은 1 이상 1500 이하이어야 합니다")
	}

	if cfg.App.ScheduleCron == "" && cfg.App.FetchInterval < 1*time.Minute {
		return fmt.Errorf("FETCH_INTERVAL은 1분 이상이어야 합니다")
	}

	if err := indicator.ValidateExtremumOption(indicator.ExtremumOption{Order: cfg.Swing.Order}); err != nil {
		return fmt.Errorf("SWING_ORDER 검증 실패: %w", err)
	}

	start, err := indicator.ParseSeekMode(cfg.Swing.Start)
	if err != nil {
		return fmt.Errorf("SWING_START 검증 실패: %w", err)
	}

	if err := indicator.ValidateZigzagOption(indicator.ZigzagOption{Sigma: cfg.Swing.Sigma, Start: start}); err != nil {
		return fmt.Errorf("SWING_SIGMA 검증 실패: %w", err)
	}

	return nil
}

// SeekMode는 설정된 지그재그 시작 방향을 반환합니다
func (c *Config) SeekMode() indicator.SeekMode {
	mode, err := indicator.ParseSeekMode(c.Swing.Start)
	if err != nil {
		return indicator.SeekingHigh
	}
	return mode
}

// LoadConfig는 환경변수에서 설정을 로드합니다.
func LoadConfig() (*Config, error) {
	// .env 파일 로드 (없으면 환경변수만 사용)
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf(".env 파일 로드 실패: %w", err)
		}
		log.Printf(".env 파일이 없어 환경변수만 사용합니다")
	}

	var cfg Config
	// 환경변수를 구조체로 파싱
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("환경변수 처리 실패: %w", err)
	}

	// 설정값 검증
	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("설정값 검증 실패: %w", err)
	}

	return &cfg, nil
}
