package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/assist-by/swing/internal/domain"
	"github.com/assist-by/swing/internal/indicator"
	"github.com/assist-by/swing/internal/store"
)

// Config는 HTTP 서버 설정입니다
type Config struct {
	Addr     string
	Recorder store.Recorder

	// 요청에서 생략된 값의 기본값
	Order    int
	Sigma    float64
	Start    indicator.SeekMode
	Interval domain.TimeInterval
}

// Server는 스윙 탐지 HTTP API를 제공합니다
type Server struct {
	cfg    Config
	router *gin.Engine
}

// NewServer는 라우트가 등록된 서버를 생성합니다
func NewServer(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.Recorder == nil {
		cfg.Recorder = store.NewNoopRecorder()
	}
	if cfg.Interval == "" {
		cfg.Interval = domain.Interval1h
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	s := &Server{cfg: cfg, router: router}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	v1.POST("/extrema", s.handleExtrema)
	v1.POST("/zigzag", s.handleZigzag)
	v1.GET("/swings/:symbol", s.handleSwings)
}

// Handler는 테스트와 외부 서버 연결을 위한 http.Handler를 반환합니다
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start는 HTTP 서버를 시작하고 ctx 취소 시 정상 종료합니다
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{Addr: s.cfg.Addr, Handler: s.router}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP 서버 시작: %s", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Println("HTTP 서버 종료 중")
		return srv.Shutdown(shCtx)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type extremaRequest struct {
	Series []float64 `json:"series"`
	Order  *int      `json:"order"`
}

func (s *Server) handleExtrema(c *gin.Context) {
	var req extremaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order := s.cfg.Order
	if req.Order != nil {
		order = *req.Order
	}

	tops, err := indicator.Tops(req.Series, order)
	if err != nil {
		writeError(c, err)
		return
	}
	bottoms, err := indicator.Bottoms(req.Series, order)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"length":  len(req.Series),
		"order":   order,
		"tops":    flagged(tops),
		"bottoms": flagged(bottoms),
	})
}

type candleInput struct {
	Time  *time.Time `json:"time,omitempty"`
	High  float64    `json:"high"`
	Low   float64    `json:"low"`
	Close float64    `json:"close"`
}

type zigzagRequest struct {
	Candles []candleInput `json:"candles"`
	Sigma   *float64      `json:"sigma"`
	Start   string        `json:"start"`
}

type swingDTO struct {
	Kind         string     `json:"kind"`
	ConfirmIndex int        `json:"confirmIndex"`
	ExtremeIndex int        `json:"extremeIndex"`
	Price        float64    `json:"price"`
	ExtremeTime  *time.Time `json:"extremeTime,omitempty"`
}

func (s *Server) handleZigzag(c *gin.Context) {
	var req zigzagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	opt := indicator.ZigzagOption{Sigma: s.cfg.Sigma, Start: s.cfg.Start}
	if req.Sigma != nil {
		opt.Sigma = *req.Sigma
	}
	if req.Start != "" {
		start, err := indicator.ParseSeekMode(strings.ToLower(req.Start))
		if err != nil {
			writeError(c, err)
			return
		}
		opt.Start = start
	}

	prices := make([]indicator.PriceData, len(req.Candles))
	for i, in := range req.Candles {
		prices[i] = indicator.PriceData{High: in.High, Low: in.Low, Close: in.Close}
		if in.Time != nil {
			prices[i].Time = *in.Time
		}
	}

	tops, bottoms, err := indicator.Zigzag(prices, opt)
	if err != nil {
		writeError(c, err)
		return
	}

	toDTO := func(points []indicator.SwingPoint) []swingDTO {
		out := make([]swingDTO, 0, len(points))
		for _, sp := range points {
			d := swingDTO{
				Kind:         sp.Kind.String(),
				ConfirmIndex: sp.ConfirmIndex,
				ExtremeIndex: sp.ExtremeIndex,
				Price:        sp.Price,
			}
			if t := req.Candles[sp.ExtremeIndex].Time; t != nil {
				d.ExtremeTime = t
			}
			out = append(out, d)
		}
		return out
	}

	c.JSON(http.StatusOK, gin.H{
		"sigma":   opt.Sigma,
		"start":   opt.Start.String(),
		"tops":    toDTO(tops),
		"bottoms": toDTO(bottoms),
		"swings":  toDTO(indicator.MergeSwings(tops, bottoms)),
	})
}

func (s *Server) handleSwings(c *gin.Context) {
	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol은 필수입니다"})
		return
	}

	interval := s.cfg.Interval
	if v := c.Query("interval"); v != "" {
		interval = domain.TimeInterval(v)
	}
	if _, err := domain.TimeIntervalToDuration(interval); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	limit := 50
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("유효하지 않은 limit: %q", v)})
			return
		}
		limit = n
	}

	records, err := s.cfg.Recorder.LatestSwings(c.Request.Context(), symbol, interval, limit)
	if err != nil {
		log.Printf("스윙 기록 조회 실패: %v", err)
		writeError(c, err)
		return
	}
	if records == nil {
		records = []store.SwingRecord{}
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol":   symbol,
		"interval": string(interval),
		"swings":   records,
	})
}

// writeError는 도메인 에러를 HTTP 상태 코드로 변환합니다
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, indicator.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, indicator.ErrNotImplemented):
		status = http.StatusNotImplemented
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func flagged(flags []bool) []int {
	idx := make([]int, 0)
	for i, f := range flags {
		if f {
			idx = append(idx, i)
		}
	}
	return idx
}
