// internal/exchange/binance/client.go
package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/assist-by/swing/internal/domain"
)

// 바이낸스 klines 엔드포인트의 최대 조회 개수
const maxKlineLimit = 1500

// Client는 바이낸스 선물 공개 시장 데이터 API 클라이언트입니다
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption은 클라이언트 생성 옵션을 정의합니다
type ClientOption func(*Client)

// WithTimeout은 HTTP 클라이언트의 타임아웃을 설정합니다
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithBaseURL은 기본 URL을 설정합니다
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithTestnet은 테스트넷 사용 여부를 설정합니다
func WithTestnet(useTestnet bool) ClientOption {
	return func(c *Client) {
		if useTestnet {
			c.baseURL = "https://testnet.binancefuture.com"
		} else {
			c.baseURL = "https://fapi.binance.com"
		}
	}
}

// NewClient는 새로운 바이낸스 API 클라이언트를 생성합니다
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    "https://fapi.binance.com", // 기본값은 선물 거래소
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}

	// 옵션 적용
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// doRequest는 HTTP 요청을 실행하고 결과를 반환합니다
func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	// URL 생성
	reqURL, err := url.Parse(c.baseURL + endpoint)
	if err != nil {
		return nil, fmt.Errorf("URL 파싱 실패: %w", err)
	}
	if params != nil {
		reqURL.RawQuery = params.Encode()
	}

	// 요청 생성
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("요청 생성 실패: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	// 요청 실행
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API 요청 실패: %w", err)
	}
	defer resp.Body.Close()

	// 응답 읽기
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("응답 읽기 실패: %w", err)
	}

	// 상태 코드 확인
	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Code    int    `json:"code"`
			Message string `json:"msg"`
		}
		if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Message == "" {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: string(body)}
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Code: apiErr.Code, Message: apiErr.Message}
	}

	return body, nil
}

// GetServerTime은 서버 시간을 조회합니다
func (c *Client) GetServerTime(ctx context.Context) (time.Time, error) {
	resp, err := c.doRequest(ctx, "/fapi/v1/time", nil)
	if err != nil {
		return time.Time{}, err
	}

	var result struct {
		ServerTime int64 `json:"serverTime"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return time.Time{}, fmt.Errorf("서버 시간 파싱 실패: %w", err)
	}

	return time.UnixMilli(result.ServerTime).UTC(), nil
}

// GetKlines는 캔들 데이터를 조회합니다 (오래된 캔들이 먼저 옵니다)
func (c *Client) GetKlines(ctx context.Context, symbol string, interval domain.TimeInterval, limit int) (domain.CandleList, error) {
	if limit <= 0 || limit > maxKlineLimit {
		return nil, fmt.Errorf("limit은 1 이상 %d 이하이어야 합니다: %d", maxKlineLimit, limit)
	}

	params := url.Values{}
	params.Add("symbol", strings.ToUpper(symbol))
	params.Add("interval", string(interval))
	params.Add("limit", strconv.Itoa(limit))

	resp, err := c.doRequest(ctx, "/fapi/v1/klines", params)
	if err != nil {
		return nil, err
	}

	var rawCandles [][]interface{}
	if err := json.Unmarshal(resp, &rawCandles); err != nil {
		return nil, fmt.Errorf("캔들 데이터 파싱 실패: %w", err)
	}

	candles := make(domain.CandleList, 0, len(rawCandles))
	for i, raw := range rawCandles {
		candle, err := parseKline(raw)
		if err != nil {
			return nil, fmt.Errorf("캔들 %d 파싱 실패: %w", i, err)
		}
		candle.Symbol = strings.ToUpper(symbol)
		candle.Interval = interval
		candles = append(candles, candle)
	}

	return candles, nil
}

// parseKline은 [openTime, open, high, low, close, volume, closeTime, ...] 배열을 변환합니다
func parseKline(raw []interface{}) (domain.Candle, error) {
	if len(raw) < 7 {
		return domain.Candle{}, fmt.Errorf("필드 수 부족: %d", len(raw))
	}

	openTime, ok := raw[0].(float64)
	if !ok {
		return domain.Candle{}, fmt.Errorf("openTime 형식 오류: %v", raw[0])
	}
	closeTime, ok := raw[6].(float64)
	if !ok {
		return domain.Candle{}, fmt.Errorf("closeTime 형식 오류: %v", raw[6])
	}

	// 가격 문자열 변환
	values := make([]float64, 5)
	for i := 0; i < 5; i++ {
		s, ok := raw[i+1].(string)
		if !ok {
			return domain.Candle{}, fmt.Errorf("필드 %d 형식 오류: %v", i+1, raw[i+1])
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return domain.Candle{}, fmt.Errorf("필드 %d 변환 실패: %w", i+1, err)
		}
		values[i] = v
	}

	return domain.Candle{
		OpenTime:  time.UnixMilli(int64(openTime)).UTC(),
		CloseTime: time.UnixMilli(int64(closeTime)).UTC(),
		Open:      values[0],
		High:      values[1],
		Low:       values[2],
		Close:     values[3],
		Volume:    values[4],
	}, nil
}

// GetTopVolumeSymbols는 거래량 기준 상위 n개 심볼을 조회합니다
func (c *Client) GetTopVolumeSymbols(ctx context.Context, n int) ([]string, error) {
	resp, err := c.doRequest(ctx, "/fapi/v1/ticker/24hr", nil)
	if err != nil {
		return nil, fmt.Errorf("거래량 데이터 조회 실패: %w", err)
	}

	type symbolVolume struct {
		Symbol      string  `json:"symbol"`
		QuoteVolume float64 `json:"quoteVolume,string"`
	}

	var tickers []symbolVolume
	if err := json.Unmarshal(resp, &tickers); err != nil {
		return nil, fmt.Errorf("거래량 데이터 파싱 실패: %w", err)
	}

	// USDT 마진 선물만 필터링
	var filteredTickers []symbolVolume
	for _, ticker := range tickers {
		if strings.HasSuffix(ticker.Symbol, "USDT") {
			filteredTickers = append(filteredTickers, ticker)
		}
	}

	// 거래량 기준 내림차순 정렬
	sort.Slice(filteredTickers, func(i, j int) bool {
		return filteredTickers[i].QuoteVolume > filteredTickers[j].QuoteVolume
	})

	resultCount := min(n, len(filteredTickers))
	symbols := make([]string, resultCount)
	for i := 0; i < resultCount; i++ {
		symbols[i] = filteredTickers[i].Symbol
	}

	return symbols, nil
}
