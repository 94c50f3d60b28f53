package binance

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assist-by/swing/internal/domain"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(WithBaseURL(srv.URL), WithTimeout(2*time.Second))
}

func TestClient_GetKlines(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fapi/v1/klines", r.URL.Path)
		assert.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
		assert.Equal(t, "1h", r.URL.Query().Get("interval"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))

		w.Write([]byte(`[
			[1704067200000,"100.0","110.5","95.0","105.0","12.5",1704070799999,"0",10,"0","0","0"],
			[1704070800000,"105.0","108.0","101.0","102.0","8.0",1704074399999,"0",7,"0","0","0"]
		]`))
	})

	candles, err := client.GetKlines(context.Background(), "btcusdt", domain.Interval1h, 2)
	require.NoError(t, err)
	require.Len(t, candles, 2)
	require.NoError(t, candles.EnsureAscending())

	first := candles[0]
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), first.OpenTime)
	assert.Equal(t, 110.5, first.High)
	assert.Equal(t, 95.0, first.Low)
	assert.Equal(t, 105.0, first.Close)
	assert.Equal(t, 12.5, first.Volume)
	assert.Equal(t, "BTCUSDT", first.Symbol)
	assert.Equal(t, domain.Interval1h, first.Interval)
}

func TestClient_GetKlines_Errors(t *testing.T) {
	t.Run("API 에러", func(t *testing.T) {
		client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"code":-1121,"msg":"Invalid symbol."}`))
		})
		_, err := client.GetKlines(context.Background(), "NOPE", domain.Interval1h, 10)
		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, -1121, apiErr.Code)
		assert.False(t, apiErr.Temporary())
	})

	t.Run("서버 에러는 일시적", func(t *testing.T) {
		client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte("bad gateway"))
		})
		_, err := client.GetKlines(context.Background(), "BTCUSDT", domain.Interval1h, 10)
		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.True(t, apiErr.Temporary())
	})

	t.Run("잘못된 limit", func(t *testing.T) {
		client := NewClient()
		_, err := client.GetKlines(context.Background(), "BTCUSDT", domain.Interval1h, 0)
		assert.Error(t, err)
		_, err = client.GetKlines(context.Background(), "BTCUSDT", domain.Interval1h, 5000)
		assert.Error(t, err)
	})

	t.Run("형식 오류", func(t *testing.T) {
		client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[[1704067200000,"abc","1","1","1","1",1704070799999]]`))
		})
		_, err := client.GetKlines(context.Background(), "BTCUSDT", domain.Interval1h, 1)
		assert.Error(t, err)
	})
}

func TestClient_GetServerTime(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fapi/v1/time", r.URL.Path)
		w.Write([]byte(`{"serverTime":1704067200000}`))
	})

	ts, err := client.GetServerTime(context.Background())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), ts)
}

func TestClient_GetTopVolumeSymbols(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"symbol":"ETHUSDT","quoteVolume":"500"},
			{"symbol":"BTCUSDT","quoteVolume":"900"},
			{"symbol":"BTCBUSD","quoteVolume":"9999"},
			{"symbol":"SOLUSDT","quoteVolume":"100"}
		]`))
	})

	symbols, err := client.GetTopVolumeSymbols(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"BTCUSDT", "ETHUSDT"}, symbols)
}

func TestWithTestnet(t *testing.T) {
	assert.Equal(t, "https://testnet.binancefuture.com", NewClient(WithTestnet(true)).baseURL)
	assert.Equal(t, "https://fapi.binance.com", NewClient(WithTestnet(false)).baseURL)
}
