package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/assist-by/swing/internal/domain"
	"github.com/assist-by/swing/internal/notification"
)

// Client는 Discord 웹훅 클라이언트입니다
type Client struct {
	swingWebhook string
	errorWebhook string
	client       *http.Client
}

// ClientOption은 클라이언트 옵션을 정의합니다
type ClientOption func(*Client)

// WithTimeout은 HTTP 타임아웃을 설정합니다
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.client.Timeout = timeout
	}
}

// NewClient는 새로운 Discord 클라이언트를 생성합니다. errorWebhook이 비면 swingWebhook을 사용합니다
func NewClient(swingWebhook, errorWebhook string, opts ...ClientOption) *Client {
	if errorWebhook == "" {
		errorWebhook = swingWebhook
	}
	c := &Client{
		swingWebhook: swingWebhook,
		errorWebhook: errorWebhook,
		client:       &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SendSwing은 확정된 스윙 포인트 알림을 전송합니다
func (c *Client) SendSwing(alert notification.SwingAlert) error {
	emoji := "🔺"
	if alert.Kind == domain.SwingBottom {
		emoji = "🔻"
	}

	embed := newEmbed(
		fmt.Sprintf("%s 스윙 %s 확정: %s (%s)", emoji, alert.Kind, alert.Symbol, alert.Interval),
		fmt.Sprintf("**극값**: %.4f\n**극값 시각**: %s\n**확정 시각**: %s",
			alert.Price,
			alert.ExtremeTime.UTC().Format("2006-01-02 15:04 UTC"),
			alert.ConfirmTime.UTC().Format("2006-01-02 15:04 UTC"),
		),
		colorForKind(alert.Kind),
		alert.ConfirmTime,
	)
	embed.AddField("확정 종가", fmt.Sprintf("%.4f", alert.LastClose), true)
	embed.AddField("되돌림", fmt.Sprintf("%+.2f%%", alert.Retracement()), true)

	return c.sendToWebhook(c.swingWebhook, WebhookMessage{Embeds: []Embed{*embed}})
}

// SendError는 에러 알림을 전송합니다
func (c *Client) SendError(err error) error {
	embed := newEmbed("에러 발생", fmt.Sprintf("```%v```", err), ColorError, time.Now())
	return c.sendToWebhook(c.errorWebhook, WebhookMessage{Embeds: []Embed{*embed}})
}

// SendInfo는 일반 정보 알림을 전송합니다
func (c *Client) SendInfo(message string) error {
	embed := newEmbed("", message, ColorInfo, time.Now())
	return c.sendToWebhook(c.swingWebhook, WebhookMessage{Embeds: []Embed{*embed}})
}

func (c *Client) sendToWebhook(webhookURL string, msg WebhookMessage) error {
	if webhookURL == "" {
		return fmt.Errorf("웹훅 URL이 설정되지 않았습니다")
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("메시지 마샬링 실패: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.client.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("요청 생성 실패: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("웹훅 전송 실패: %w", err)
	}
	defer resp.Body.Close()

	// Discord는 성공 시 204를 반환
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("웹훅 응답 에러(%d): %s", resp.StatusCode, string(body))
	}
	return nil
}
