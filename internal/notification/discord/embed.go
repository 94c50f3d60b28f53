package discord

import (
	"time"

	"github.com/assist-by/swing/internal/domain"
)

// WebhookMessage는 Discord 웹훅 메시지를 정의합니다
type WebhookMessage struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

// Embed는 Discord 메시지 임베드를 정의합니다
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
}

// EmbedField는 임베드 필드를 정의합니다
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// EmbedFooter는 임베드 푸터를 정의합니다
type EmbedFooter struct {
	Text string `json:"text"`
}

// 임베드 색상 상수
const (
	ColorTop    = 0x2E7D32 // 초록색
	ColorBottom = 0xC62828 // 빨간색
	ColorError  = 0xFF0000
	ColorInfo   = 0x0099FF

	footerText = "Swing Detector 📈"
)

// colorForKind는 스윙 종류에 맞는 색상을 반환합니다
func colorForKind(kind domain.SwingKind) int {
	if kind == domain.SwingBottom {
		return ColorBottom
	}
	return ColorTop
}

// newEmbed는 공통 푸터와 시각이 채워진 임베드를 생성합니다
func newEmbed(title, desc string, color int, ts time.Time) *Embed {
	return &Embed{
		Title:       title,
		Description: desc,
		Color:       color,
		Footer:      &EmbedFooter{Text: footerText},
		Timestamp:   ts.Format(time.RFC3339),
	}
}

// AddField는 임베드에 필드를 추가합니다
func (e *Embed) AddField(name, value string, inline bool) *Embed {
	e.Fields = append(e.Fields, EmbedField{
		Name:   name,
		Value:  value,
		Inline: inline,
	})
	return e
}
