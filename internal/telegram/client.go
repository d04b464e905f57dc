package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Telegram rejects messages longer than 4096 characters; stay under it.
const maxMessageChars = 3900

// Notifier delivers a reply text to the originating chat.
type Notifier interface {
	SendMessage(ctx context.Context, chatID int64, text string, replyTo int64) error
}

// Client is a minimal Telegram Bot API client.
type Client struct {
	apiBase    string
	httpClient *http.Client
}

// NewClient creates a Telegram client for the given API base URL and bot
// token. A zero timeout means requests are not bounded by this layer.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		apiBase: strings.TrimRight(strings.TrimSpace(baseURL), "/") + "/bot" + token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type sendMessageRequest struct {
	ChatID           int64  `json:"chat_id"`
	Text             string `json:"text"`
	ReplyToMessageID int64  `json:"reply_to_message_id,omitempty"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

// SendMessage posts a text reply to the chat, quoting the inbound message.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, replyTo int64) error {
	payload, err := json.Marshal(sendMessageRequest{
		ChatID:           chatID,
		Text:             truncate(text, maxMessageChars),
		ReplyToMessageID: replyTo,
	})
	if err != nil {
		return fmt.Errorf("marshal sendMessage: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+"/sendMessage", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create sendMessage request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram sendMessage request failed: %w", err)
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(res.Body, 64<<10))
	var parsed apiResponse
	_ = json.Unmarshal(body, &parsed)

	if res.StatusCode < 200 || res.StatusCode >= 300 || !parsed.OK {
		if parsed.Description != "" {
			return fmt.Errorf("telegram sendMessage status %d: %s", res.StatusCode, parsed.Description)
		}
		return fmt.Errorf("telegram sendMessage status %d", res.StatusCode)
	}
	return nil
}

func truncate(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars])
}
