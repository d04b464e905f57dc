package genai

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

// Client talks to an OpenAI-compatible Responses API endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a generation client for the given API base URL
// (e.g. "https://api.openai.com"). A zero timeout means requests are not
// bounded by this layer.
func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type apiResponse struct {
	OutputText string       `json:"output_text"`
	Output     []outputItem `json:"output"`
	Error      *apiError    `json:"error"`
}

type outputItem struct {
	Content []outputContent `json:"content"`
}

type outputContent struct {
	Text string `json:"text"`
}

type apiError struct {
	Message string `json:"message"`
}

// Generate sends the request and extracts the reply text.
func (c *Client) Generate(ctx context.Context, req Request) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal generation request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/responses", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create generation request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	res, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("send generation request: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("read generation response: %w", err)
	}

	var parsed apiResponse
	// A non-JSON body on an error status still yields a usable RequestError.
	_ = json.Unmarshal(body, &parsed)

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		reqErr := &RequestError{Status: res.StatusCode}
		if parsed.Error != nil {
			reqErr.Message = strings.TrimSpace(parsed.Error.Message)
		}
		return "", reqErr
	}

	return extractText(parsed)
}

// extractText prefers the aggregate output_text field and falls back to the
// first non-empty text item in the structured output array.
func extractText(parsed apiResponse) (string, error) {
	if text := strings.TrimSpace(parsed.OutputText); text != "" {
		return text, nil
	}
	for _, item := range parsed.Output {
		for _, content := range item.Content {
			if text := strings.TrimSpace(content.Text); text != "" {
				return text, nil
			}
		}
	}
	return "", ErrEmptyResponse
}
