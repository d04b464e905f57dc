package genai

import (
	"context"
	"errors"
	"fmt"
)

// Content types understood by the Responses API input items.
const (
	ContentInputText  = "input_text"
	ContentOutputText = "output_text"
)

// Request is the typed payload for POST /v1/responses.
type Request struct {
	Model           string         `json:"model"`
	Instructions    string         `json:"instructions,omitempty"`
	Input           []InputMessage `json:"input"`
	MaxOutputTokens int            `json:"max_output_tokens,omitempty"`
}

// InputMessage is one conversation item in the request input.
type InputMessage struct {
	Role    string        `json:"role"`
	Content []ContentItem `json:"content"`
}

// ContentItem is a single typed content part of an input message.
type ContentItem struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Generator produces a reply for a prepared request. A single attempt per
// request; this layer never retries, since a retry without backoff risks
// duplicate replies and duplicate billing.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// ErrEmptyResponse means the provider answered successfully but no usable
// text could be extracted from the response body.
var ErrEmptyResponse = errors.New("generation returned no text")

// RequestError is a non-success answer from the provider.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("generation request failed (%d)", e.Status)
}
