package genai

import (
	"context"
	"fmt"
	"strings"
)

// Mock provides deterministic local replies when no provider is configured.
type Mock struct{}

func NewMock() *Mock { return &Mock{} }

func (m *Mock) Generate(ctx context.Context, req Request) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	last := ""
	for i := len(req.Input) - 1; i >= 0; i-- {
		if req.Input[i].Role != "user" {
			continue
		}
		for _, c := range req.Input[i].Content {
			if text := strings.TrimSpace(c.Text); text != "" {
				last = text
			}
		}
		break
	}
	if last == "" {
		return "I am listening.", nil
	}
	return fmt.Sprintf("I heard you: %s", last), nil
}
