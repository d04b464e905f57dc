// Package prompt shapes bounded chat history into generation requests.
package prompt

import (
	"github.com/mpetrov/gptrelay/internal/genai"
	"github.com/mpetrov/gptrelay/internal/history"
)

// Builder converts a chat history into a Responses API request. Build is a
// pure transformation: same history in, byte-identical request out, and the
// input slice is never mutated.
type Builder struct {
	Model           string
	Instructions    string
	MaxOutputTokens int
}

func (b Builder) Build(turns []history.Turn) genai.Request {
	input := make([]genai.InputMessage, 0, len(turns))
	for _, t := range turns {
		contentType := genai.ContentInputText
		if t.Role == history.RoleAssistant {
			contentType = genai.ContentOutputText
		}
		input = append(input, genai.InputMessage{
			Role: string(t.Role),
			Content: []genai.ContentItem{
				{Type: contentType, Text: t.Content},
			},
		})
	}
	return genai.Request{
		Model:           b.Model,
		Instructions:    b.Instructions,
		Input:           input,
		MaxOutputTokens: b.MaxOutputTokens,
	}
}
