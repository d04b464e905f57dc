package prompt

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/mpetrov/gptrelay/internal/genai"
	"github.com/mpetrov/gptrelay/internal/history"
)

func testBuilder() Builder {
	return Builder{
		Model:           "gpt-5.2",
		Instructions:    "keep it short",
		MaxOutputTokens: 300,
	}
}

func testTurns() []history.Turn {
	return []history.Turn{
		{ChatID: "42", Role: history.RoleUser, Content: "hi"},
		{ChatID: "42", Role: history.RoleAssistant, Content: "hello there"},
		{ChatID: "42", Role: history.RoleUser, Content: "how are you?"},
	}
}

func TestBuildMapsTurnsInOrder(t *testing.T) {
	req := testBuilder().Build(testTurns())

	if req.Model != "gpt-5.2" || req.Instructions != "keep it short" || req.MaxOutputTokens != 300 {
		t.Fatalf("request header fields = %+v, want builder settings carried over", req)
	}
	if len(req.Input) != 3 {
		t.Fatalf("len(Input) = %d, want 3", len(req.Input))
	}

	want := []genai.InputMessage{
		{Role: "user", Content: []genai.ContentItem{{Type: genai.ContentInputText, Text: "hi"}}},
		{Role: "assistant", Content: []genai.ContentItem{{Type: genai.ContentOutputText, Text: "hello there"}}},
		{Role: "user", Content: []genai.ContentItem{{Type: genai.ContentInputText, Text: "how are you?"}}},
	}
	if !reflect.DeepEqual(req.Input, want) {
		t.Fatalf("Input = %+v, want %+v", req.Input, want)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	b := testBuilder()
	turns := testTurns()

	first, err := json.Marshal(b.Build(turns))
	if err != nil {
		t.Fatalf("marshal first request: %v", err)
	}
	second, err := json.Marshal(b.Build(turns))
	if err != nil {
		t.Fatalf("marshal second request: %v", err)
	}
	if string(first) != string(second) {
		t.Fatalf("Build() not deterministic:\n%s\n%s", first, second)
	}
}

func TestBuildDoesNotMutateHistory(t *testing.T) {
	turns := testTurns()
	snapshot := make([]history.Turn, len(turns))
	copy(snapshot, turns)

	_ = testBuilder().Build(turns)

	if !reflect.DeepEqual(turns, snapshot) {
		t.Fatalf("Build() mutated its input history")
	}
}

func TestBuildEmptyHistory(t *testing.T) {
	req := testBuilder().Build(nil)
	if len(req.Input) != 0 {
		t.Fatalf("len(Input) = %d for empty history, want 0", len(req.Input))
	}
}
