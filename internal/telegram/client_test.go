package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSendMessagePostsPayload(t *testing.T) {
	var gotPath string
	var gotReq sendMessageRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		_ = json.NewEncoder(w).Encode(apiResponse{OK: true})
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "123:abc", 0)
	if err := c.SendMessage(context.Background(), 42, "hello there", 7); err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}

	if gotPath != "/bot123:abc/sendMessage" {
		t.Fatalf("path = %q, want %q", gotPath, "/bot123:abc/sendMessage")
	}
	if gotReq.ChatID != 42 || gotReq.Text != "hello there" || gotReq.ReplyToMessageID != 7 {
		t.Fatalf("payload = %+v, want chat 42 / text / reply 7", gotReq)
	}
}

func TestSendMessageBodyLevelFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(apiResponse{OK: false, Description: "chat not found"})
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "123:abc", 0)
	err := c.SendMessage(context.Background(), 42, "hi", 7)
	if err == nil {
		t.Fatalf("SendMessage() error = nil, want body-level failure")
	}
	if !strings.Contains(err.Error(), "chat not found") {
		t.Fatalf("error = %v, want API description included", err)
	}
}

func TestSendMessageHTTPFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "123:abc", 0)
	if err := c.SendMessage(context.Background(), 42, "hi", 7); err == nil {
		t.Fatalf("SendMessage() error = nil, want non-2xx failure")
	}
}

func TestSendMessageTruncatesLongText(t *testing.T) {
	var gotReq sendMessageRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_ = json.NewEncoder(w).Encode(apiResponse{OK: true})
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "123:abc", 0)
	long := strings.Repeat("x", maxMessageChars+500)
	if err := c.SendMessage(context.Background(), 42, long, 0); err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if len(gotReq.Text) != maxMessageChars {
		t.Fatalf("sent text length = %d, want truncated to %d", len(gotReq.Text), maxMessageChars)
	}
}
