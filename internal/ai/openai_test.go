// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// ---------- Helpers ----------

// fakeOpenAI routes SDK requests by path suffix to canned JSON responses.
type fakeOpenAI struct {
	chat       func(w http.ResponseWriter, r *http.Request)
	images     func(w http.ResponseWriter, r *http.Request)
	moderation func(w http.ResponseWriter, r *http.Request)
	calls      atomic.Int32
}

func (f *fakeOpenAI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.calls.Add(1)
	w.Header().Set("Content-Type", "application/json")
	var h func(http.ResponseWriter, *http.Request)
	switch {
	case strings.HasSuffix(r.URL.Path, "/chat/completions"):
		h = f.chat
	case strings.HasSuffix(r.URL.Path, "/images/generations"):
		h = f.images
	case strings.HasSuffix(r.URL.Path, "/moderations"):
		h = f.moderation
	case strings.HasSuffix(r.URL.Path, "/models"):
		w.Write([]byte(`{"object":"list","data":[]}`))
		return
	}
	if h == nil {
		http.NotFound(w, r)
		return
	}
	h(w, r)
}

func respond(status int, body string) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}

const chatOK = `{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4",
"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Ship faster."}}]}`

const imageOK = `{"created":1,"data":[{"url":"https://img.example.com/a.png"}]}`

func newTestProvider(t *testing.T, f *fakeOpenAI, cfg Config) *OpenAI {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	cfg.APIKey = "sk-test"
	cfg.BaseURL = srv.URL + "/v1/"
	return NewOpenAI(cfg)
}

func assertKind(t *testing.T, err error, want Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *ai.Error, got %T: %v", err, err)
	}
	if e.Kind != want {
		t.Errorf("Kind = %s, want %s (err=%v)", e.Kind, want, err)
	}
	if e.Message == "" {
		t.Error("Message should not be empty")
	}
}

// ---------- Success ----------

func TestGenerateTextSuccess(t *testing.T) {
	f := &fakeOpenAI{chat: func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q", got)
		}
		w.Write([]byte(chatOK))
	}}
	p := newTestProvider(t, f, Config{})

	text, err := p.GenerateText(context.Background(), "Write a tagline", "gpt-4")
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if text != "Ship faster." {
		t.Errorf("text = %q", text)
	}
}

func TestGenerateImageSuccess(t *testing.T) {
	f := &fakeOpenAI{images: respond(http.StatusOK, imageOK)}
	p := newTestProvider(t, f, Config{})

	url, err := p.GenerateImage(context.Background(), "a cat", "dall-e-3")
	if err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}
	if url != "https://img.example.com/a.png" {
		t.Errorf("url = %q", url)
	}
}

// ---------- Failure normalization ----------

func TestGenerateFailureKinds(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   Kind
	}{
		{"content policy", http.StatusBadRequest,
			`{"error":{"message":"Your request was rejected","type":"invalid_request_error","code":"content_policy_violation"}}`,
			KindRejected},
		{"bad request", http.StatusBadRequest,
			`{"error":{"message":"bad","type":"invalid_request_error"}}`, KindRejected},
		{"rate limited", http.StatusTooManyRequests,
			`{"error":{"message":"slow down","type":"rate_limit"}}`, KindUnavailable},
		{"server error", http.StatusInternalServerError,
			`{"error":{"message":"boom","type":"server_error"}}`, KindUnavailable},
		{"gateway timeout", http.StatusGatewayTimeout,
			`{"error":{"message":"late","type":"server_error"}}`, KindTimeout},
		{"unauthorized", http.StatusUnauthorized,
			`{"error":{"message":"bad key","type":"invalid_request_error"}}`, KindProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeOpenAI{
				chat:   respond(tt.status, tt.body),
				images: respond(tt.status, tt.body),
			}
			p := newTestProvider(t, f, Config{})

			_, err := p.GenerateText(context.Background(), "x", "gpt-4")
			assertKind(t, err, tt.want)
			if strings.Contains(err.Error(), tt.body) {
				t.Errorf("raw payload leaked into error: %v", err)
			}

			_, err = p.GenerateImage(context.Background(), "x", "dall-e-2")
			assertKind(t, err, tt.want)
		})
	}
}

func TestGenerateSingleAttempt(t *testing.T) {
	f := &fakeOpenAI{chat: respond(http.StatusServiceUnavailable, `{"error":{"message":"down"}}`)}
	p := newTestProvider(t, f, Config{})

	_, err := p.GenerateText(context.Background(), "x", "gpt-4")
	assertKind(t, err, KindUnavailable)
	if got := f.calls.Load(); got != 1 {
		t.Errorf("provider called %d times, want exactly 1", got)
	}
}

func TestGenerateTimeout(t *testing.T) {
	f := &fakeOpenAI{chat: func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}}
	p := newTestProvider(t, f, Config{Timeout: 50 * time.Millisecond})

	_, err := p.GenerateText(context.Background(), "x", "gpt-4")
	assertKind(t, err, KindTimeout)
}

func TestGenerateIgnoresCallerCancellation(t *testing.T) {
	f := &fakeOpenAI{chat: func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		w.Write([]byte(chatOK))
	}}
	p := newTestProvider(t, f, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	text, err := p.GenerateText(ctx, "x", "gpt-4")
	if err != nil {
		t.Fatalf("GenerateText after caller cancel: %v", err)
	}
	if text != "Ship faster." {
		t.Errorf("text = %q", text)
	}
}

func TestGenerateUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	p := NewOpenAI(Config{APIKey: "sk", BaseURL: base + "/v1/"})
	_, err := p.GenerateText(context.Background(), "x", "gpt-4")
	assertKind(t, err, KindUnavailable)
}

func TestGenerateEmptyResponses(t *testing.T) {
	f := &fakeOpenAI{
		chat:   respond(http.StatusOK, `{"id":"c","object":"chat.completion","choices":[]}`),
		images: respond(http.StatusOK, `{"created":1,"data":[]}`),
	}
	p := newTestProvider(t, f, Config{})

	_, err := p.GenerateText(context.Background(), "x", "gpt-4")
	assertKind(t, err, KindProvider)
	_, err = p.GenerateImage(context.Background(), "x", "dall-e-3")
	assertKind(t, err, KindProvider)
}

// ---------- Moderation ----------

func TestModerationFlaggedRejects(t *testing.T) {
	f := &fakeOpenAI{
		moderation: respond(http.StatusOK, `{"id":"m","model":"omni-moderation-latest","results":[{"flagged":true}]}`),
		chat:       respond(http.StatusOK, chatOK),
	}
	p := newTestProvider(t, f, Config{Moderation: true})

	_, err := p.GenerateText(context.Background(), "bad prompt", "gpt-4")
	assertKind(t, err, KindRejected)
	if got := f.calls.Load(); got != 1 {
		t.Errorf("calls = %d, want only the moderation call", got)
	}
}

func TestModerationCleanPasses(t *testing.T) {
	f := &fakeOpenAI{
		moderation: respond(http.StatusOK, `{"id":"m","model":"omni-moderation-latest","results":[{"flagged":false}]}`),
		images:     respond(http.StatusOK, imageOK),
	}
	p := newTestProvider(t, f, Config{Moderation: true})

	if _, err := p.GenerateImage(context.Background(), "a cat", "dall-e-3"); err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}
}

func TestModerationOutageDegrades(t *testing.T) {
	f := &fakeOpenAI{
		moderation: respond(http.StatusInternalServerError, `{"error":{"message":"down"}}`),
		chat:       respond(http.StatusOK, chatOK),
	}
	p := newTestProvider(t, f, Config{Moderation: true})

	if _, err := p.GenerateText(context.Background(), "x", "gpt-4"); err != nil {
		t.Fatalf("GenerateText should proceed when moderation is down: %v", err)
	}
}

func TestPing(t *testing.T) {
	p := newTestProvider(t, &fakeOpenAI{}, Config{})
	if err := p.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}
