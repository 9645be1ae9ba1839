// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package router

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"personagen/internal/generation"
	"personagen/internal/handlers"
	"personagen/internal/history"
	"personagen/internal/models"
	"personagen/internal/session"
)

// tokenSessions maps bearer tokens to owners.
type tokenSessions map[string]string

func (s tokenSessions) Get(_ context.Context, r *http.Request) (*session.Data, error) {
	owner, ok := s[session.TokenFromRequest(r)]
	if !ok {
		return nil, nil
	}
	return &session.Data{OwnerID: owner}, nil
}

type stubPersonas struct{}

func (stubPersonas) Get(context.Context, string) (*models.Persona, error) {
	return nil, models.ErrNotFound
}

func (stubPersonas) Upsert(_ context.Context, owner string, f models.PersonaFields) (*models.Persona, error) {
	return &models.Persona{OwnerID: owner, Bio: f.Bio}, nil
}

func (stubPersonas) ListImages(context.Context, string) ([]models.PersonaImage, error) {
	return []models.PersonaImage{}, nil
}

func (stubPersonas) AddImage(context.Context, string, io.Reader) (*models.PersonaImage, error) {
	return nil, errors.New("unused")
}

func (stubPersonas) RemoveImage(context.Context, string, uuid.UUID) error {
	return models.ErrNotFound
}

type stubGenerations struct{}

func (stubGenerations) Create(_ context.Context, owner string, req generation.Request) (*models.Generation, error) {
	res := "ok"
	return &models.Generation{
		ID: uuid.New(), OwnerID: owner, Type: req.Type, Prompt: req.Prompt, Model: req.Model,
		Status: models.StatusCompleted, Result: &res, CreatedAt: time.Now(),
	}, nil
}

func (stubGenerations) Get(context.Context, string, uuid.UUID) (*models.Generation, error) {
	return nil, models.ErrNotFound
}

func (stubGenerations) Delete(context.Context, string, uuid.UUID) error {
	return models.ErrNotFound
}

type stubHistory struct{}

func (stubHistory) List(context.Context, string, *models.GenerationType) ([]models.Generation, error) {
	return []models.Generation{}, nil
}

func (stubHistory) Stats(context.Context, string) (history.Stats, error) {
	return history.Reduce(nil), nil
}

func (stubHistory) Summary(context.Context, string, int) (*history.Summary, error) {
	return &history.Summary{Stats: history.Reduce(nil), Recent: []models.Generation{}}, nil
}

func newTestRouter(perMinute int, checks map[string]handlers.Check) http.Handler {
	return New(Config{
		Sessions:             tokenSessions{"tok-u1": "U1", "tok-u2": "U2"},
		API:                  handlers.NewAPI(stubPersonas{}, stubGenerations{}, stubHistory{}),
		Checks:               checks,
		GenerationsPerMinute: perMinute,
	})
}

func request(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	r := httptest.NewRequest(method, path, rdr)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestHealth(t *testing.T) {
	up := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	w := request(t, newTestRouter(0, map[string]handlers.Check{"postgres": up}), "GET", "/health", "", "")
	if w.Code != http.StatusOK {
		t.Errorf("healthy: got %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("content-type: got %q", ct)
	}

	w = request(t, newTestRouter(0, map[string]handlers.Check{"postgres": up, "valkey": down}), "GET", "/health", "", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("degraded: got %d, want 503", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestRouter(0, nil)
	request(t, h, "GET", "/api/models", "tok-u1", "")

	w := request(t, h, "GET", "/metrics", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("metrics: got %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "go_goroutines") {
		t.Error("metrics output missing runtime collectors")
	}
}

func TestAPIRequiresBearerToken(t *testing.T) {
	h := newTestRouter(0, nil)

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"unknown token", "nope", http.StatusUnauthorized},
		{"valid token", "tok-u1", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := request(t, h, "GET", "/api/generations", tt.token, "")
			if w.Code != tt.want {
				t.Errorf("got %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestRoutes(t *testing.T) {
	h := newTestRouter(0, nil)
	id := uuid.NewString()

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{"GET", "/api/models", "", http.StatusOK},
		{"GET", "/api/persona", "", http.StatusNotFound},
		{"PUT", "/api/persona", `{"bio":"hi"}`, http.StatusOK},
		{"POST", "/api/persona", `{"bio":"hi"}`, http.StatusOK},
		{"GET", "/api/persona/images", "", http.StatusOK},
		{"DELETE", "/api/persona/images/" + id, "", http.StatusNotFound},
		{"POST", "/api/generations", `{"type":"text","prompt":"x","model":"gpt-4"}`, http.StatusCreated},
		{"GET", "/api/generations/" + id, "", http.StatusNotFound},
		{"DELETE", "/api/generations/" + id, "", http.StatusNotFound},
		{"POST", "/api/generate/image", `{"prompt":"x"}`, http.StatusCreated},
		{"POST", "/api/generate/text", `{"prompt":"x"}`, http.StatusCreated},
		{"GET", "/api/history/stats", "", http.StatusOK},
		{"GET", "/api/dashboard", "", http.StatusOK},
		{"PATCH", "/api/generations/" + id, "", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := request(t, h, tt.method, tt.path, "tok-u1", tt.body)
			if w.Code != tt.want {
				t.Errorf("got %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestSecureHeaders(t *testing.T) {
	w := request(t, newTestRouter(0, nil), "GET", "/api/models", "tok-u1", "")
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options: got %q", got)
	}
}

func TestGenerationRateLimit(t *testing.T) {
	h := newTestRouter(2, nil)
	body := `{"prompt":"x"}`

	for i := 0; i < 2; i++ {
		if w := request(t, h, "POST", "/api/generate/text", "tok-u1", body); w.Code != http.StatusCreated {
			t.Fatalf("request %d: got %d, want 201", i+1, w.Code)
		}
	}
	if w := request(t, h, "POST", "/api/generate/text", "tok-u1", body); w.Code != http.StatusTooManyRequests {
		t.Errorf("over limit: got %d, want 429", w.Code)
	}

	// Limits are per owner.
	if w := request(t, h, "POST", "/api/generate/text", "tok-u2", body); w.Code != http.StatusCreated {
		t.Errorf("other owner: got %d, want 201", w.Code)
	}

	// Reads are not limited.
	if w := request(t, h, "GET", "/api/generations", "tok-u1", ""); w.Code != http.StatusOK {
		t.Errorf("list after limit: got %d, want 200", w.Code)
	}
}
