package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealth(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("refused") }

	tests := []struct {
		name       string
		checks     map[string]Check
		wantStatus int
		wantState  string
	}{
		{"all up", map[string]Check{"postgres": ok, "valkey": ok}, http.StatusOK, "ok"},
		{"one down", map[string]Check{"postgres": ok, "valkey": down}, http.StatusServiceUnavailable, "degraded"},
		{"no checks", nil, http.StatusOK, "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			Health(tt.checks)(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

			if rr.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rr.Code, tt.wantStatus)
			}
			body := decode[map[string]any](t, rr)
			if body["status"] != tt.wantState {
				t.Errorf("status field: got %v, want %s", body["status"], tt.wantState)
			}
		})
	}
}
