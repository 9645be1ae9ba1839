// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the JSON HTTP API over the persona,
// generation and history services. Every handler expects
// middleware.RequireOwner to have run.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"personagen/internal/generation"
	"personagen/internal/history"
	"personagen/internal/models"
	"personagen/internal/persona"
)

// maxJSONBody caps JSON request bodies.
const maxJSONBody = 1 << 20

// dashboardRecent is the number of generations shown on the dashboard.
const dashboardRecent = 5

// PersonaService is the persona surface used by the API.
type PersonaService interface {
	Get(ctx context.Context, ownerID string) (*models.Persona, error)
	Upsert(ctx context.Context, ownerID string, f models.PersonaFields) (*models.Persona, error)
	ListImages(ctx context.Context, ownerID string) ([]models.PersonaImage, error)
	AddImage(ctx context.Context, ownerID string, body io.Reader) (*models.PersonaImage, error)
	RemoveImage(ctx context.Context, ownerID string, imageID uuid.UUID) error
}

// GenerationService is the generation surface used by the API.
type GenerationService interface {
	Create(ctx context.Context, ownerID string, req generation.Request) (*models.Generation, error)
	Get(ctx context.Context, ownerID string, id uuid.UUID) (*models.Generation, error)
	Delete(ctx context.Context, ownerID string, id uuid.UUID) error
}

// HistoryService is the read-only history surface used by the API.
type HistoryService interface {
	List(ctx context.Context, ownerID string, typeFilter *models.GenerationType) ([]models.Generation, error)
	Stats(ctx context.Context, ownerID string) (history.Stats, error)
	Summary(ctx context.Context, ownerID string, recent int) (*history.Summary, error)
}

// API groups the JSON endpoints.
type API struct {
	personas    PersonaService
	generations GenerationService
	history     HistoryService
}

// NewAPI creates the API handlers.
func NewAPI(personas PersonaService, generations GenerationService, hist HistoryService) *API {
	return &API{personas: personas, generations: generations, history: hist}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeError maps a service error onto an HTTP status. Storage errors are
// checked first: they may wrap models.ErrNotFound.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		se *models.StorageError
		ve *models.ValidationError
	)
	switch {
	case errors.As(err, &se):
		slog.Error("storage failure", "op", se.Op, "error", se.Err, "path", r.URL.Path)
		writeMessage(w, http.StatusInternalServerError, "internal storage error")
	case errors.As(err, &ve):
		writeMessage(w, http.StatusBadRequest, ve.Error())
	case errors.Is(err, models.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "not found")
	case errors.Is(err, persona.ErrBlobStoreUnconfigured):
		writeMessage(w, http.StatusServiceUnavailable, "image storage is not configured")
	default:
		slog.Error("request failed", "error", err, "path", r.URL.Path)
		writeMessage(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON reads a JSON body into dst, answering 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeMessage(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeMessage(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
