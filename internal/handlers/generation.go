// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"personagen/internal/generation"
	"personagen/internal/middleware"
	"personagen/internal/models"
)

// generateRequest is the body of the per-type generate endpoints.
type generateRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model"`
}

type imageResponse struct {
	ImageURL   *string            `json:"imageUrl"`
	Generation *models.Generation `json:"generation"`
}

type textResponse struct {
	Text       *string            `json:"text"`
	Generation *models.Generation `json:"generation"`
}

type modelsResponse struct {
	Image []string `json:"image"`
	Text  []string `json:"text"`
}

// CreateGeneration runs a generation and returns the terminal record.
// A failed generation is still a 201: the caller inspects status.
func (a *API) CreateGeneration(w http.ResponseWriter, r *http.Request) {
	var req generation.Request
	if !decodeJSON(w, r, &req) {
		return
	}

	g, err := a.generations.Create(r.Context(), middleware.OwnerFromCtx(r.Context()), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

// GenerateImage is the image-only form of CreateGeneration. An omitted
// model selects the default image model.
func (a *API) GenerateImage(w http.ResponseWriter, r *http.Request) {
	g, ok := a.generateTyped(w, r, models.GenerationImage)
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, imageResponse{ImageURL: g.Result, Generation: g})
}

// GenerateText is the text-only form of CreateGeneration. An omitted model
// selects the default text model.
func (a *API) GenerateText(w http.ResponseWriter, r *http.Request) {
	g, ok := a.generateTyped(w, r, models.GenerationText)
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, textResponse{Text: g.Result, Generation: g})
}

func (a *API) generateTyped(w http.ResponseWriter, r *http.Request, t models.GenerationType) (*models.Generation, bool) {
	var body generateRequest
	if !decodeJSON(w, r, &body) {
		return nil, false
	}
	if body.Model == "" {
		body.Model = models.DefaultModel(t)
	}

	g, err := a.generations.Create(r.Context(), middleware.OwnerFromCtx(r.Context()), generation.Request{
		Type:   t,
		Prompt: body.Prompt,
		Model:  body.Model,
	})
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return g, true
}

// ListGenerations returns the caller's generations newest first, filtered
// by the optional ?type= query parameter.
func (a *API) ListGenerations(w http.ResponseWriter, r *http.Request) {
	typeFilter, err := models.ParseGenerationType(r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	items, err := a.history.List(r.Context(), middleware.OwnerFromCtx(r.Context()), typeFilter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// GetGeneration returns one of the caller's generations.
func (a *API) GetGeneration(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, models.ErrNotFound)
		return
	}

	g, err := a.generations.Get(r.Context(), middleware.OwnerFromCtx(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// DeleteGeneration deletes one of the caller's generations.
func (a *API) DeleteGeneration(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, models.ErrNotFound)
		return
	}

	if err := a.generations.Delete(r.Context(), middleware.OwnerFromCtx(r.Context()), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Models lists the allowed models per generation type.
func (a *API) Models(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, modelsResponse{
		Image: models.AllowedModels(models.GenerationImage),
		Text:  models.AllowedModels(models.GenerationText),
	})
}
