// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"personagen/internal/middleware"
	"personagen/internal/models"
	"personagen/internal/persona"
)

// maxUploadBody allows the image plus multipart overhead.
const maxUploadBody = persona.MaxImageSize + 1<<20

type personaRequest struct {
	Bio            string `json:"bio"`
	Industry       string `json:"industry"`
	TargetAudience string `json:"targetAudience"`
	BrandTone      string `json:"brandTone"`
}

// GetPersona returns the caller's persona with its images.
func (a *API) GetPersona(w http.ResponseWriter, r *http.Request) {
	p, err := a.personas.Get(r.Context(), middleware.OwnerFromCtx(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// UpsertPersona replaces the caller's persona text fields.
func (a *API) UpsertPersona(w http.ResponseWriter, r *http.Request) {
	var req personaRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := a.personas.Upsert(r.Context(), middleware.OwnerFromCtx(r.Context()), models.PersonaFields{
		Bio:            req.Bio,
		Industry:       req.Industry,
		TargetAudience: req.TargetAudience,
		BrandTone:      req.BrandTone,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ListPersonaImages returns the caller's images in upload order.
func (a *API) ListPersonaImages(w http.ResponseWriter, r *http.Request) {
	images, err := a.personas.ListImages(r.Context(), middleware.OwnerFromCtx(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, images)
}

// UploadPersonaImage accepts a multipart upload in the "image" field.
func (a *API) UploadPersonaImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	file, _, err := r.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeMessage(w, http.StatusRequestEntityTooLarge, "file too large, maximum size is 10 MB")
			return
		}
		writeMessage(w, http.StatusBadRequest, `multipart field "image" is required`)
		return
	}
	defer file.Close()

	img, err := a.personas.AddImage(r.Context(), middleware.OwnerFromCtx(r.Context()), file)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, img)
}

// DeletePersonaImage removes one of the caller's images.
func (a *API) DeletePersonaImage(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, models.ErrNotFound)
		return
	}

	if err := a.personas.RemoveImage(r.Context(), middleware.OwnerFromCtx(r.Context()), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
