// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package generation runs the lifecycle of a generation request:
// pending → completed | failed, exactly once.
//
// Create is synchronous and makes a single provider attempt. A provider
// failure is recorded on the generation as status failed and is not
// returned as an error. Only validation and storage failures abort Create.
package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"personagen/internal/ai"
	"personagen/internal/metrics"
	"personagen/internal/models"
	"personagen/internal/prompt"
)

// MaxPromptLength is the longest raw prompt accepted, in characters.
const MaxPromptLength = 4000

// Repository persists generation records.
type Repository interface {
	Insert(ctx context.Context, g *models.Generation) (*models.Generation, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Generation, error)
	Complete(ctx context.Context, id uuid.UUID, result string) (*models.Generation, error)
	Fail(ctx context.Context, id uuid.UUID, message string) (*models.Generation, error)
	Delete(ctx context.Context, ownerID string, id uuid.UUID) (*models.Generation, error)
	ListByOwner(ctx context.Context, ownerID string, typeFilter *models.GenerationType) ([]models.Generation, error)
}

// PersonaSource returns the owner's current persona or models.ErrNotFound.
type PersonaSource interface {
	Get(ctx context.Context, ownerID string) (*models.Persona, error)
}

// Request is the caller's input to Create.
type Request struct {
	Type   models.GenerationType `json:"type"`
	Prompt string                `json:"prompt"`
	Model  string                `json:"model"`
}

// Manager implements the generation operations.
type Manager struct {
	repo     Repository
	personas PersonaSource
	provider ai.Provider
}

// NewManager creates a Manager.
func NewManager(repo Repository, personas PersonaSource, provider ai.Provider) *Manager {
	return &Manager{repo: repo, personas: personas, provider: provider}
}

// Validate checks req without touching storage.
func Validate(req Request) error {
	if !req.Type.Valid() {
		return &models.ValidationError{Field: "type", Message: `must be "image" or "text"`}
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return &models.ValidationError{Field: "prompt", Message: "is required"}
	}
	if utf8.RuneCountInString(req.Prompt) > MaxPromptLength {
		return &models.ValidationError{
			Field:   "prompt",
			Message: fmt.Sprintf("must be at most %d characters", MaxPromptLength),
		}
	}
	if !req.Type.ModelAllowed(req.Model) {
		return &models.ValidationError{
			Field: "model",
			Message: fmt.Sprintf("%q is not available for %s generation (allowed: %s)",
				req.Model, req.Type, strings.Join(models.AllowedModels(req.Type), ", ")),
		}
	}
	return nil
}

// Create validates req, records a pending generation, calls the provider
// once and returns the generation in its terminal state.
func (m *Manager) Create(ctx context.Context, ownerID string, req Request) (*models.Generation, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	g, err := m.repo.Insert(ctx, &models.Generation{
		OwnerID: ownerID,
		Type:    req.Type,
		Prompt:  req.Prompt,
		Model:   req.Model,
		Status:  models.StatusPending,
	})
	if err != nil {
		return nil, &models.StorageError{Op: "insert generation", Err: err}
	}

	finalPrompt := prompt.Compose(req.Prompt, m.persona(ctx, ownerID))
	artifact, genErr := m.dispatch(ctx, req.Type, finalPrompt, req.Model)

	// The outcome must be persisted even if the caller has gone away.
	persistCtx := context.WithoutCancel(ctx)

	var final *models.Generation
	if genErr == nil {
		final, err = m.repo.Complete(persistCtx, g.ID, artifact)
	} else {
		slog.Warn("generation failed",
			"id", g.ID, "owner", ownerID, "type", req.Type, "model", req.Model, "error", genErr)
		final, err = m.repo.Fail(persistCtx, g.ID, failureMessage(genErr))
	}
	if err != nil {
		return nil, &models.StorageError{Op: "record outcome", Err: err}
	}
	if final == nil {
		return nil, &models.StorageError{Op: "record outcome", Err: models.ErrNotFound}
	}

	metrics.ObserveGeneration(string(final.Type), string(final.Status))
	slog.Info("generation finished", "id", final.ID, "owner", ownerID, "type", final.Type, "status", final.Status)
	return final, nil
}

// persona returns a snapshot of the owner's persona, or nil. Lookup failures
// do not block generation.
func (m *Manager) persona(ctx context.Context, ownerID string) *models.Persona {
	if m.personas == nil {
		return nil
	}
	p, err := m.personas.Get(ctx, ownerID)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			slog.Warn("persona lookup failed, generating without persona", "owner", ownerID, "error", err)
		}
		return nil
	}
	return p
}

func (m *Manager) dispatch(ctx context.Context, t models.GenerationType, finalPrompt, model string) (string, error) {
	start := time.Now()
	var (
		artifact string
		err      error
	)
	switch t {
	case models.GenerationImage:
		artifact, err = m.provider.GenerateImage(ctx, finalPrompt, model)
	case models.GenerationText:
		artifact, err = m.provider.GenerateText(ctx, finalPrompt, model)
	default:
		err = fmt.Errorf("unsupported generation type %q", t)
	}

	outcome := "ok"
	if err != nil {
		outcome = string(ai.KindOf(err))
	}
	metrics.ObserveProvider(string(t), outcome, time.Since(start))
	return artifact, err
}

// failureMessage returns the human-readable message stored on a failed
// generation.
func failureMessage(err error) string {
	var e *ai.Error
	if errors.As(ai.Normalize(err), &e) && e.Message != "" {
		return e.Message
	}
	return "Generation failed."
}

// Get returns the owner's generation with the given id. Generations of other
// owners are reported as models.ErrNotFound.
func (m *Manager) Get(ctx context.Context, ownerID string, id uuid.UUID) (*models.Generation, error) {
	g, err := m.repo.FindByID(ctx, id)
	if err != nil {
		return nil, &models.StorageError{Op: "find generation", Err: err}
	}
	if g == nil || g.OwnerID != ownerID {
		return nil, models.ErrNotFound
	}
	return g, nil
}

// Delete removes the owner's generation. Deleting a missing or already
// deleted generation returns models.ErrNotFound.
func (m *Manager) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	g, err := m.repo.Delete(ctx, ownerID, id)
	if err != nil {
		return &models.StorageError{Op: "delete generation", Err: err}
	}
	if g == nil {
		return models.ErrNotFound
	}
	slog.Info("generation deleted", "id", id, "owner", ownerID)
	return nil
}

// List returns the owner's generations newest first. A nil typeFilter
// returns every type.
func (m *Manager) List(ctx context.Context, ownerID string, typeFilter *models.GenerationType) ([]models.Generation, error) {
	items, err := m.repo.ListByOwner(ctx, ownerID, typeFilter)
	if err != nil {
		return nil, &models.StorageError{Op: "list generations", Err: err}
	}
	return items, nil
}
