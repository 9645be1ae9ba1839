// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerationType distinguishes image generations from text generations.
type GenerationType string

const (
	GenerationImage GenerationType = "image"
	GenerationText  GenerationType = "text"
)

// GenerationStatus is the lifecycle state of a generation request.
// A request starts pending and moves exactly once to completed or failed.
type GenerationStatus string

const (
	StatusPending   GenerationStatus = "pending"
	StatusCompleted GenerationStatus = "completed"
	StatusFailed    GenerationStatus = "failed"
)

// IsTerminal reports whether no further transition is possible.
func (s GenerationStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// allowedModels maps each generation type to the provider models it accepts.
var allowedModels = map[GenerationType][]string{
	GenerationImage: {"dall-e-3", "dall-e-2"},
	GenerationText:  {"gpt-4", "gpt-3.5-turbo"},
}

// DefaultModel returns the model preselected for a generation type.
func DefaultModel(t GenerationType) string {
	if models, ok := allowedModels[t]; ok {
		return models[0]
	}
	return ""
}

// AllowedModels returns a copy of the models valid for a generation type.
func AllowedModels(t GenerationType) []string {
	return append([]string(nil), allowedModels[t]...)
}

// Valid reports whether t is a known generation type.
func (t GenerationType) Valid() bool {
	_, ok := allowedModels[t]
	return ok
}

// ModelAllowed reports whether model belongs to the allowed set for t.
func (t GenerationType) ModelAllowed(model string) bool {
	for _, m := range allowedModels[t] {
		if m == model {
			return true
		}
	}
	return false
}

// ParseGenerationType converts a raw filter value into a GenerationType.
// An empty string or "all" yields nil, meaning no filter.
func ParseGenerationType(raw string) (*GenerationType, error) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" || raw == "all" {
		return nil, nil
	}
	t := GenerationType(raw)
	if !t.Valid() {
		return nil, &ValidationError{Field: "type", Message: "type must be \"image\" or \"text\""}
	}
	return &t, nil
}

// Generation is one unit of work producing an image URL or a block of text.
// Result is set iff Status is completed; ErrorMessage iff Status is failed.
type Generation struct {
	ID           uuid.UUID        `json:"id"`
	OwnerID      string           `json:"ownerId"`
	Type         GenerationType   `json:"type"`
	Prompt       string           `json:"prompt"`
	Model        string           `json:"model"`
	Status       GenerationStatus `json:"status"`
	Result       *string          `json:"result"`
	ErrorMessage *string          `json:"errorMessage"`
	CreatedAt    time.Time        `json:"createdAt"`
}

// Consistent reports whether the status, result and error message agree.
func (g *Generation) Consistent() bool {
	switch g.Status {
	case StatusPending:
		return g.Result == nil && g.ErrorMessage == nil
	case StatusCompleted:
		return g.Result != nil && g.ErrorMessage == nil
	case StatusFailed:
		return g.Result == nil && g.ErrorMessage != nil
	default:
		return false
	}
}
