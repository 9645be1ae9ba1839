// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the data structures that map to database tables
// and the core types shared by the persona, generation and history packages.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Persona is a user's reusable content-generation profile. There is at
// most one persona per owner. A persona with every field empty is valid.
type Persona struct {
	OwnerID        string         `json:"ownerId"`
	Bio            string         `json:"bio"`
	Industry       string         `json:"industry"`
	TargetAudience string         `json:"targetAudience"`
	BrandTone      string         `json:"brandTone"`
	Images         []PersonaImage `json:"personaImages"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// IsBlank reports whether every text field is empty or whitespace.
func (p *Persona) IsBlank() bool {
	return strings.TrimSpace(p.Bio) == "" &&
		strings.TrimSpace(p.Industry) == "" &&
		strings.TrimSpace(p.TargetAudience) == "" &&
		strings.TrimSpace(p.BrandTone) == ""
}

// PersonaFields holds the replaceable text fields of a persona.
type PersonaFields struct {
	Bio            string `json:"bio"`
	Industry       string `json:"industry"`
	TargetAudience string `json:"targetAudience"`
	BrandTone      string `json:"brandTone"`
}

// PersonaImage is a reference image uploaded to a persona. The binary lives
// in object storage under StorageKey; URL is its public locator.
type PersonaImage struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     string    `json:"ownerId"`
	URL         string    `json:"url"`
	StorageKey  string    `json:"-"`
	ContentType string    `json:"contentType"`
	SizeBytes   int64     `json:"sizeBytes"`
	CreatedAt   time.Time `json:"createdAt"`
}
