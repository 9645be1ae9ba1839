// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"personagen/internal/models"
)

// PersonaStore handles persona and persona image database operations.
// Personas are keyed directly by owner ID, which enforces one persona
// per owner.
type PersonaStore struct {
	db *sql.DB
}

// NewPersonaStore creates a new PersonaStore with the given database connection.
func NewPersonaStore(db *sql.DB) *PersonaStore {
	return &PersonaStore{db: db}
}

const personaColumns = `owner_id, bio, industry, target_audience, brand_tone, created_at, updated_at`

const personaImageColumns = `id, owner_id, url, storage_key, content_type, size_bytes, created_at`

func scanPersona(scanner interface{ Scan(...any) error }) (*models.Persona, error) {
	var p models.Persona
	err := scanner.Scan(
		&p.OwnerID, &p.Bio, &p.Industry, &p.TargetAudience, &p.BrandTone,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanPersonaImage(scanner interface{ Scan(...any) error }) (*models.PersonaImage, error) {
	var img models.PersonaImage
	err := scanner.Scan(
		&img.ID, &img.OwnerID, &img.URL, &img.StorageKey, &img.ContentType,
		&img.SizeBytes, &img.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &img, nil
}

// Find retrieves the persona for an owner with its images in upload order.
// Returns nil if the owner has no persona.
func (s *PersonaStore) Find(ctx context.Context, ownerID string) (*models.Persona, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+personaColumns+` FROM personas WHERE owner_id = $1`, ownerID)
	p, err := scanPersona(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find persona: %w", err)
	}

	p.Images, err = s.ListImages(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Upsert creates the owner's persona or replaces all of its text fields.
// Images are untouched and returned with the persona in upload order.
func (s *PersonaStore) Upsert(ctx context.Context, ownerID string, f models.PersonaFields) (*models.Persona, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO personas (owner_id, bio, industry, target_audience, brand_tone)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (owner_id) DO UPDATE SET
			bio = EXCLUDED.bio,
			industry = EXCLUDED.industry,
			target_audience = EXCLUDED.target_audience,
			brand_tone = EXCLUDED.brand_tone,
			updated_at = NOW()
		RETURNING `+personaColumns,
		ownerID, f.Bio, f.Industry, f.TargetAudience, f.BrandTone,
	)
	p, err := scanPersona(row)
	if err != nil {
		return nil, fmt.Errorf("upsert persona: %w", err)
	}

	p.Images, err = s.ListImages(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Ensure creates an empty persona for the owner if none exists.
func (s *PersonaStore) Ensure(ctx context.Context, ownerID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO personas (owner_id) VALUES ($1)
		ON CONFLICT (owner_id) DO NOTHING`, ownerID)
	if err != nil {
		return fmt.Errorf("ensure persona: %w", err)
	}
	return nil
}

// ListImages returns an owner's persona images in upload order.
func (s *PersonaStore) ListImages(ctx context.Context, ownerID string) ([]models.PersonaImage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+personaImageColumns+`
		FROM persona_images
		WHERE owner_id = $1
		ORDER BY created_at, id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list persona images: %w", err)
	}
	defer rows.Close()

	images := []models.PersonaImage{}
	for rows.Next() {
		img, err := scanPersonaImage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan persona image: %w", err)
		}
		images = append(images, *img)
	}
	return images, rows.Err()
}

// InsertImage stores a persona image reference and returns it with the
// generated ID and timestamp.
func (s *PersonaStore) InsertImage(ctx context.Context, img *models.PersonaImage) (*models.PersonaImage, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO persona_images (owner_id, url, storage_key, content_type, size_bytes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+personaImageColumns,
		img.OwnerID, img.URL, img.StorageKey, img.ContentType, img.SizeBytes,
	)
	created, err := scanPersonaImage(row)
	if err != nil {
		return nil, fmt.Errorf("insert persona image: %w", err)
	}
	return created, nil
}

// FindImage retrieves a persona image owned by ownerID. Returns nil if the
// image does not exist or belongs to another owner.
func (s *PersonaStore) FindImage(ctx context.Context, ownerID string, id uuid.UUID) (*models.PersonaImage, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+personaImageColumns+`
		FROM persona_images WHERE id = $1 AND owner_id = $2`, id, ownerID)
	img, err := scanPersonaImage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find persona image: %w", err)
	}
	return img, nil
}

// DeleteImage removes a persona image reference. Returns false if no row
// matched.
func (s *PersonaStore) DeleteImage(ctx context.Context, ownerID string, id uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM persona_images WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return false, fmt.Errorf("delete persona image: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete persona image rows: %w", err)
	}
	return n > 0, nil
}
