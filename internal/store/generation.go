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

// GenerationStore handles all generation-related database operations.
type GenerationStore struct {
	db *sql.DB
}

// NewGenerationStore creates a new GenerationStore with the given database connection.
func NewGenerationStore(db *sql.DB) *GenerationStore {
	return &GenerationStore{db: db}
}

// generationColumns lists the columns selected in generation queries.
const generationColumns = `id, owner_id, type, prompt, model, status,
	result, error_message, created_at`

// scanGeneration scans a generation row from the result set.
func scanGeneration(scanner interface{ Scan(...any) error }) (*models.Generation, error) {
	var g models.Generation
	err := scanner.Scan(
		&g.ID, &g.OwnerID, &g.Type, &g.Prompt, &g.Model, &g.Status,
		&g.Result, &g.ErrorMessage, &g.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// Insert stores a new pending generation and returns it with the generated
// ID and creation timestamp.
func (s *GenerationStore) Insert(ctx context.Context, g *models.Generation) (*models.Generation, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO generations (owner_id, type, prompt, model, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+generationColumns,
		g.OwnerID, g.Type, g.Prompt, g.Model, models.StatusPending,
	)
	created, err := scanGeneration(row)
	if err != nil {
		return nil, fmt.Errorf("insert generation: %w", err)
	}
	return created, nil
}

// FindByID retrieves a generation by its UUID. Returns nil if not found.
func (s *GenerationStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Generation, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+generationColumns+` FROM generations WHERE id = $1`, id)
	g, err := scanGeneration(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find generation by id: %w", err)
	}
	return g, nil
}

// Complete moves a pending generation to completed with the given result.
// Returns nil if the row no longer exists or already left pending.
func (s *GenerationStore) Complete(ctx context.Context, id uuid.UUID, result string) (*models.Generation, error) {
	return s.transition(ctx, `
		UPDATE generations SET status = $2, result = $3
		WHERE id = $1 AND status = 'pending'
		RETURNING `+generationColumns, id, models.StatusCompleted, result)
}

// Fail moves a pending generation to failed with the given error message.
// Returns nil if the row no longer exists or already left pending.
func (s *GenerationStore) Fail(ctx context.Context, id uuid.UUID, message string) (*models.Generation, error) {
	return s.transition(ctx, `
		UPDATE generations SET status = $2, error_message = $3
		WHERE id = $1 AND status = 'pending'
		RETURNING `+generationColumns, id, models.StatusFailed, message)
}

func (s *GenerationStore) transition(ctx context.Context, query string, args ...any) (*models.Generation, error) {
	g, err := scanGeneration(s.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update generation status: %w", err)
	}
	return g, nil
}

// Delete removes a generation owned by ownerID and returns the deleted row.
// Returns nil if no such row exists for that owner.
func (s *GenerationStore) Delete(ctx context.Context, ownerID string, id uuid.UUID) (*models.Generation, error) {
	row := s.db.QueryRowContext(ctx, `
		DELETE FROM generations WHERE id = $1 AND owner_id = $2
		RETURNING `+generationColumns, id, ownerID)
	g, err := scanGeneration(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("delete generation: %w", err)
	}
	return g, nil
}

// ListByOwner returns an owner's generations newest first, optionally
// restricted to a single type.
func (s *GenerationStore) ListByOwner(ctx context.Context, ownerID string, typeFilter *models.GenerationType) ([]models.Generation, error) {
	query := `SELECT ` + generationColumns + ` FROM generations WHERE owner_id = $1`
	args := []any{ownerID}
	if typeFilter != nil {
		query += ` AND type = $2`
		args = append(args, *typeFilter)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list generations: %w", err)
	}
	defer rows.Close()

	items := []models.Generation{}
	for rows.Next() {
		g, err := scanGeneration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan generation: %w", err)
		}
		items = append(items, *g)
	}
	return items, rows.Err()
}
