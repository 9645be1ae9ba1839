// Package history serves read-only views over an owner's generations.
package history

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"personagen/internal/models"
)

// Lister returns an owner's generations newest first.
type Lister interface {
	List(ctx context.Context, ownerID string, typeFilter *models.GenerationType) ([]models.Generation, error)
}

// PersonaSource returns the owner's persona or models.ErrNotFound.
type PersonaSource interface {
	Get(ctx context.Context, ownerID string) (*models.Persona, error)
}

// Stats are aggregate counts over every generation of an owner.
type Stats struct {
	Total  int                           `json:"total"`
	ByType map[models.GenerationType]int `json:"byType"`
}

// Summary backs the dashboard.
type Summary struct {
	Stats      Stats               `json:"stats"`
	Recent     []models.Generation `json:"recent"`
	HasPersona bool                `json:"hasPersona"`
}

// Service implements the history queries.
type Service struct {
	generations Lister
	personas    PersonaSource
}

// NewService creates a Service.
func NewService(generations Lister, personas PersonaSource) *Service {
	return &Service{generations: generations, personas: personas}
}

// List returns the owner's generations newest first, optionally filtered by type.
func (s *Service) List(ctx context.Context, ownerID string, typeFilter *models.GenerationType) ([]models.Generation, error) {
	return s.generations.List(ctx, ownerID, typeFilter)
}

// Stats counts the owner's generations. It is recomputed on every call.
func (s *Service) Stats(ctx context.Context, ownerID string) (Stats, error) {
	items, err := s.generations.List(ctx, ownerID, nil)
	if err != nil {
		return Stats{}, err
	}
	return Reduce(items), nil
}

// Reduce computes Stats over items. Both known types are always present
// in ByType.
func Reduce(items []models.Generation) Stats {
	st := Stats{
		Total: len(items),
		ByType: map[models.GenerationType]int{
			models.GenerationImage: 0,
			models.GenerationText:  0,
		},
	}
	for _, g := range items {
		st.ByType[g.Type]++
	}
	return st
}

// Summary returns stats, the recent newest generations and whether the
// owner has a persona. The generation and persona reads run concurrently.
func (s *Service) Summary(ctx context.Context, ownerID string, recent int) (*Summary, error) {
	var (
		items      []models.Generation
		hasPersona bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.generations.List(gctx, ownerID, nil)
		return err
	})
	g.Go(func() error {
		_, err := s.personas.Get(gctx, ownerID)
		switch {
		case err == nil:
			hasPersona = true
		case errors.Is(err, models.ErrNotFound):
		default:
			return err
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if recent < 0 {
		recent = 0
	}
	head := items
	if len(head) > recent {
		head = head[:recent]
	}

	return &Summary{
		Stats:      Reduce(items),
		Recent:     head,
		HasPersona: hasPersona,
	}, nil
}
