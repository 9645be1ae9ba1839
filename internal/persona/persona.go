// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package persona manages each owner's persona: its text fields and its
// reference images. There is at most one persona per owner.
package persona

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"personagen/internal/imaging"
	"personagen/internal/models"
)

const (
	// MaxImageSize is the largest accepted reference image (10 MB).
	MaxImageSize = 10 << 20

	// cleanupTimeout bounds the release of an orphaned binary.
	cleanupTimeout = 30 * time.Second

	maxBioLength   = 2000
	maxFieldLength = 200
)

// ErrBlobStoreUnconfigured is returned by image operations when no binary
// store is available.
var ErrBlobStoreUnconfigured = errors.New("persona: image storage is not configured")

// Repository persists personas and their image references.
type Repository interface {
	Find(ctx context.Context, ownerID string) (*models.Persona, error)
	Upsert(ctx context.Context, ownerID string, f models.PersonaFields) (*models.Persona, error)
	Ensure(ctx context.Context, ownerID string) error
	ListImages(ctx context.Context, ownerID string) ([]models.PersonaImage, error)
	InsertImage(ctx context.Context, img *models.PersonaImage) (*models.PersonaImage, error)
	FindImage(ctx context.Context, ownerID string, id uuid.UUID) (*models.PersonaImage, error)
	DeleteImage(ctx context.Context, ownerID string, id uuid.UUID) (bool, error)
}

// BlobStore holds image binaries. Put returns the public locator.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	Delete(ctx context.Context, key string) error
}

// Service implements the persona operations.
type Service struct {
	repo  Repository
	blobs BlobStore
	now   func() time.Time
}

// NewService creates a Service. blobs may be nil, in which case image
// uploads and removals fail with ErrBlobStoreUnconfigured.
func NewService(repo Repository, blobs BlobStore) *Service {
	return &Service{repo: repo, blobs: blobs, now: time.Now}
}

// Get returns the owner's persona with its images in upload order.
func (s *Service) Get(ctx context.Context, ownerID string) (*models.Persona, error) {
	p, err := s.repo.Find(ctx, ownerID)
	if err != nil {
		return nil, &models.StorageError{Op: "find persona", Err: err}
	}
	if p == nil {
		return nil, models.ErrNotFound
	}
	return p, nil
}

// Upsert replaces the four text fields of the owner's persona, creating it
// if needed. Existing images are kept.
func (s *Service) Upsert(ctx context.Context, ownerID string, f models.PersonaFields) (*models.Persona, error) {
	f = models.PersonaFields{
		Bio:            strings.TrimSpace(f.Bio),
		Industry:       strings.TrimSpace(f.Industry),
		TargetAudience: strings.TrimSpace(f.TargetAudience),
		BrandTone:      strings.TrimSpace(f.BrandTone),
	}
	if err := validateFields(f); err != nil {
		return nil, err
	}

	p, err := s.repo.Upsert(ctx, ownerID, f)
	if err != nil {
		return nil, &models.StorageError{Op: "upsert persona", Err: err}
	}
	return p, nil
}

func validateFields(f models.PersonaFields) error {
	checks := []struct {
		field string
		value string
		max   int
	}{
		{"bio", f.Bio, maxBioLength},
		{"industry", f.Industry, maxFieldLength},
		{"targetAudience", f.TargetAudience, maxFieldLength},
		{"brandTone", f.BrandTone, maxFieldLength},
	}
	for _, c := range checks {
		if utf8.RuneCountInString(c.value) > c.max {
			return &models.ValidationError{
				Field:   c.field,
				Message: fmt.Sprintf("must be at most %d characters", c.max),
			}
		}
	}
	return nil
}

// AddImage stores an uploaded reference image and appends it to the owner's
// persona, creating an empty persona first if the owner has none.
func (s *Service) AddImage(ctx context.Context, ownerID string, body io.Reader) (*models.PersonaImage, error) {
	if s.blobs == nil {
		return nil, ErrBlobStoreUnconfigured
	}

	data, err := io.ReadAll(io.LimitReader(body, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(data) == 0 {
		return nil, &models.ValidationError{Field: "image", Message: "file is empty"}
	}
	if len(data) > MaxImageSize {
		return nil, &models.ValidationError{Field: "image", Message: "file exceeds the 10 MB limit"}
	}

	info, err := imaging.Inspect(data)
	if errors.Is(err, imaging.ErrUnsupported) {
		return nil, &models.ValidationError{Field: "image", Message: "file must be a JPEG, PNG, GIF or WebP image"}
	}
	if err != nil {
		slog.Warn("rejected persona image", "owner", ownerID, "error", err)
		return nil, &models.ValidationError{Field: "image", Message: "image could not be read"}
	}

	if err := s.repo.Ensure(ctx, ownerID); err != nil {
		return nil, &models.StorageError{Op: "ensure persona", Err: err}
	}

	id := uuid.New()
	key := fmt.Sprintf("personas/%s/%s%s", url.PathEscape(ownerID), id, info.Extension)

	locator, err := s.blobs.Put(ctx, key, info.ContentType, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &models.StorageError{Op: "store image", Err: err}
	}

	img, err := s.repo.InsertImage(ctx, &models.PersonaImage{
		ID:          id,
		OwnerID:     ownerID,
		URL:         locator,
		StorageKey:  key,
		ContentType: info.ContentType,
		SizeBytes:   int64(len(data)),
		CreatedAt:   s.now().UTC(),
	})
	if err != nil {
		if delErr := s.releaseBlob(ctx, key); delErr != nil {
			slog.Error("orphaned persona image", "key", key, "error", delErr)
		}
		return nil, &models.StorageError{Op: "insert image", Err: err}
	}

	slog.Info("persona image added", "owner", ownerID, "image_id", img.ID, "size", img.SizeBytes)
	return img, nil
}

// releaseBlob deletes a stored binary whose reference was never recorded.
// It runs even if the caller has gone away.
func (s *Service) releaseBlob(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()
	return s.blobs.Delete(ctx, key)
}

// RemoveImage deletes one of the owner's images. The binary is deleted
// first; the reference is removed only if that succeeds.
func (s *Service) RemoveImage(ctx context.Context, ownerID string, imageID uuid.UUID) error {
	if s.blobs == nil {
		return ErrBlobStoreUnconfigured
	}

	img, err := s.repo.FindImage(ctx, ownerID, imageID)
	if err != nil {
		return &models.StorageError{Op: "find image", Err: err}
	}
	if img == nil {
		return models.ErrNotFound
	}

	if err := s.blobs.Delete(ctx, img.StorageKey); err != nil {
		return &models.StorageError{Op: "delete image binary", Err: err}
	}

	deleted, err := s.repo.DeleteImage(ctx, ownerID, imageID)
	if err != nil {
		return &models.StorageError{Op: "delete image", Err: err}
	}
	if !deleted {
		return models.ErrNotFound
	}

	slog.Info("persona image removed", "owner", ownerID, "image_id", imageID)
	return nil
}

// ListImages returns the owner's images in upload order.
func (s *Service) ListImages(ctx context.Context, ownerID string) ([]models.PersonaImage, error) {
	imgs, err := s.repo.ListImages(ctx, ownerID)
	if err != nil {
		return nil, &models.StorageError{Op: "list images", Err: err}
	}
	return imgs, nil
}
