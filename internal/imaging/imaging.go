// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging inspects uploaded images. It reads only the image header,
// so a large upload is never fully decoded.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder

	_ "golang.org/x/image/webp" // register WebP decoder
)

// MaxPixels bounds width*height of an accepted image.
const MaxPixels = 50_000_000

// ErrUnsupported is returned for data that is not a JPEG, PNG, GIF or WebP image.
var ErrUnsupported = errors.New("imaging: unsupported image format")

// Info describes an inspected image.
type Info struct {
	ContentType string
	Extension   string
	Width       int
	Height      int
}

// formats maps decoder names to MIME type and file extension.
var formats = map[string][2]string{
	"jpeg": {"image/jpeg", ".jpg"},
	"png":  {"image/png", ".png"},
	"gif":  {"image/gif", ".gif"},
	"webp": {"image/webp", ".webp"},
}

// Inspect decodes the image header in data and validates its dimensions.
func Inspect(data []byte) (Info, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return Info{}, ErrUnsupported
		}
		return Info{}, fmt.Errorf("imaging: decode header: %w", err)
	}

	f, ok := formats[format]
	if !ok {
		return Info{}, ErrUnsupported
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Info{}, fmt.Errorf("imaging: invalid dimensions %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Width*cfg.Height > MaxPixels {
		return Info{}, fmt.Errorf("imaging: %dx%d exceeds the %d pixel limit", cfg.Width, cfg.Height, MaxPixels)
	}

	return Info{ContentType: f[0], Extension: f[1], Width: cfg.Width, Height: cfg.Height}, nil
}
