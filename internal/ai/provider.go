// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package ai adapts a generative-AI provider behind a uniform contract.
// Every failure returned by a Provider is an *Error carrying one of the
// kinds in errors.go and a human-readable message.
//
// Adapters perform exactly one attempt per call. Retrying is left to the
// user, who resubmits the request.
package ai

import (
	"context"
	"time"
)

// DefaultTimeout bounds a single provider call when none is configured.
const DefaultTimeout = 60 * time.Second

// Provider generates artifacts from a final prompt.
type Provider interface {
	// GenerateImage returns the URL of a generated image.
	GenerateImage(ctx context.Context, prompt, model string) (string, error)

	// GenerateText returns generated text.
	GenerateText(ctx context.Context, prompt, model string) (string, error)
}

// Config holds the credentials and settings for the OpenAI adapter.
type Config struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	Moderation bool
}

// detach returns a context that survives cancellation of ctx and expires
// after timeout. A dispatched call always runs to an outcome.
func detach(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), timeout)
}
