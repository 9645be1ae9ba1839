// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
)

// ModerationResult contains the outcome of a prompt safety check.
type ModerationResult struct {
	Safe bool
}

// Moderator checks prompts for policy violations before they are sent to a
// generation endpoint.
type Moderator interface {
	CheckSafety(ctx context.Context, text string) (*ModerationResult, error)
}

// openAIModerator uses the OpenAI moderation endpoint, which is free for
// every API key holder.
type openAIModerator struct {
	client *openai.Client
}

func (m *openAIModerator) CheckSafety(ctx context.Context, text string) (*ModerationResult, error) {
	resp, err := m.client.Moderations.New(ctx, openai.ModerationNewParams{
		Input: openai.ModerationNewParamsInputUnion{OfString: openai.String(text)},
	})
	if err != nil {
		return nil, fmt.Errorf("moderation: %w", err)
	}

	for _, r := range resp.Results {
		if r.Flagged {
			return &ModerationResult{Safe: false}, nil
		}
	}
	return &ModerationResult{Safe: true}, nil
}
