// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// textSystemPrompt frames text generations as marketing copy.
const textSystemPrompt = "You are a skilled content writer. Respond with the requested content only."

// OpenAI implements Provider on top of the official OpenAI SDK.
type OpenAI struct {
	client    openai.Client
	timeout   time.Duration
	moderator Moderator // nil when moderation is disabled
}

// NewOpenAI creates the adapter. SDK retries are disabled so each call is a
// single attempt.
func NewOpenAI(cfg Config) *OpenAI {
	opts := []option.RequestOption{option.WithMaxRetries(0)}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	p := &OpenAI{
		client:  openai.NewClient(opts...),
		timeout: timeout,
	}
	if cfg.Moderation {
		p.moderator = &openAIModerator{client: &p.client}
	}
	return p
}

// GenerateImage requests a single image and returns its URL.
func (p *OpenAI) GenerateImage(ctx context.Context, prompt, model string) (string, error) {
	ctx, cancel := detach(ctx, p.timeout)
	defer cancel()

	if err := p.screen(ctx, prompt); err != nil {
		return "", err
	}

	resp, err := p.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt: prompt,
		Model:  openai.ImageModel(model),
	})
	if err != nil {
		slog.Warn("openai image generation failed", "model", model, "error", err)
		return "", Normalize(err)
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", newError(KindProvider, errors.New("openai: empty image response"))
	}
	return resp.Data[0].URL, nil
}

// GenerateText runs a chat completion and returns the assistant's reply.
func (p *OpenAI) GenerateText(ctx context.Context, prompt, model string) (string, error) {
	ctx, cancel := detach(ctx, p.timeout)
	defer cancel()

	if err := p.screen(ctx, prompt); err != nil {
		return "", err
	}

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(textSystemPrompt),
			openai.UserMessage(prompt),
		},
		Model: model,
	})
	if err != nil {
		slog.Warn("openai chat completion failed", "model", model, "error", err)
		return "", Normalize(err)
	}
	if len(resp.Choices) == 0 {
		return "", newError(KindProvider, errors.New("openai: no content choices"))
	}
	return resp.Choices[0].Message.Content, nil
}

// Ping lists models to verify the key and endpoint at startup.
func (p *OpenAI) Ping(ctx context.Context) error {
	if _, err := p.client.Models.List(ctx); err != nil {
		return Normalize(err)
	}
	return nil
}

// screen runs the prompt through moderation when enabled. A moderation
// outage does not block generation; the provider applies its own filters.
func (p *OpenAI) screen(ctx context.Context, prompt string) error {
	if p.moderator == nil {
		return nil
	}
	res, err := p.moderator.CheckSafety(ctx, prompt)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return newError(KindTimeout, err)
		}
		slog.Warn("prompt moderation unavailable", "error", err)
		return nil
	}
	if !res.Safe {
		return newError(KindRejected, errors.New("prompt flagged by moderation"))
	}
	return nil
}
