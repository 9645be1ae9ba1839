// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/openai/openai-go"
)

// Kind classifies a provider failure.
type Kind string

const (
	KindUnavailable Kind = "provider_unavailable"
	KindRejected    Kind = "provider_rejected"
	KindTimeout     Kind = "provider_timeout"
	KindProvider    Kind = "provider_error"
)

// Human-readable messages recorded on failed generations. Provider payloads
// are never copied into them.
var kindMessages = map[Kind]string{
	KindUnavailable: "The AI provider is currently unavailable. Please try again later.",
	KindRejected:    "The AI provider rejected the request. Please revise your prompt and try again.",
	KindTimeout:     "The AI provider did not respond in time. Please try again.",
	KindProvider:    "The AI provider returned an unexpected error.",
}

// Error is the normalized failure returned by every Provider method.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// Unwrap exposes the underlying SDK or transport error for logging.
func (e *Error) Unwrap() error {
	return e.cause
}

// newError builds an *Error of kind k with its fixed message.
func newError(k Kind, cause error) *Error {
	return &Error{Kind: k, Message: kindMessages[k], cause: cause}
}

// KindOf returns the Kind of err, or KindProvider if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindProvider
}

// Normalize maps any error from the SDK or transport into an *Error.
// A nil err stays nil.
func Normalize(err error) error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return newError(KindTimeout, err)
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return newError(kindForStatus(apiErr.StatusCode, apiErr.Code), err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return newError(KindTimeout, err)
		}
		return newError(KindUnavailable, err)
	}

	return newError(KindProvider, err)
}

func kindForStatus(status int, code string) Kind {
	if code == "content_policy_violation" {
		return KindRejected
	}
	switch {
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return KindRejected
	case status == http.StatusRequestTimeout, status == http.StatusGatewayTimeout:
		return KindTimeout
	case status == http.StatusTooManyRequests, status >= 500:
		return KindUnavailable
	default:
		return KindProvider
	}
}
