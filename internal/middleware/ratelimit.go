// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
)

// RateLimitByOwner allows limit requests per window for each authenticated
// owner, falling back to the client IP for anonymous requests. Must be
// applied after LoadSession.
func RateLimitByOwner(limit int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(limit, window,
		httprate.WithKeyFuncs(ownerKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeJSONError(w, http.StatusTooManyRequests, "too many generation requests, please slow down")
		}),
	)
}

func ownerKey(r *http.Request) (string, error) {
	if owner := OwnerFromCtx(r.Context()); owner != "" {
		return "owner:" + owner, nil
	}
	ip, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + ip, nil
}
