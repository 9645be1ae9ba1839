// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// personagen API. Routes are split into an unauthenticated operations
// group (/health, /metrics) and the owner-scoped /api group.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"personagen/internal/handlers"
	"personagen/internal/metrics"
	"personagen/internal/middleware"
)

// Config carries the router's dependencies.
type Config struct {
	Sessions middleware.SessionGetter
	API      *handlers.API
	Checks   map[string]handlers.Check

	// GenerationsPerMinute caps generation requests per owner. Zero disables the limit.
	GenerationsPerMinute int
}

// New creates the chi router with all middleware and route groups wired up.
func New(cfg Config) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	r.Get("/health", handlers.Health(cfg.Checks))
	r.Handle("/metrics", metrics.Handler())

	api := cfg.API
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.LoadSession(cfg.Sessions))
		r.Use(middleware.RequireOwner)

		r.Get("/models", api.Models)

		r.Route("/persona", func(r chi.Router) {
			r.Use(metrics.HTTP("persona"))
			r.Get("/", api.GetPersona)
			r.Put("/", api.UpsertPersona)
			r.Post("/", api.UpsertPersona)
			r.Get("/images", api.ListPersonaImages)
			r.Post("/images", api.UploadPersonaImage)
			r.Delete("/images/{id}", api.DeletePersonaImage)
		})

		// Generation endpoints call the provider and are rate limited per owner.
		limit := generationLimit(cfg.GenerationsPerMinute)
		r.Route("/generations", func(r chi.Router) {
			r.Use(metrics.HTTP("generations"))
			r.Get("/", api.ListGenerations)
			r.With(limit).Post("/", api.CreateGeneration)
			r.Get("/{id}", api.GetGeneration)
			r.Delete("/{id}", api.DeleteGeneration)
		})
		r.Route("/generate", func(r chi.Router) {
			r.Use(metrics.HTTP("generate"), limit)
			r.Post("/image", api.GenerateImage)
			r.Post("/text", api.GenerateText)
		})

		r.With(metrics.HTTP("history")).Get("/history/stats", api.HistoryStats)
		r.With(metrics.HTTP("dashboard")).Get("/dashboard", api.Dashboard)
	})

	return r
}

func generationLimit(perMinute int) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return middleware.RateLimitByOwner(perMinute, time.Minute)
}
