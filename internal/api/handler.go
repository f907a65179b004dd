// Package api implements the HTTP handlers: recipe generation and
// revision, history, favorites, preferences, image generation, health and
// share previews.
package api

import (
	"context"

	"github.com/recipelab/backend/config"
	"github.com/recipelab/backend/internal/cache"
	"github.com/recipelab/backend/internal/model"
	"github.com/recipelab/backend/internal/service"
	"github.com/recipelab/backend/internal/store"
)

// ImageGenerator is what the image endpoint needs from the image pipeline.
type ImageGenerator interface {
	GenerateAndStore(ctx context.Context, recipeID, uid, recipeText string) (string, error)
}

// Handler carries the shared dependencies for all routes.
type Handler struct {
	cfg       *config.Config
	store     *store.Store
	generator service.RecipeGenerator
	images    ImageGenerator
	recipes   cache.Cache[model.RecordSnapshot]
}

// New wires a Handler. images may be nil when blob storage is not
// configured; the image endpoint then reports the feature unavailable.
func New(cfg *config.Config, st *store.Store, gen service.RecipeGenerator, images ImageGenerator, recipes cache.Cache[model.RecordSnapshot]) *Handler {
	return &Handler{
		cfg:       cfg,
		store:     st,
		generator: gen,
		images:    images,
		recipes:   recipes,
	}
}
