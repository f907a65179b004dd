// Package server wires configuration, storage, caches and services into
// the HTTP server.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/recipelab/backend/config"
	"github.com/recipelab/backend/internal/api"
	"github.com/recipelab/backend/internal/cache"
	"github.com/recipelab/backend/internal/database"
	"github.com/recipelab/backend/internal/middleware"
	"github.com/recipelab/backend/internal/model"
	"github.com/recipelab/backend/internal/service"
	"github.com/recipelab/backend/internal/store"
)

// Server is the assembled application.
type Server struct {
	cfg    *config.Config
	engine *gin.Engine
	http   *http.Server
	redis  *redis.Client
}

// New builds the full dependency graph from configuration.
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT secret must be set")
	}

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	st := store.New(db)

	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		log.Printf("[Server] Redis unavailable, rate limiting disabled: %v", err)
		redisClient = nil
	}

	tokenCache := cache.NewTTL[service.Identity](cache.TokenTTL, cache.TokenCapacity)
	recipeCache := cache.NewTTL[model.RecordSnapshot](cache.RecipeTTL, cache.RecipeCapacity)

	verifier := service.NewAuthService(cfg.JWTSecret, tokenCache)

	var generator service.RecipeGenerator
	if cfg.MockMode {
		log.Printf("[Server] Mock mode enabled, using canned recipes")
		generator = service.MockRecipeGenerator{}
	} else {
		generator, err = service.NewLLMService(cfg.LLMAPIKey, cfg.LLMAPIURL, cfg.LLMModel)
		if err != nil {
			return nil, fmt.Errorf("LLM service init failed: %w", err)
		}
	}

	var images api.ImageGenerator
	if cfg.EnableImageGeneration && !cfg.MockMode {
		s3cfg, err := config.NewS3Config(ctx, cfg.S3Bucket)
		if err != nil {
			return nil, fmt.Errorf("S3 init failed: %w", err)
		}
		if s3cfg != nil {
			if err := s3cfg.SetupBucketPolicy(ctx); err != nil {
				return nil, fmt.Errorf("S3 bucket policy setup failed: %w", err)
			}
			imageSvc, err := service.NewImageService(cfg.ImageAPIKey, cfg.ImageAPIURL, cfg.ImageModel, s3cfg, st)
			if err != nil {
				return nil, fmt.Errorf("image service init failed: %w", err)
			}
			images = imageSvc
		} else {
			log.Printf("[Server] No S3 bucket configured, image storage disabled")
		}
	}

	handler := api.New(cfg, st, generator, images, recipeCache)

	if !cfg.IsLocal() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery())
	engine.Use(middleware.CORS(cfg.FrontendURLs))

	limiter := middleware.RateLimit(redisClient, cfg.IsLocal())
	RegisterRoutes(engine, handler, verifier, limiter)
	api.ServeFrontend(engine, handler, cfg.FrontendDist)

	return &Server{
		cfg:    cfg,
		engine: engine,
		redis:  redisClient,
		http: &http.Server{
			Addr:    ":" + cfg.Port,
			Handler: engine,
		},
	}, nil
}

// RegisterRoutes mounts the API surface on the engine. The rate limiter
// guards the expensive and publicly reachable routes.
func RegisterRoutes(r *gin.Engine, h *api.Handler, verifier service.IdentityVerifier, limiter gin.HandlerFunc) {
	authed := middleware.RequireAuth(verifier)
	optional := middleware.OptionalAuth(verifier)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/health", limiter, h.Health)
		apiGroup.GET("/recipe/:id", optional, h.GetRecipe)
		apiGroup.GET("/share/recipe/:id", limiter, h.ShareRecipe)

		apiGroup.POST("/generate-recipe", limiter, authed, h.GenerateRecipe)
		apiGroup.POST("/update-recipe", limiter, authed, h.UpdateRecipe)
		apiGroup.POST("/generate-image", limiter, authed, h.GenerateImage)
		apiGroup.GET("/recipe-history", authed, h.RecipeHistory)
		apiGroup.PATCH("/recipe/:id/archive", authed, h.ArchiveRecipe)

		apiGroup.GET("/favorites", authed, h.ListFavorites)
		apiGroup.POST("/favorites/:recipeId", authed, h.AddFavorite)
		apiGroup.DELETE("/favorites/:recipeId", authed, h.RemoveFavorite)

		apiGroup.GET("/preferences", authed, h.GetPreferences)
		apiGroup.PUT("/preferences", authed, h.UpdatePreferences)
	}
}

// Start begins serving. Blocks until the listener fails or is shut down.
func (s *Server) Start() error {
	log.Printf("[Server] Listening on :%s", s.cfg.Port)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and closes connections.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			log.Printf("[Server] Redis close failed: %v", err)
		}
	}
	return s.http.Shutdown(ctx)
}
