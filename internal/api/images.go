package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/recipelab/backend/internal/middleware"
)

// mockImageURL is returned in mock mode so the frontend flow can be
// exercised without an image provider.
const mockImageURL = "https://images.unsplash.com/photo-1546069901-ba9599a7e63c"

// Bounds on the recipe text sent to the image provider.
const (
	minImageTextLength = 10
	maxImageTextLength = 4000
)

// GenerateImage handles POST /api/generate-image: produces a photo for an
// owned recipe and returns its public URL.
func (h *Handler) GenerateImage(c *gin.Context) {
	uid := c.GetString(middleware.ContextUID)

	if !h.cfg.EnableImageGeneration {
		c.JSON(http.StatusForbidden, gin.H{"error": "Image generation is disabled"})
		return
	}

	profile, err := h.store.GetUserProfile(c.Request.Context(), uid)
	if err != nil {
		log.Printf("[ImageAPI] Failed to load profile for %s: %v", uid, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load preferences"})
		return
	}
	if !profile.Preferences.ImageGenerationEnabled {
		c.JSON(http.StatusForbidden, gin.H{"error": "Image generation is disabled in your preferences"})
		return
	}

	var req GenerateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if !recipeIDPattern.MatchString(req.RecipeID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe id"})
		return
	}
	recipeText := req.Text()
	if len(recipeText) < minImageTextLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valid recipe data is required"})
		return
	}
	if len(recipeText) > maxImageTextLength {
		recipeText = recipeText[:maxImageTextLength]
	}

	if h.cfg.MockMode {
		c.JSON(http.StatusOK, gin.H{"image_url": mockImageURL})
		return
	}

	if h.images == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Image storage is not configured"})
		return
	}

	url, err := h.images.GenerateAndStore(c.Request.Context(), req.RecipeID, uid, recipeText)
	if err != nil {
		log.Printf("[ImageAPI] Image generation failed for recipe %s: %v", req.RecipeID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate image"})
		return
	}

	if snapshot, ok := h.recipes.Get(req.RecipeID); ok {
		snapshot.ImageURL = url
		h.recipes.Set(req.RecipeID, snapshot)
	}

	c.JSON(http.StatusOK, gin.H{"image_url": url})
}
