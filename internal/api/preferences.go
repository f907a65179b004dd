package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/recipelab/backend/internal/middleware"
)

// GetPreferences handles GET /api/preferences. Users who never saved any
// get the defaults.
func (h *Handler) GetPreferences(c *gin.Context) {
	uid := c.GetString(middleware.ContextUID)

	profile, err := h.store.GetUserProfile(c.Request.Context(), uid)
	if err != nil {
		log.Printf("[PreferencesAPI] Failed to load profile for %s: %v", uid, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load preferences"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"preferences": profile.Preferences})
}

// UpdatePreferences handles PUT /api/preferences: merges only the fields
// present in the body into the stored preferences.
func (h *Handler) UpdatePreferences(c *gin.Context) {
	var req PreferencesUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	uid := c.GetString(middleware.ContextUID)

	profile, err := h.store.GetUserProfile(c.Request.Context(), uid)
	if err != nil {
		log.Printf("[PreferencesAPI] Failed to load profile for %s: %v", uid, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load preferences"})
		return
	}

	if req.ImageGenerationEnabled != nil {
		profile.Preferences.ImageGenerationEnabled = *req.ImageGenerationEnabled
	}

	if err := h.store.SaveUserProfile(c.Request.Context(), profile); err != nil {
		log.Printf("[PreferencesAPI] Failed to save preferences for %s: %v", uid, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save preferences"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"preferences": profile.Preferences})
}
