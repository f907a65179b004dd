package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/recipelab/backend/internal/middleware"
	"github.com/recipelab/backend/internal/model"
)

func favoritesResponse(list model.FavoriteList) gin.H {
	return gin.H{
		"favorites":   list,
		"favoriteIds": list.IDs(),
	}
}

// ListFavorites handles GET /api/favorites.
func (h *Handler) ListFavorites(c *gin.Context) {
	uid := c.GetString(middleware.ContextUID)

	profile, err := h.store.GetUserProfile(c.Request.Context(), uid)
	if err != nil {
		log.Printf("[FavoritesAPI] Failed to load profile for %s: %v", uid, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load favorites"})
		return
	}
	c.JSON(http.StatusOK, favoritesResponse(profile.Favorites))
}

// AddFavorite handles POST /api/favorites/:recipeId. Adding an existing
// favorite is a no-op; the list is capped.
func (h *Handler) AddFavorite(c *gin.Context) {
	recipeID := c.Param("recipeId")
	if !recipeIDPattern.MatchString(recipeID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe id"})
		return
	}

	var req AddFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}

	uid := c.GetString(middleware.ContextUID)

	profile, err := h.store.GetUserProfile(c.Request.Context(), uid)
	if err != nil {
		log.Printf("[FavoritesAPI] Failed to load profile for %s: %v", uid, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load favorites"})
		return
	}

	if profile.Favorites.Contains(recipeID) {
		c.JSON(http.StatusOK, favoritesResponse(profile.Favorites))
		return
	}
	if len(profile.Favorites) >= model.MaxFavorites {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Favorites limit reached"})
		return
	}

	profile.Favorites = append(profile.Favorites, model.FavoriteItem{ID: recipeID, Title: req.Title})
	if err := h.store.SaveUserProfile(c.Request.Context(), profile); err != nil {
		log.Printf("[FavoritesAPI] Failed to save favorites for %s: %v", uid, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save favorites"})
		return
	}
	c.JSON(http.StatusOK, favoritesResponse(profile.Favorites))
}

// RemoveFavorite handles DELETE /api/favorites/:recipeId. Removing an
// absent favorite is a no-op.
func (h *Handler) RemoveFavorite(c *gin.Context) {
	recipeID := c.Param("recipeId")
	if !recipeIDPattern.MatchString(recipeID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe id"})
		return
	}

	uid := c.GetString(middleware.ContextUID)

	profile, err := h.store.GetUserProfile(c.Request.Context(), uid)
	if err != nil {
		log.Printf("[FavoritesAPI] Failed to load profile for %s: %v", uid, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load favorites"})
		return
	}

	kept := profile.Favorites[:0:0]
	for _, f := range profile.Favorites {
		if f.ID != recipeID {
			kept = append(kept, f)
		}
	}
	if len(kept) != len(profile.Favorites) {
		profile.Favorites = kept
		if err := h.store.SaveUserProfile(c.Request.Context(), profile); err != nil {
			log.Printf("[FavoritesAPI] Failed to save favorites for %s: %v", uid, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save favorites"})
			return
		}
	}
	c.JSON(http.StatusOK, favoritesResponse(profile.Favorites))
}
