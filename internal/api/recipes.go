package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/recipelab/backend/internal/middleware"
	"github.com/recipelab/backend/internal/model"
	"github.com/recipelab/backend/internal/store"
)

// GenerateRecipe handles POST /api/generate-recipe: runs the generator,
// persists the result, and primes the response cache.
func (h *Handler) GenerateRecipe(c *gin.Context) {
	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	uid := c.GetString(middleware.ContextUID)

	recipe, err := h.generator.Generate(c.Request.Context(), req.Prompt, req.Modifiers())
	if err != nil {
		log.Printf("[RecipeAPI] Generation failed for user %s: %v", uid, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate recipe"})
		return
	}

	record := &model.RecipeRecord{
		UID:            uid,
		Prompt:         req.Prompt,
		Complexity:     req.Complexity,
		Diet:           req.Diet,
		TimeConstraint: req.Time,
		Servings:       req.Servings,
		Recipe:         model.RecipeJSON(*recipe),
	}
	id, err := h.store.CreateRecipeRecord(c.Request.Context(), record)
	if err != nil {
		log.Printf("[RecipeAPI] Failed to persist recipe for user %s: %v", uid, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save recipe"})
		return
	}

	h.rememberDisplayName(c, uid)
	h.recipes.Set(id, record.Snapshot())

	c.JSON(http.StatusOK, gin.H{
		"recipe": recipe,
		"id":     id,
	})
}

// rememberDisplayName keeps the verified display name on the profile so
// reads by other users can attribute recipes. Best effort.
func (h *Handler) rememberDisplayName(c *gin.Context, uid string) {
	name := c.GetString(middleware.ContextDisplayName)
	if name == "" {
		return
	}
	profile, err := h.store.GetUserProfile(c.Request.Context(), uid)
	if err != nil {
		log.Printf("[RecipeAPI] Failed to load profile for %s: %v", uid, err)
		return
	}
	if profile.DisplayName == name {
		return
	}
	profile.DisplayName = name
	if err := h.store.SaveUserProfile(c.Request.Context(), profile); err != nil {
		log.Printf("[RecipeAPI] Failed to save display name for %s: %v", uid, err)
	}
}

// UpdateRecipe handles POST /api/update-recipe: revises an owned recipe
// through the generator and merges the result into the stored record.
func (h *Handler) UpdateRecipe(c *gin.Context) {
	var req UpdateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	uid := c.GetString(middleware.ContextUID)

	record, err := h.store.GetRecipeRecord(c.Request.Context(), req.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
			return
		}
		log.Printf("[RecipeAPI] Failed to load recipe %s: %v", req.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load recipe"})
		return
	}
	if record.UID != uid {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your recipe"})
		return
	}

	original := req.OriginalRecipe
	if original == nil {
		r := record.Recipe.Recipe()
		original = &r
	}

	updated, err := h.generator.Update(c.Request.Context(), original, req.Modifications)
	if err != nil {
		log.Printf("[RecipeAPI] Update generation failed for recipe %s: %v", req.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update recipe"})
		return
	}

	err = h.store.UpdateRecipeRecord(c.Request.Context(), req.ID, map[string]interface{}{
		"recipe":     model.RecipeJSON(*updated),
		"updated_at": time.Now(),
	})
	if err != nil {
		log.Printf("[RecipeAPI] Failed to persist update for recipe %s: %v", req.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save recipe"})
		return
	}

	record.Recipe = model.RecipeJSON(*updated)
	record.UpdatedAt = time.Now()
	h.recipes.Set(req.ID, record.Snapshot())

	c.JSON(http.StatusOK, gin.H{"recipe": updated})
}

// GetRecipe handles GET /api/recipe/:id. Reads are public; the prompt is
// only included for the owner. Cache hits skip the data store entirely.
func (h *Handler) GetRecipe(c *gin.Context) {
	id := c.Param("id")
	if !recipeIDPattern.MatchString(id) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe id"})
		return
	}

	snapshot, ok := h.recipes.Get(id)
	if !ok {
		record, err := h.store.GetRecipeRecord(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
				return
			}
			log.Printf("[RecipeAPI] Failed to load recipe %s: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load recipe"})
			return
		}
		snapshot = record.Snapshot()
		h.recipes.Set(id, snapshot)
	}

	uid := c.GetString(middleware.ContextUID)

	resp := gin.H{
		"recipe":      snapshot.Recipe,
		"id":          id,
		"image_url":   snapshot.ImageURL,
		"timestamp":   snapshot.Timestamp,
		"uid":         snapshot.UID,
		"displayName": h.ownerDisplayName(c, snapshot.UID),
	}
	if uid == snapshot.UID && uid != "" {
		resp["prompt"] = snapshot.Prompt
	}

	c.JSON(http.StatusOK, resp)
}

// ownerDisplayName looks up the creator's display name. Best effort: a
// missing profile or a store error just means no attribution.
func (h *Handler) ownerDisplayName(c *gin.Context, uid string) string {
	profile, err := h.store.GetUserProfile(c.Request.Context(), uid)
	if err != nil {
		log.Printf("[RecipeAPI] Failed to load owner profile for %s: %v", uid, err)
		return ""
	}
	return profile.DisplayName
}

// RecipeHistory handles GET /api/recipe-history: the caller's non-archived
// records, newest first.
func (h *Handler) RecipeHistory(c *gin.Context) {
	uid := c.GetString(middleware.ContextUID)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(store.DefaultPageSize)))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	if limit <= 0 {
		limit = store.DefaultPageSize
	}
	if limit > store.MaxPageSize {
		limit = store.MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	records, err := h.store.ListRecipeRecords(c.Request.Context(), uid, limit, offset)
	if err != nil {
		log.Printf("[RecipeAPI] Failed to list history for %s: %v", uid, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load history"})
		return
	}

	items := make([]gin.H, 0, len(records))
	for _, rec := range records {
		items = append(items, gin.H{
			"id":        rec.ID,
			"title":     rec.Recipe.Title,
			"prompt":    rec.Prompt,
			"image_url": rec.ImageURL,
			"timestamp": rec.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"history": items,
		"limit":   limit,
		"offset":  offset,
	})
}

// ArchiveRecipe handles PATCH /api/recipe/:id/archive: soft-deletes an
// owned record and drops it from the response cache.
func (h *Handler) ArchiveRecipe(c *gin.Context) {
	id := c.Param("id")
	if !recipeIDPattern.MatchString(id) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe id"})
		return
	}

	uid := c.GetString(middleware.ContextUID)

	record, err := h.store.GetRecipeRecord(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
			return
		}
		log.Printf("[RecipeAPI] Failed to load recipe %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load recipe"})
		return
	}
	if record.UID != uid {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your recipe"})
		return
	}

	now := time.Now()
	err = h.store.UpdateRecipeRecord(c.Request.Context(), id, map[string]interface{}{
		"archived":    true,
		"archived_at": &now,
	})
	if err != nil {
		log.Printf("[RecipeAPI] Failed to archive recipe %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to archive recipe"})
		return
	}

	h.recipes.Delete(id)
	c.JSON(http.StatusOK, gin.H{"message": "Recipe archived"})
}
