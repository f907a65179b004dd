package api

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/recipelab/backend/internal/model"
	"github.com/recipelab/backend/internal/service"
)

// MaxPromptLength bounds the free-text recipe request.
const MaxPromptLength = 1000

// recipeIDPattern matches the IDs this service mints. Anything else is
// rejected before touching storage.
var recipeIDPattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

var (
	validComplexity = map[string]bool{"simple": true, "standard": true, "fancy": true}
	validDiet       = map[string]bool{"standard": true, "high protein": true, "low calorie": true, "low fat": true, "low carb": true, "junk": true}
	validTime       = map[string]bool{"any": true, "quick": true, "medium": true, "slow": true}
	validServings   = map[string]bool{"standard": true, "single": true, "pair": true, "party": true}
)

// RecipeRequest is the body of POST /api/generate-recipe.
type RecipeRequest struct {
	Prompt     string `json:"prompt"`
	Complexity string `json:"complexity"`
	Diet       string `json:"diet"`
	Time       string `json:"time"`
	Servings   string `json:"servings"`
}

// Validate checks the prompt bounds and modifier enums, filling defaults
// for omitted modifiers.
func (r *RecipeRequest) Validate() error {
	r.Prompt = strings.TrimSpace(r.Prompt)
	if r.Prompt == "" {
		return fmt.Errorf("prompt must not be empty")
	}
	if len(r.Prompt) > MaxPromptLength {
		return fmt.Errorf("prompt must be at most %d characters", MaxPromptLength)
	}
	if r.Complexity == "" {
		r.Complexity = "standard"
	}
	if r.Diet == "" {
		r.Diet = "standard"
	}
	if r.Time == "" {
		r.Time = "any"
	}
	if r.Servings == "" {
		r.Servings = "standard"
	}
	if !validComplexity[r.Complexity] {
		return fmt.Errorf("invalid complexity %q", r.Complexity)
	}
	if !validDiet[r.Diet] {
		return fmt.Errorf("invalid diet %q", r.Diet)
	}
	if !validTime[r.Time] {
		return fmt.Errorf("invalid time %q", r.Time)
	}
	if !validServings[r.Servings] {
		return fmt.Errorf("invalid servings %q", r.Servings)
	}
	return nil
}

// Modifiers converts the validated request into generation constraints.
func (r *RecipeRequest) Modifiers() service.Modifiers {
	return service.Modifiers{
		Complexity: r.Complexity,
		Diet:       r.Diet,
		Time:       r.Time,
		Servings:   r.Servings,
	}
}

// UpdateRecipeRequest is the body of POST /api/update-recipe.
type UpdateRecipeRequest struct {
	ID             string        `json:"id"`
	OriginalRecipe *model.Recipe `json:"original_recipe"`
	Modifications  string        `json:"modifications"`
}

// Validate checks the id shape and the modification text.
func (r *UpdateRecipeRequest) Validate() error {
	if !recipeIDPattern.MatchString(r.ID) {
		return fmt.Errorf("invalid recipe id")
	}
	r.Modifications = strings.TrimSpace(r.Modifications)
	if r.Modifications == "" {
		return fmt.Errorf("modifications must not be empty")
	}
	if len(r.Modifications) > MaxPromptLength {
		return fmt.Errorf("modifications must be at most %d characters", MaxPromptLength)
	}
	return nil
}

// GenerateImageRequest is the body of POST /api/generate-image. Recipe is
// either a recipe object or a plain string.
type GenerateImageRequest struct {
	RecipeID string          `json:"recipe_id"`
	Recipe   json.RawMessage `json:"recipe"`
}

// Text derives the provider prompt text from the recipe payload: a string
// passes through, an object becomes "title: description".
func (r *GenerateImageRequest) Text() string {
	var s string
	if err := json.Unmarshal(r.Recipe, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var obj struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(r.Recipe, &obj); err != nil {
		return ""
	}
	return strings.TrimSpace(obj.Title + ": " + obj.Description)
}

// AddFavoriteRequest carries the display title stored alongside the id.
type AddFavoriteRequest struct {
	Title string `json:"title"`
}

// PreferencesUpdate is the body of PUT /api/preferences. Pointer fields
// distinguish "not sent" from "set to false".
type PreferencesUpdate struct {
	ImageGenerationEnabled *bool `json:"imageGenerationEnabled"`
}
