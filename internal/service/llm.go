package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/recipelab/backend/internal/model"
)

// ErrGeneration covers provider errors, timeouts and schema-non-conformant
// output. Handlers surface it as a generic internal failure so provider
// detail never leaks to callers.
var ErrGeneration = errors.New("recipe generation failed")

// Modifiers are the optional enumerated generation constraints. Zero values
// mean the defaults (standard/standard/any/standard) and add no constraint
// lines to the prompt.
type Modifiers struct {
	Complexity string
	Diet       string
	Time       string
	Servings   string
}

// Lines renders the non-default modifiers as labeled constraint lines.
func (m Modifiers) Lines() []string {
	var lines []string
	if m.Complexity != "" && m.Complexity != "standard" {
		lines = append(lines, "Complexity Level: "+m.Complexity)
	}
	if m.Diet != "" && m.Diet != "standard" {
		lines = append(lines, "Dietary Restriction: "+m.Diet)
	}
	if m.Time != "" && m.Time != "any" {
		lines = append(lines, "Time Constraint: "+m.Time)
	}
	if m.Servings != "" && m.Servings != "standard" {
		lines = append(lines, "Target Servings: "+m.Servings)
	}
	return lines
}

// RecipeGenerator produces and revises structured recipes. The LLM-backed
// implementation is swapped for a deterministic one in mock mode and tests.
type RecipeGenerator interface {
	Generate(ctx context.Context, prompt string, mods Modifiers) (*model.Recipe, error)
	Update(ctx context.Context, original *model.Recipe, modifications string) (*model.Recipe, error)
}

const recipeSystemMessage = `You are a culinary expert and food scientist with the precision of a test kitchen chef.
Your recipes should rely on technique, food science, and clear, descriptive instructions.

Write with the authority and explanatory style of J. Kenji López-Alt or a Serious Eats guide.
- Explain the "WHY" behind key steps.
- Use precise visual and sensory cues.
- Suggest specific techniques to improve the final result.

Respond with a single JSON object using exactly this structure:
{
    "title": "Descriptive and appetizing title for the dish",
    "description": "A short, engaging headnote explaining the dish and what makes it special",
    "prep_time": "e.g. '30 minutes'",
    "cook_time": "e.g. '1 hour'",
    "servings": "e.g. '4-6 servings'",
    "macros": {"calories": 650, "protein": 25, "carbs": 70, "fat": 30},
    "ingredients": [
        {"group_name": "Main", "items": ["1 cup (150g) all-purpose flour", "3 large eggs"]}
    ],
    "instructions": [
        "Bring a large pot of salted water to a <strong>boil</strong>."
    ],
    "notes": ["Chef's notes, techniques, or serving suggestions"]
}

The macros fields must be numbers, not strings, estimated per serving.
Group ingredients sensibly (e.g. Main, Sauce, Garnish) with precise metrics and prep notes per item.
Instructions must be clear and actionable, start with a strong verb, and <strong>bold</strong> key temperatures, times, and crucial visual cues using <strong> tags.`

const updateSystemMessage = `You are a meticulous test kitchen editor. Your goal is to modify the provided recipe according to the user's request while STRICTLY preserving the original recipe's voice, formatting, and scientific precision.

- Do NOT summarize or shorten unchanged sections.
- When changing ingredients, ensure quantities and techniques are adjusted to match.
- If the modification affects the cooking method (e.g., frying to baking), rewrite the relevant instructions completely with proper timings and visual cues.

Respond with a single JSON object with the same structure as the original recipe: title, description, prep_time, cook_time, servings, macros, ingredients (groups of {group_name, items}), instructions, notes.`

// LLMService generates recipes through a chat-completions provider.
type LLMService struct {
	apiKey string
	apiURL string
	model  string
	client *http.Client
}

// NewLLMService creates the provider-backed generator.
func NewLLMService(apiKey, apiURL, llmModel string) (*LLMService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("LLM API key must be set")
	}
	return &LLMService{
		apiKey: apiKey,
		apiURL: apiURL,
		model:  llmModel,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

// Message represents a message in the chat
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request represents a chat-completions request
type Request struct {
	Model          string            `json:"model"`
	Messages       []Message         `json:"messages"`
	ResponseFormat map[string]string `json:"response_format"`
	MaxTokens      int               `json:"max_tokens"`
	Temperature    float64           `json:"temperature"`
}

// Generate creates a recipe from a user prompt with modifiers.
func (s *LLMService) Generate(ctx context.Context, prompt string, mods Modifiers) (*model.Recipe, error) {
	fullPrompt := "Request: " + prompt + "\n"
	if lines := mods.Lines(); len(lines) > 0 {
		fullPrompt += "\nConstraints & Preferences:\n"
		for _, l := range lines {
			fullPrompt += "- " + l + "\n"
		}
	}
	fullPrompt += "\nPlease create a detailed, step-by-step recipe following the system guidelines."

	return s.complete(ctx, recipeSystemMessage, fullPrompt)
}

// Update revises an existing recipe per the modification instructions,
// preserving unaffected sections.
func (s *LLMService) Update(ctx context.Context, original *model.Recipe, modifications string) (*model.Recipe, error) {
	updatePrompt := "ORIGINAL RECIPE:\n" +
		"================\n" +
		FormatRecipeText(original) + "\n" +
		"================\n\n" +
		"MODIFICATION REQUEST:\n" +
		modifications + "\n\n" +
		"Please rewrite the recipe to incorporate these changes. Keep the rest of the recipe consistent with the original style."

	return s.complete(ctx, updateSystemMessage, updatePrompt)
}

func (s *LLMService) complete(ctx context.Context, systemMsg, userMsg string) (*model.Recipe, error) {
	reqBody := Request{
		Model: s.model,
		Messages: []Message{
			{Role: "system", Content: systemMsg},
			{Role: "user", Content: userMsg},
		},
		ResponseFormat: map[string]string{"type": "json_object"},
		MaxTokens:      2000,
		Temperature:    0.9,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("[LLMService] Provider request failed: %v", err)
		return nil, ErrGeneration
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("[LLMService] Failed to read provider response: %v", err)
		return nil, ErrGeneration
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("[LLMService] Provider returned status %d: %s", resp.StatusCode, string(body))
		return nil, ErrGeneration
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
			TotalTokens      int `json:"total_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		log.Printf("[LLMService] Failed to decode provider response: %v", err)
		return nil, ErrGeneration
	}
	if len(result.Choices) == 0 {
		log.Printf("[LLMService] No choices in provider response")
		return nil, ErrGeneration
	}

	log.Printf("[LLMService] Token usage - prompt: %d, completion: %d, total: %d",
		result.Usage.PromptTokens, result.Usage.CompletionTokens, result.Usage.TotalTokens)

	recipe, err := ParseRecipe([]byte(result.Choices[0].Message.Content))
	if err != nil {
		log.Printf("[LLMService] Schema-non-conformant output: %v", err)
		return nil, ErrGeneration
	}
	return recipe, nil
}

// ParseRecipe decodes provider output into a Recipe and checks the parts a
// usable recipe cannot miss.
func ParseRecipe(data []byte) (*model.Recipe, error) {
	var recipe model.Recipe
	if err := json.Unmarshal(data, &recipe); err != nil {
		return nil, fmt.Errorf("failed to parse recipe: %w", err)
	}
	if recipe.Title == "" || recipe.Description == "" {
		return nil, fmt.Errorf("recipe is missing title or description")
	}
	if len(recipe.Ingredients) == 0 || len(recipe.Instructions) == 0 {
		return nil, fmt.Errorf("recipe is missing ingredients or instructions")
	}
	return &recipe, nil
}

// FormatRecipeText serializes a recipe into the structured plain-text form
// embedded in update prompts: title, description, grouped ingredients,
// numbered instructions, bulleted notes.
func FormatRecipeText(r *model.Recipe) string {
	var b strings.Builder

	b.WriteString("Title: " + r.Title + "\n")
	b.WriteString("Description: " + r.Description + "\n\n")

	b.WriteString("Ingredients:\n")
	for _, group := range r.Ingredients {
		if group.GroupName != "" {
			b.WriteString(group.GroupName + ":\n")
		}
		for _, item := range group.Items {
			b.WriteString("- " + item + "\n")
		}
	}

	b.WriteString("\nInstructions:\n")
	for i, step := range r.Instructions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}

	b.WriteString("\nNotes:\n")
	for _, note := range r.Notes {
		b.WriteString("- " + note + "\n")
	}

	return strings.TrimRight(b.String(), "\n")
}
