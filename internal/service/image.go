package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/recipelab/backend/internal/imageutil"
	"github.com/recipelab/backend/internal/store"
)

// ErrImageGeneration covers provider failures and unusable provider output.
var ErrImageGeneration = errors.New("image generation failed")

// maxImageSizeKB is the compression budget for stored recipe images.
const maxImageSizeKB = 500

// Uploader stores an image under a key and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// ImageService generates a food photograph for a recipe, compresses it, and
// uploads it to object storage.
type ImageService struct {
	apiKey   string
	apiURL   string
	model    string
	client   *http.Client
	uploader Uploader
	store    *store.Store
}

// NewImageService creates the provider-backed image generator.
func NewImageService(apiKey, apiURL, imageModel string, uploader Uploader, st *store.Store) (*ImageService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("image API key must be set")
	}
	return &ImageService{
		apiKey:   apiKey,
		apiURL:   apiURL,
		model:    imageModel,
		client:   &http.Client{Timeout: 120 * time.Second},
		uploader: uploader,
		store:    st,
	}, nil
}

func buildImagePrompt(recipeText string) string {
	return "Professional food photography of the following dish: " + recipeText + ". " +
		"Overhead or three-quarter angle shot, natural soft lighting, shallow depth of field, " +
		"styled on a rustic table with appropriate garnishes and props. " +
		"Appetizing, vibrant, magazine-quality. No text, no hands, no people."
}

// GenerateAndStore produces an image for the recipe text, compresses it,
// uploads it as recipe-images/{id}.jpg, and best-effort records the URL on
// the recipe if the caller still owns it.
func (s *ImageService) GenerateAndStore(ctx context.Context, recipeID, uid, recipeText string) (string, error) {
	raw, err := s.generate(ctx, recipeText)
	if err != nil {
		return "", err
	}

	compressed, contentType, err := imageutil.Compress(raw, maxImageSizeKB)
	if err != nil {
		log.Printf("[ImageService] Compression failed for recipe %s: %v", recipeID, err)
		return "", ErrImageGeneration
	}

	key := "recipe-images/" + recipeID + ".jpg"
	url, err := s.uploader.Upload(ctx, key, compressed, contentType)
	if err != nil {
		log.Printf("[ImageService] Upload failed for recipe %s: %v", recipeID, err)
		return "", ErrImageGeneration
	}

	s.recordImageURL(ctx, recipeID, uid, url)
	return url, nil
}

// recordImageURL writes the URL onto the recipe record when the record still
// exists and belongs to uid. Failure here never fails the request: the caller
// already has the URL.
func (s *ImageService) recordImageURL(ctx context.Context, recipeID, uid, url string) {
	record, err := s.store.GetRecipeRecord(ctx, recipeID)
	if err != nil {
		log.Printf("[ImageService] Skipping image_url write-back for %s: %v", recipeID, err)
		return
	}
	if record.UID != uid {
		log.Printf("[ImageService] Skipping image_url write-back for %s: owner mismatch", recipeID)
		return
	}
	if err := s.store.UpdateRecipeRecord(ctx, recipeID, map[string]interface{}{"image_url": url}); err != nil {
		log.Printf("[ImageService] Failed to record image_url for %s: %v", recipeID, err)
	}
}

func (s *ImageService) generate(ctx context.Context, recipeText string) ([]byte, error) {
	reqBody := map[string]interface{}{
		"model":           s.model,
		"prompt":          buildImagePrompt(recipeText),
		"n":               1,
		"response_format": "b64_json",
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
		log.Printf("[ImageService] Provider request failed: %v", err)
		return nil, ErrImageGeneration
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("[ImageService] Failed to read provider response: %v", err)
		return nil, ErrImageGeneration
	}
	if resp.StatusCode != http.StatusOK {
		log.Printf("[ImageService] Provider returned status %d: %s", resp.StatusCode, string(body))
		return nil, ErrImageGeneration
	}

	var result struct {
		Data []struct {
			B64JSON string `json:"b64_json"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		log.Printf("[ImageService] Failed to decode provider response: %v", err)
		return nil, ErrImageGeneration
	}
	if len(result.Data) == 0 || result.Data[0].B64JSON == "" {
		log.Printf("[ImageService] Provider returned no image data")
		return nil, ErrImageGeneration
	}

	raw, err := base64.StdEncoding.DecodeString(result.Data[0].B64JSON)
	if err != nil {
		log.Printf("[ImageService] Invalid base64 image data: %v", err)
		return nil, ErrImageGeneration
	}
	return raw, nil
}
