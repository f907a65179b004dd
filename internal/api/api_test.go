package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/recipelab/backend/config"
	"github.com/recipelab/backend/internal/cache"
	"github.com/recipelab/backend/internal/middleware"
	"github.com/recipelab/backend/internal/model"
	"github.com/recipelab/backend/internal/service"
	"github.com/recipelab/backend/internal/store"
)

const testSecret = "api-test-secret"

// fakeGenerator returns canned recipes and records the inputs it saw.
type fakeGenerator struct {
	lastPrompt        string
	lastMods          service.Modifiers
	lastModifications string
	err               error
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string, mods service.Modifiers) (*model.Recipe, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastPrompt = prompt
	f.lastMods = mods
	return &model.Recipe{
		Title:        "Test Dish",
		Description:  "A dish for tests.",
		PrepTime:     "5 minutes",
		CookTime:     "10 minutes",
		Servings:     "2 servings",
		Ingredients:  []model.IngredientGroup{{GroupName: "Main", Items: []string{"thing"}}},
		Instructions: []string{"Cook the thing."},
	}, nil
}

func (f *fakeGenerator) Update(ctx context.Context, original *model.Recipe, modifications string) (*model.Recipe, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastModifications = modifications
	updated := *original
	updated.Title = original.Title + " (Revised)"
	return &updated, nil
}

// fakeImages stands in for the image pipeline.
type fakeImages struct {
	url      string
	err      error
	last     string
	lastText string
}

func (f *fakeImages) GenerateAndStore(ctx context.Context, recipeID, uid, recipeText string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.last = recipeID
	f.lastText = recipeText
	return f.url, nil
}

type testEnv struct {
	router  *gin.Engine
	handler *Handler
	db      *gorm.DB
	store   *store.Store
	auth    *service.AuthService
	gen     *fakeGenerator
	images  *fakeImages
	recipes cache.Cache[model.RecordSnapshot]
	cfg     *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.RecipeRecord{}, &model.UserProfile{}))

	st := store.New(db)
	auth := service.NewAuthService(testSecret, cache.NewTTL[service.Identity](cache.TokenTTL, cache.TokenCapacity))
	recipes := cache.NewTTL[model.RecordSnapshot](cache.RecipeTTL, cache.RecipeCapacity)
	gen := &fakeGenerator{}
	images := &fakeImages{url: "https://cdn.example.com/recipe-images/test.jpg"}
	cfg := &config.Config{
		FrontendURLs:          []string{"http://localhost:5173", "https://recipes.example.com"},
		EnableImageGeneration: true,
	}

	h := New(cfg, st, gen, images, recipes)

	r := gin.New()
	authed := middleware.RequireAuth(auth)
	optional := middleware.OptionalAuth(auth)
	apiGroup := r.Group("/api")
	apiGroup.GET("/health", h.Health)
	apiGroup.GET("/recipe/:id", optional, h.GetRecipe)
	apiGroup.GET("/share/recipe/:id", h.ShareRecipe)
	apiGroup.POST("/generate-recipe", authed, h.GenerateRecipe)
	apiGroup.POST("/update-recipe", authed, h.UpdateRecipe)
	apiGroup.POST("/generate-image", authed, h.GenerateImage)
	apiGroup.GET("/recipe-history", authed, h.RecipeHistory)
	apiGroup.PATCH("/recipe/:id/archive", authed, h.ArchiveRecipe)
	apiGroup.GET("/favorites", authed, h.ListFavorites)
	apiGroup.POST("/favorites/:recipeId", authed, h.AddFavorite)
	apiGroup.DELETE("/favorites/:recipeId", authed, h.RemoveFavorite)
	apiGroup.GET("/preferences", authed, h.GetPreferences)
	apiGroup.PUT("/preferences", authed, h.UpdatePreferences)

	return &testEnv{
		router:  r,
		handler: h,
		db:      db,
		store:   st,
		auth:    auth,
		gen:     gen,
		images:  images,
		recipes: recipes,
		cfg:     cfg,
	}
}

func (e *testEnv) token(t *testing.T, uid, name string) string {
	t.Helper()
	token, err := e.auth.IssueToken(uid, name, time.Hour)
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

// generate runs a generation request and returns the new recipe id.
func (e *testEnv) generate(t *testing.T, token, prompt string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/generate-recipe", token, map[string]string{"prompt": prompt})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	id, ok := decode(t, w)["id"].(string)
	require.True(t, ok)
	return id
}

// breakStore closes the underlying database connection so every store
// access from here on fails.
func (e *testEnv) breakStore(t *testing.T) {
	t.Helper()
	sqlDB, err := e.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}
