package api

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recipelab/backend/internal/model"
)

func TestFavoritesRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "user-1", "Pat")

	w := env.do(t, http.MethodGet, "/api/favorites", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["favorites"])

	w = env.do(t, http.MethodPost, "/api/favorites/abc123", token, map[string]string{"title": "Pasta"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	favorites := body["favorites"].([]interface{})
	require.Len(t, favorites, 1)
	assert.Equal(t, "abc123", favorites[0].(map[string]interface{})["id"])
	assert.Equal(t, "Pasta", favorites[0].(map[string]interface{})["title"])
	assert.Equal(t, []interface{}{"abc123"}, body["favoriteIds"].([]interface{}))

	w = env.do(t, http.MethodDelete, "/api/favorites/abc123", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["favorites"])
}

func TestAddFavoriteIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "user-1", "Pat")

	for i := 0; i < 3; i++ {
		w := env.do(t, http.MethodPost, "/api/favorites/abc123", token, map[string]string{"title": "Pasta"})
		require.Equal(t, http.StatusOK, w.Code)
	}

	profile, err := env.store.GetUserProfile(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, profile.Favorites, 1)
}

func TestRemoveAbsentFavoriteIsNoOp(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "user-1", "Pat")

	w := env.do(t, http.MethodDelete, "/api/favorites/nothere1", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAddFavoriteEnforcesCap(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "user-1", "Pat")

	profile, err := env.store.GetUserProfile(context.Background(), "user-1")
	require.NoError(t, err)
	for i := 0; i < model.MaxFavorites; i++ {
		profile.Favorites = append(profile.Favorites, model.FavoriteItem{
			ID:    fmt.Sprintf("recipe%d", i),
			Title: fmt.Sprintf("Recipe %d", i),
		})
	}
	require.NoError(t, env.store.SaveUserProfile(context.Background(), profile))

	w := env.do(t, http.MethodPost, "/api/favorites/onemore1", token, map[string]string{"title": "One More"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Re-adding an existing entry still succeeds past the cap.
	w = env.do(t, http.MethodPost, "/api/favorites/recipe0", token, map[string]string{"title": "Recipe 0"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestFavoritesValidation(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "user-1", "Pat")

	w := env.do(t, http.MethodPost, "/api/favorites/bad..id", token, map[string]string{"title": "X"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/favorites/abc123", token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFavoritesAreSeparatedByUser(t *testing.T) {
	env := newTestEnv(t)
	alice := env.token(t, "alice", "Alice")
	bob := env.token(t, "bob", "Bob")

	w := env.do(t, http.MethodPost, "/api/favorites/abc123", alice, map[string]string{"title": "Pasta"})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/favorites", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["favorites"])
}
