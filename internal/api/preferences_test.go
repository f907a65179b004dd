package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreferencesDefaultToImageGenerationEnabled(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "user-1", "Pat")

	w := env.do(t, http.MethodGet, "/api/preferences", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	prefs := decode(t, w)["preferences"].(map[string]interface{})
	assert.Equal(t, true, prefs["imageGenerationEnabled"])
}

func TestPreferencesUpdateRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "user-1", "Pat")

	w := env.do(t, http.MethodPut, "/api/preferences", token, map[string]bool{"imageGenerationEnabled": false})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	prefs := decode(t, w)["preferences"].(map[string]interface{})
	assert.Equal(t, false, prefs["imageGenerationEnabled"])

	w = env.do(t, http.MethodGet, "/api/preferences", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	prefs = decode(t, w)["preferences"].(map[string]interface{})
	assert.Equal(t, false, prefs["imageGenerationEnabled"])
}

func TestPreferencesEmptyBodyChangesNothing(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "user-1", "Pat")

	w := env.do(t, http.MethodPut, "/api/preferences", token, map[string]string{})
	require.Equal(t, http.StatusOK, w.Code)
	prefs := decode(t, w)["preferences"].(map[string]interface{})
	assert.Equal(t, true, prefs["imageGenerationEnabled"])
}

func TestPreferencesRequireAuth(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/api/preferences", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
