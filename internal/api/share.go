package api

import (
	"bytes"
	"html/template"
	"log"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

// sharePage is the crawler-friendly preview served for shared recipe
// links: OpenGraph and Twitter card meta plus a scripted redirect into the
// frontend for humans.
var sharePage = template.Must(template.New("share").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <meta name="description" content="{{.Description}}">
    <meta property="og:type" content="article">
    <meta property="og:title" content="{{.Title}}">
    <meta property="og:description" content="{{.Description}}">
    <meta property="og:url" content="{{.RecipeURL}}">
    {{if .ImageURL}}<meta property="og:image" content="{{.ImageURL}}">{{end}}
    <meta name="twitter:card" content="{{if .ImageURL}}summary_large_image{{else}}summary{{end}}">
    <meta name="twitter:title" content="{{.Title}}">
    <meta name="twitter:description" content="{{.Description}}">
    {{if .ImageURL}}<meta name="twitter:image" content="{{.ImageURL}}">{{end}}
    <style>
        body { display: flex; align-items: center; justify-content: center; height: 100vh; margin: 0; font-family: sans-serif; }
        .spinner { width: 40px; height: 40px; border: 4px solid #eee; border-top-color: #e67e22; border-radius: 50%; animation: spin 0.8s linear infinite; }
        @keyframes spin { to { transform: rotate(360deg); } }
    </style>
</head>
<body>
    <div class="spinner"></div>
    <script>window.location.replace({{.RecipeURL}});</script>
</body>
</html>`))

type sharePageData struct {
	Title       string
	Description string
	ImageURL    string
	RecipeURL   string
}

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// maxPreviewLength bounds preview descriptions for link unfurlers.
const maxPreviewLength = 200

// previewText strips inline markup from generated content and truncates it
// for preview cards. max <= 0 means no truncation; truncation counts runes
// so multibyte text never gets split mid-character.
func previewText(s string, max int) string {
	s = strings.TrimSpace(htmlTagPattern.ReplaceAllString(s, ""))
	if max > 0 {
		if runes := []rune(s); len(runes) > max {
			s = strings.TrimSpace(string(runes[:max])) + "…"
		}
	}
	return s
}

// Preview defaults used when the recipe itself cannot be loaded, so
// crawlers still get OG tags on a shared link.
const (
	defaultShareTitle       = "Check out this recipe on RecipeLab"
	defaultShareDescription = "I found this amazing recipe using RecipeLab. Click to view the full recipe!"
)

// ShareRecipe handles GET /api/share/recipe/:id. Serves recipe metadata to
// link-preview crawlers and redirects browsers into the frontend. A recipe
// that cannot be loaded still gets the preview page with default text; only
// a render failure degrades to a bare redirect.
func (h *Handler) ShareRecipe(c *gin.Context) {
	id := c.Param("id")
	if !recipeIDPattern.MatchString(id) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe id"})
		return
	}

	origin := h.resolveOrigin(c.Query("origin"))
	recipeURL := origin + "/recipe/" + id

	data := sharePageData{
		Title:       defaultShareTitle,
		Description: defaultShareDescription,
		RecipeURL:   recipeURL,
	}

	snapshot, ok := h.recipes.Get(id)
	if !ok {
		record, err := h.store.GetRecipeRecord(c.Request.Context(), id)
		if err != nil {
			log.Printf("[ShareAPI] Failed to load recipe %s, serving defaults: %v", id, err)
		} else {
			snapshot = record.Snapshot()
			h.recipes.Set(id, snapshot)
			ok = true
		}
	}
	if ok {
		data.Title = previewText(snapshot.Recipe.Title, 0)
		data.Description = previewText(snapshot.Recipe.Description, maxPreviewLength)
		data.ImageURL = snapshot.ImageURL
	}

	var page bytes.Buffer
	if err := sharePage.Execute(&page, data); err != nil {
		log.Printf("[ShareAPI] Failed to render share page for %s, redirecting: %v", id, err)
		c.Redirect(http.StatusFound, recipeURL)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", page.Bytes())
}

// resolveOrigin only honors origins the frontend is actually served from;
// anything else falls back to the first configured origin.
func (h *Handler) resolveOrigin(origin string) string {
	for _, allowed := range h.cfg.FrontendURLs {
		if origin == allowed {
			return origin
		}
	}
	if len(h.cfg.FrontendURLs) > 0 {
		return h.cfg.FrontendURLs[0]
	}
	return ""
}
