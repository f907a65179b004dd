package api

import (
	"fmt"
	"html"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

var titleTagPattern = regexp.MustCompile(`(?is)<title>.*?</title>`)

// RecipePage handles GET /recipe/:id for direct browser navigation: the
// frontend index.html with the recipe's metadata injected so previews work
// without the share endpoint.
func (h *Handler) RecipePage(c *gin.Context) {
	id := c.Param("id")

	raw, err := os.ReadFile(filepath.Join(h.cfg.FrontendDist, "index.html"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Frontend build not found"})
		return
	}
	page := string(raw)

	if recipeIDPattern.MatchString(id) {
		if meta, ok := h.recipeMeta(c, id); ok {
			page = titleTagPattern.ReplaceAllString(page, "")
			page = strings.Replace(page, "</head>", meta+"</head>", 1)
		}
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, page)
}

// recipeMeta builds the injected title and OpenGraph block for a recipe.
func (h *Handler) recipeMeta(c *gin.Context, id string) (string, bool) {
	snapshot, ok := h.recipes.Get(id)
	if !ok {
		record, err := h.store.GetRecipeRecord(c.Request.Context(), id)
		if err != nil {
			log.Printf("[Frontend] No metadata for recipe %s: %v", id, err)
			return "", false
		}
		snapshot = record.Snapshot()
		h.recipes.Set(id, snapshot)
	}

	title := html.EscapeString(previewText(snapshot.Recipe.Title, 0))
	desc := html.EscapeString(previewText(snapshot.Recipe.Description, maxPreviewLength))

	var b strings.Builder
	fmt.Fprintf(&b, "<title>%s</title>\n", title)
	fmt.Fprintf(&b, `<meta property="og:title" content="%s">`+"\n", title)
	fmt.Fprintf(&b, `<meta property="og:description" content="%s">`+"\n", desc)
	if snapshot.ImageURL != "" {
		fmt.Fprintf(&b, `<meta property="og:image" content="%s">`+"\n", html.EscapeString(snapshot.ImageURL))
	}
	return b.String(), true
}

// ServeFrontend mounts the static frontend build with an SPA fallback:
// unknown non-API paths serve index.html so client routing works.
func ServeFrontend(r *gin.Engine, h *Handler, dist string) {
	if _, err := os.Stat(filepath.Join(dist, "index.html")); err != nil {
		log.Printf("[Frontend] No build at %s, serving API only", dist)
		return
	}

	r.Static("/assets", filepath.Join(dist, "assets"))
	r.StaticFile("/favicon.ico", filepath.Join(dist, "favicon.ico"))
	r.GET("/recipe/:id", h.RecipePage)

	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		c.File(filepath.Join(dist, "index.html"))
	})
}
