// Package handler provides the HTTP handlers for the Brickshelf web app.
package handler

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/brickshelf/brickshelf/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// parseTemplates parses all embedded page templates.
func parseTemplates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.html")
}

// =============================================================================
// Template Data Structs
// =============================================================================

// PageData contains common page data.
type PageData struct {
	Title    string
	UserName string
	Error    string
}

// SetsPageData contains the set list page data.
type SetsPageData struct {
	PageData
	Sets  []*domain.Set
	Theme string
}

// SetPageData contains the set detail page data.
type SetPageData struct {
	PageData
	Set *domain.Set
}

// SetFormPageData contains the add/edit set form page data.
type SetFormPageData struct {
	PageData
	Set    *domain.Set
	Themes []*domain.Theme
}

// AuthFormPageData contains the login/register form page data.
type AuthFormPageData struct {
	PageData
	FormUserName string
	FormEmail    string
}

// HistoryPageData contains the login history page data.
type HistoryPageData struct {
	PageData
	User *domain.User
}

// =============================================================================
// Rendering
// =============================================================================

// renderer executes page templates and reports failures.
type renderer struct {
	templates *template.Template
	logger    zerolog.Logger
}

func (rd *renderer) render(w http.ResponseWriter, status int, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := rd.templates.ExecuteTemplate(w, name, data); err != nil {
		rd.logger.Error().Err(err).Str("template", name).Msg("failed to render template")
	}
}

func (rd *renderer) renderNotFound(w http.ResponseWriter, userName string) {
	rd.render(w, http.StatusNotFound, "404.html", PageData{
		Title:    "Not Found - Brickshelf",
		UserName: userName,
	})
}

func (rd *renderer) renderServerError(w http.ResponseWriter, userName string) {
	rd.render(w, http.StatusInternalServerError, "500.html", PageData{
		Title:    "Error - Brickshelf",
		UserName: userName,
	})
}
