package handler

import (
	"net/http"

	"github.com/rs/zerolog"
)

// PagesHandler handles the static informational pages.
type PagesHandler struct {
	renderer *renderer
	logger   zerolog.Logger
}

func (h *PagesHandler) handleHome(w http.ResponseWriter, r *http.Request) {
	h.renderer.render(w, http.StatusOK, "home.html", PageData{
		Title:    "Brickshelf",
		UserName: currentUserName(r),
	})
}

func (h *PagesHandler) handleAbout(w http.ResponseWriter, r *http.Request) {
	h.renderer.render(w, http.StatusOK, "about.html", PageData{
		Title:    "About - Brickshelf",
		UserName: currentUserName(r),
	})
}

func (h *PagesHandler) handleNotFound(w http.ResponseWriter, r *http.Request) {
	h.renderer.renderNotFound(w, currentUserName(r))
}
