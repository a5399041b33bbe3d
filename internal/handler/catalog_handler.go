package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/brickshelf/brickshelf/internal/domain"
	"github.com/brickshelf/brickshelf/internal/service"
)

// CatalogHandler handles set browsing and maintenance pages.
type CatalogHandler struct {
	catalog  *service.CatalogService
	renderer *renderer
	logger   zerolog.Logger
}

func (h *CatalogHandler) handleSets(w http.ResponseWriter, r *http.Request) {
	userName := currentUserName(r)
	theme := r.URL.Query().Get("theme")

	var (
		sets []*domain.Set
		err  error
	)
	if theme != "" {
		sets, err = h.catalog.ListSetsByTheme(r.Context(), theme)
	} else {
		sets, err = h.catalog.ListSets(r.Context())
	}

	if err != nil {
		if errors.Is(err, service.ErrSetNotFound) {
			h.renderer.renderNotFound(w, userName)
			return
		}
		h.logger.Error().Err(err).Str("theme", theme).Msg("failed to load sets")
		h.renderer.renderServerError(w, userName)
		return
	}

	h.renderer.render(w, http.StatusOK, "sets.html", SetsPageData{
		PageData: PageData{
			Title:    "Sets - Brickshelf",
			UserName: userName,
		},
		Sets:  sets,
		Theme: theme,
	})
}

func (h *CatalogHandler) handleSetDetail(w http.ResponseWriter, r *http.Request) {
	userName := currentUserName(r)
	num := chi.URLParam(r, "num")

	set, err := h.catalog.GetSet(r.Context(), num)
	if err != nil {
		if errors.Is(err, service.ErrSetNotFound) {
			h.renderer.renderNotFound(w, userName)
			return
		}
		h.logger.Error().Err(err).Str("set_num", num).Msg("failed to load set")
		h.renderer.renderServerError(w, userName)
		return
	}

	h.renderer.render(w, http.StatusOK, "set.html", SetPageData{
		PageData: PageData{
			Title:    set.Name + " - Brickshelf",
			UserName: userName,
		},
		Set: set,
	})
}

func (h *CatalogHandler) handleAddSetPage(w http.ResponseWriter, r *http.Request) {
	userName := currentUserName(r)

	themes, err := h.catalog.ListThemes(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load themes")
		h.renderer.renderServerError(w, userName)
		return
	}

	h.renderer.render(w, http.StatusOK, "add_set.html", SetFormPageData{
		PageData: PageData{
			Title:    "Add Set - Brickshelf",
			UserName: userName,
		},
		Themes: themes,
	})
}

func (h *CatalogHandler) handleAddSet(w http.ResponseWriter, r *http.Request) {
	userName := currentUserName(r)

	input, err := parseSetForm(r)
	if err != nil {
		h.renderAddSetError(w, r, userName, "Invalid form data", nil)
		return
	}

	if _, err := h.catalog.AddSet(r.Context(), input); err != nil {
		switch {
		case errors.Is(err, service.ErrSetAlreadyExists):
			h.renderAddSetError(w, r, userName, "A set with that number already exists", &input)
		case errors.Is(err, service.ErrThemeNotFound), errors.Is(err, service.ErrInvalidSetInput):
			h.renderAddSetError(w, r, userName, "Please fill in all required fields", &input)
		default:
			h.logger.Error().Err(err).Str("set_num", input.Num).Msg("failed to add set")
			h.renderer.renderServerError(w, userName)
		}
		return
	}

	http.Redirect(w, r, "/sets", http.StatusFound)
}

func (h *CatalogHandler) handleEditSetPage(w http.ResponseWriter, r *http.Request) {
	userName := currentUserName(r)
	num := chi.URLParam(r, "num")

	set, err := h.catalog.GetSet(r.Context(), num)
	if err != nil {
		if errors.Is(err, service.ErrSetNotFound) {
			h.renderer.renderNotFound(w, userName)
			return
		}
		h.logger.Error().Err(err).Str("set_num", num).Msg("failed to load set for edit")
		h.renderer.renderServerError(w, userName)
		return
	}

	themes, err := h.catalog.ListThemes(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load themes")
		h.renderer.renderServerError(w, userName)
		return
	}

	h.renderer.render(w, http.StatusOK, "edit_set.html", SetFormPageData{
		PageData: PageData{
			Title:    "Edit " + set.Name + " - Brickshelf",
			UserName: userName,
		},
		Set:    set,
		Themes: themes,
	})
}

func (h *CatalogHandler) handleEditSet(w http.ResponseWriter, r *http.Request) {
	userName := currentUserName(r)
	num := chi.URLParam(r, "num")

	input, err := parseSetForm(r)
	if err != nil {
		h.renderer.renderServerError(w, userName)
		return
	}

	if _, err := h.catalog.EditSet(r.Context(), num, input); err != nil {
		switch {
		case errors.Is(err, service.ErrSetNotFound):
			h.renderer.renderNotFound(w, userName)
		default:
			h.logger.Error().Err(err).Str("set_num", num).Msg("failed to edit set")
			h.renderer.renderServerError(w, userName)
		}
		return
	}

	http.Redirect(w, r, "/sets/"+num, http.StatusFound)
}

func (h *CatalogHandler) handleDeleteSet(w http.ResponseWriter, r *http.Request) {
	userName := currentUserName(r)
	num := chi.URLParam(r, "num")

	if err := h.catalog.DeleteSet(r.Context(), num); err != nil {
		if errors.Is(err, service.ErrSetNotFound) {
			h.renderer.renderNotFound(w, userName)
			return
		}
		h.logger.Error().Err(err).Str("set_num", num).Msg("failed to delete set")
		h.renderer.renderServerError(w, userName)
		return
	}

	http.Redirect(w, r, "/sets", http.StatusFound)
}

func (h *CatalogHandler) renderAddSetError(w http.ResponseWriter, r *http.Request, userName, message string, input *service.SetInput) {
	themes, err := h.catalog.ListThemes(r.Context())
	if err != nil {
		h.renderer.renderServerError(w, userName)
		return
	}

	data := SetFormPageData{
		PageData: PageData{
			Title:    "Add Set - Brickshelf",
			UserName: userName,
			Error:    message,
		},
		Themes: themes,
	}
	if input != nil {
		data.Set = &domain.Set{
			Num:      input.Num,
			Name:     input.Name,
			Year:     input.Year,
			NumParts: input.NumParts,
			ThemeID:  input.ThemeID,
			ImgURL:   input.ImgURL,
		}
	}
	h.renderer.render(w, http.StatusBadRequest, "add_set.html", data)
}

// parseSetForm extracts a SetInput from the add/edit set form.
func parseSetForm(r *http.Request) (service.SetInput, error) {
	if err := r.ParseForm(); err != nil {
		return service.SetInput{}, err
	}

	year, _ := strconv.Atoi(r.FormValue("year"))
	numParts, _ := strconv.Atoi(r.FormValue("num_parts"))
	themeID, _ := strconv.ParseInt(r.FormValue("theme_id"), 10, 64)

	return service.SetInput{
		Num:      r.FormValue("set_num"),
		Name:     r.FormValue("name"),
		Year:     year,
		NumParts: numParts,
		ThemeID:  themeID,
		ImgURL:   r.FormValue("img_url"),
	}, nil
}

// currentUserName returns the logged-in user name, or "" for anonymous
// requests.
func currentUserName(r *http.Request) string {
	if session := SessionFromContext(r.Context()); session != nil {
		return session.UserName
	}
	return ""
}
