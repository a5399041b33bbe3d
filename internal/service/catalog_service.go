package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/brickshelf/brickshelf/internal/domain"
	"github.com/brickshelf/brickshelf/internal/repository"
)

// CatalogService handles browsing and maintenance of the set catalog.
type CatalogService struct {
	setRepo   repository.SetRepository
	themeRepo repository.ThemeRepository
	logger    zerolog.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(setRepo repository.SetRepository, themeRepo repository.ThemeRepository, logger zerolog.Logger) *CatalogService {
	return &CatalogService{
		setRepo:   setRepo,
		themeRepo: themeRepo,
		logger:    logger.With().Str("service", "catalog").Logger(),
	}
}

// ListSets returns all sets in the catalog.
func (s *CatalogService) ListSets(ctx context.Context) ([]*domain.Set, error) {
	sets, err := s.setRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list sets")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return sets, nil
}

// ListSetsByTheme returns sets whose theme name contains the fragment,
// matched case-insensitively. An empty result means the theme is unknown
// and reports ErrSetNotFound.
func (s *CatalogService) ListSetsByTheme(ctx context.Context, theme string) ([]*domain.Set, error) {
	sets, err := s.setRepo.ListByTheme(ctx, theme)
	if err != nil {
		s.logger.Error().Err(err).Str("theme", theme).Msg("failed to list sets by theme")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if len(sets) == 0 {
		return nil, fmt.Errorf("%w: unable to find sets for theme '%s'", ErrSetNotFound, theme)
	}
	return sets, nil
}

// GetSet retrieves a single set by number.
func (s *CatalogService) GetSet(ctx context.Context, num string) (*domain.Set, error) {
	set, err := s.setRepo.GetByNum(ctx, num)
	if err != nil {
		if errors.Is(err, domain.ErrSetNotFound) {
			return nil, fmt.Errorf("%w: unable to find set '%s'", ErrSetNotFound, num)
		}
		s.logger.Error().Err(err).Str("set_num", num).Msg("failed to get set")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return set, nil
}

// ListThemes returns all themes ordered by name.
func (s *CatalogService) ListThemes(ctx context.Context) ([]*domain.Theme, error) {
	themes, err := s.themeRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list themes")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return themes, nil
}

// SetInput contains the data needed to create or update a set.
type SetInput struct {
	Num      string
	Name     string
	Year     int
	NumParts int
	ThemeID  int64
	ImgURL   string
}

// AddSet adds a new set to the catalog.
func (s *CatalogService) AddSet(ctx context.Context, input SetInput) (*domain.Set, error) {
	if err := validateSetInput(input); err != nil {
		return nil, err
	}

	set := &domain.Set{
		Num:      input.Num,
		Name:     input.Name,
		Year:     input.Year,
		NumParts: input.NumParts,
		ThemeID:  input.ThemeID,
		ImgURL:   input.ImgURL,
	}

	if err := s.setRepo.Create(ctx, set); err != nil {
		switch {
		case errors.Is(err, domain.ErrSetAlreadyExists):
			return nil, fmt.Errorf("%w: set '%s'", ErrSetAlreadyExists, input.Num)
		case errors.Is(err, domain.ErrThemeNotFound):
			return nil, fmt.Errorf("%w: theme %d", ErrThemeNotFound, input.ThemeID)
		}
		s.logger.Error().Err(err).Str("set_num", input.Num).Msg("failed to add set")
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.logger.Info().Str("set_num", set.Num).Str("name", set.Name).Msg("set added")
	return set, nil
}

// EditSet updates an existing set identified by num.
func (s *CatalogService) EditSet(ctx context.Context, num string, input SetInput) (*domain.Set, error) {
	input.Num = num
	if err := validateSetInput(input); err != nil {
		return nil, err
	}

	set := &domain.Set{
		Num:      num,
		Name:     input.Name,
		Year:     input.Year,
		NumParts: input.NumParts,
		ThemeID:  input.ThemeID,
		ImgURL:   input.ImgURL,
	}

	if err := s.setRepo.Update(ctx, set); err != nil {
		switch {
		case errors.Is(err, domain.ErrSetNotFound):
			return nil, fmt.Errorf("%w: unable to find set '%s'", ErrSetNotFound, num)
		case errors.Is(err, domain.ErrThemeNotFound):
			return nil, fmt.Errorf("%w: theme %d", ErrThemeNotFound, input.ThemeID)
		}
		s.logger.Error().Err(err).Str("set_num", num).Msg("failed to edit set")
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.logger.Info().Str("set_num", num).Msg("set updated")
	return set, nil
}

// DeleteSet removes a set from the catalog.
func (s *CatalogService) DeleteSet(ctx context.Context, num string) error {
	if err := s.setRepo.Delete(ctx, num); err != nil {
		if errors.Is(err, domain.ErrSetNotFound) {
			return fmt.Errorf("%w: unable to find set '%s'", ErrSetNotFound, num)
		}
		s.logger.Error().Err(err).Str("set_num", num).Msg("failed to delete set")
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.logger.Info().Str("set_num", num).Msg("set deleted")
	return nil
}

// SeedThemeData describes a theme plus its sets in the bundled seed data.
type SeedThemeData struct {
	Name string
	Sets []SetInput
}

// Seed loads the given themes and sets when the catalog is empty. It is a
// no-op when any theme already exists, so running it twice is safe.
func (s *CatalogService) Seed(ctx context.Context, data []SeedThemeData) error {
	count, err := s.themeRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if count > 0 {
		s.logger.Info().Int64("themes", count).Msg("catalog already populated, skipping seed")
		return nil
	}

	var setCount int
	for _, td := range data {
		theme := &domain.Theme{Name: td.Name}
		if err := s.themeRepo.Create(ctx, theme); err != nil {
			return fmt.Errorf("%w: theme '%s': %v", ErrPersistence, td.Name, err)
		}

		for _, in := range td.Sets {
			set := &domain.Set{
				Num:      in.Num,
				Name:     in.Name,
				Year:     in.Year,
				NumParts: in.NumParts,
				ThemeID:  theme.ID,
				ImgURL:   in.ImgURL,
			}
			if err := s.setRepo.Create(ctx, set); err != nil {
				return fmt.Errorf("%w: set '%s': %v", ErrPersistence, in.Num, err)
			}
			setCount++
		}
	}

	s.logger.Info().
		Int("themes", len(data)).
		Int("sets", setCount).
		Msg("catalog seeded")

	return nil
}

// validateSetInput validates catalog set input.
func validateSetInput(input SetInput) error {
	if strings.TrimSpace(input.Num) == "" {
		return fmt.Errorf("%w: set number is required", ErrInvalidSetInput)
	}
	if strings.TrimSpace(input.Name) == "" {
		return fmt.Errorf("%w: set name is required", ErrInvalidSetInput)
	}
	return nil
}
