package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/brickshelf/brickshelf/internal/domain"
	"github.com/brickshelf/brickshelf/internal/repository"
)

// themeRepository implements repository.ThemeRepository.
type themeRepository struct {
	db *DB
}

// NewThemeRepository creates a new PostgreSQL theme repository.
func NewThemeRepository(db *DB) repository.ThemeRepository {
	return &themeRepository{db: db}
}

// Create inserts a new theme and populates theme.ID.
func (r *themeRepository) Create(ctx context.Context, theme *domain.Theme) error {
	err := r.db.Pool.QueryRow(ctx,
		`INSERT INTO themes (name) VALUES ($1) RETURNING id`,
		theme.Name,
	).Scan(&theme.ID)
	if err != nil {
		return fmt.Errorf("failed to create theme: %w", err)
	}
	return nil
}

// GetByID retrieves a theme by ID.
func (r *themeRepository) GetByID(ctx context.Context, id int64) (*domain.Theme, error) {
	theme := &domain.Theme{}
	err := r.db.Pool.QueryRow(ctx, `SELECT id, name FROM themes WHERE id = $1`, id).Scan(
		&theme.ID,
		&theme.Name,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrThemeNotFound
		}
		return nil, fmt.Errorf("failed to get theme by ID: %w", err)
	}

	return theme, nil
}

// List returns all themes ordered by name.
func (r *themeRepository) List(ctx context.Context) ([]*domain.Theme, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT id, name FROM themes ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list themes: %w", err)
	}
	defer rows.Close()

	var themes []*domain.Theme
	for rows.Next() {
		theme := &domain.Theme{}
		if err := rows.Scan(&theme.ID, &theme.Name); err != nil {
			return nil, fmt.Errorf("failed to scan theme: %w", err)
		}
		themes = append(themes, theme)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating themes: %w", err)
	}

	return themes, nil
}

// Count returns the number of themes.
func (r *themeRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM themes`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count themes: %w", err)
	}
	return count, nil
}

// Ensure themeRepository implements repository.ThemeRepository.
var _ repository.ThemeRepository = (*themeRepository)(nil)
