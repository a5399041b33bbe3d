package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/brickshelf/brickshelf/internal/domain"
	"github.com/brickshelf/brickshelf/internal/repository"
)

// setRepository implements repository.SetRepository.
type setRepository struct {
	db *DB
}

// NewSetRepository creates a new PostgreSQL set repository.
func NewSetRepository(db *DB) repository.SetRepository {
	return &setRepository{db: db}
}

// Create inserts a new set.
func (r *setRepository) Create(ctx context.Context, set *domain.Set) error {
	query := `
		INSERT INTO sets (set_num, name, year, num_parts, theme_id, img_url)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		set.Num,
		set.Name,
		set.Year,
		set.NumParts,
		set.ThemeID,
		set.ImgURL,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgerrcode.UniqueViolation:
				return fmt.Errorf("%w: set number %q", domain.ErrSetAlreadyExists, set.Num)
			case pgerrcode.ForeignKeyViolation:
				return fmt.Errorf("%w: theme %d", domain.ErrThemeNotFound, set.ThemeID)
			}
		}
		return fmt.Errorf("failed to create set: %w", err)
	}

	return nil
}

// GetByNum retrieves a set with its theme name by set number.
func (r *setRepository) GetByNum(ctx context.Context, num string) (*domain.Set, error) {
	query := `
		SELECT s.set_num, s.name, s.year, s.num_parts, s.theme_id, s.img_url, t.name
		FROM sets s
		JOIN themes t ON t.id = s.theme_id
		WHERE s.set_num = $1
	`

	set := &domain.Set{}
	err := r.db.Pool.QueryRow(ctx, query, num).Scan(
		&set.Num,
		&set.Name,
		&set.Year,
		&set.NumParts,
		&set.ThemeID,
		&set.ImgURL,
		&set.ThemeName,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSetNotFound
		}
		return nil, fmt.Errorf("failed to get set by number: %w", err)
	}

	return set, nil
}

// List returns all sets with theme names joined.
func (r *setRepository) List(ctx context.Context) ([]*domain.Set, error) {
	query := `
		SELECT s.set_num, s.name, s.year, s.num_parts, s.theme_id, s.img_url, t.name
		FROM sets s
		JOIN themes t ON t.id = s.theme_id
		ORDER BY s.set_num
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sets: %w", err)
	}
	defer rows.Close()

	return scanSets(rows)
}

// ListByTheme returns sets whose theme name contains the fragment,
// matched case-insensitively (ILIKE, as the original catalog filter did).
func (r *setRepository) ListByTheme(ctx context.Context, theme string) ([]*domain.Set, error) {
	query := `
		SELECT s.set_num, s.name, s.year, s.num_parts, s.theme_id, s.img_url, t.name
		FROM sets s
		JOIN themes t ON t.id = s.theme_id
		WHERE t.name ILIKE '%' || $1 || '%'
		ORDER BY s.set_num
	`

	rows, err := r.db.Pool.Query(ctx, query, theme)
	if err != nil {
		return nil, fmt.Errorf("failed to list sets by theme: %w", err)
	}
	defer rows.Close()

	return scanSets(rows)
}

// Update updates an existing set.
func (r *setRepository) Update(ctx context.Context, set *domain.Set) error {
	query := `
		UPDATE sets
		SET name = $1, year = $2, num_parts = $3, theme_id = $4, img_url = $5
		WHERE set_num = $6
	`

	result, err := r.db.Pool.Exec(ctx, query,
		set.Name,
		set.Year,
		set.NumParts,
		set.ThemeID,
		set.ImgURL,
		set.Num,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return fmt.Errorf("%w: theme %d", domain.ErrThemeNotFound, set.ThemeID)
		}
		return fmt.Errorf("failed to update set: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrSetNotFound
	}

	return nil
}

// Delete deletes a set by number.
func (r *setRepository) Delete(ctx context.Context, num string) error {
	result, err := r.db.Pool.Exec(ctx, `DELETE FROM sets WHERE set_num = $1`, num)
	if err != nil {
		return fmt.Errorf("failed to delete set: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrSetNotFound
	}

	return nil
}

// scanSets scans rows produced by the joined set queries.
func scanSets(rows pgx.Rows) ([]*domain.Set, error) {
	var sets []*domain.Set
	for rows.Next() {
		set := &domain.Set{}
		err := rows.Scan(
			&set.Num,
			&set.Name,
			&set.Year,
			&set.NumParts,
			&set.ThemeID,
			&set.ImgURL,
			&set.ThemeName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan set: %w", err)
		}
		sets = append(sets, set)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sets: %w", err)
	}

	return sets, nil
}

// Ensure setRepository implements repository.SetRepository.
var _ repository.SetRepository = (*setRepository)(nil)
