package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/brickshelf/brickshelf/internal/domain"
	"github.com/brickshelf/brickshelf/internal/repository"
)

// setRepository implements repository.SetRepository for SQLite.
type setRepository struct {
	db *DB
}

// NewSetRepository creates a new SQLite set repository.
func NewSetRepository(db *DB) repository.SetRepository {
	return &setRepository{db: db}
}

// Create inserts a new set.
func (r *setRepository) Create(ctx context.Context, set *domain.Set) error {
	query := `
		INSERT INTO sets (set_num, name, year, num_parts, theme_id, img_url)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		set.Num,
		set.Name,
		set.Year,
		set.NumParts,
		set.ThemeID,
		set.ImgURL,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: set number %q", domain.ErrSetAlreadyExists, set.Num)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: theme %d", domain.ErrThemeNotFound, set.ThemeID)
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
		WHERE s.set_num = ?
	`

	set := &domain.Set{}
	err := r.db.QueryRowContext(ctx, query, num).Scan(
		&set.Num,
		&set.Name,
		&set.Year,
		&set.NumParts,
		&set.ThemeID,
		&set.ImgURL,
		&set.ThemeName,
	)

	if err != nil {
		if isNoRows(err) {
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

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sets: %w", err)
	}
	defer rows.Close()

	return scanSets(rows)
}

// ListByTheme returns sets whose theme name contains the fragment,
// matched case-insensitively.
func (r *setRepository) ListByTheme(ctx context.Context, theme string) ([]*domain.Set, error) {
	// LIKE is case-insensitive for ASCII in SQLite by default.
	query := `
		SELECT s.set_num, s.name, s.year, s.num_parts, s.theme_id, s.img_url, t.name
		FROM sets s
		JOIN themes t ON t.id = s.theme_id
		WHERE t.name LIKE '%' || ? || '%'
		ORDER BY s.set_num
	`

	rows, err := r.db.QueryContext(ctx, query, theme)
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
		SET name = ?, year = ?, num_parts = ?, theme_id = ?, img_url = ?
		WHERE set_num = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		set.Name,
		set.Year,
		set.NumParts,
		set.ThemeID,
		set.ImgURL,
		set.Num,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: theme %d", domain.ErrThemeNotFound, set.ThemeID)
		}
		return fmt.Errorf("failed to update set: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return domain.ErrSetNotFound
	}

	return nil
}

// Delete deletes a set by number.
func (r *setRepository) Delete(ctx context.Context, num string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sets WHERE set_num = ?`, num)
	if err != nil {
		return fmt.Errorf("failed to delete set: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return domain.ErrSetNotFound
	}

	return nil
}

// scanSets scans rows produced by the joined set queries.
func scanSets(rows *sql.Rows) ([]*domain.Set, error) {
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
