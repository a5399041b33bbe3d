package sqlite

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brickshelf/brickshelf/internal/domain"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	ctx := context.Background()
	db, err := NewDB(ctx, DefaultConfig(":memory:"), zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx))
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})

	return db
}

func seedTheme(t *testing.T, db *DB, name string) *domain.Theme {
	t.Helper()

	theme := &domain.Theme{Name: name}
	require.NoError(t, NewThemeRepository(db).Create(context.Background(), theme))
	return theme
}

func TestSetRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	theme := seedTheme(t, db, "Castle")
	repo := NewSetRepository(db)

	set := &domain.Set{
		Num:      "6086-1",
		Name:     "Black Knight's Castle",
		Year:     1992,
		NumParts: 588,
		ThemeID:  theme.ID,
		ImgURL:   "https://img.example.com/6086-1.jpg",
	}
	require.NoError(t, repo.Create(ctx, set))

	got, err := repo.GetByNum(ctx, "6086-1")
	require.NoError(t, err)
	assert.Equal(t, "Black Knight's Castle", got.Name)
	assert.Equal(t, 1992, got.Year)
	assert.Equal(t, "Castle", got.ThemeName)
}

func TestSetRepository_GetByNum_NotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewSetRepository(db)

	_, err := repo.GetByNum(context.Background(), "0000-0")
	assert.ErrorIs(t, err, domain.ErrSetNotFound)
}

func TestSetRepository_Create_Duplicate(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	theme := seedTheme(t, db, "Space")
	repo := NewSetRepository(db)

	set := &domain.Set{Num: "6929-1", Name: "Starfleet Voyager", Year: 1981, NumParts: 148, ThemeID: theme.ID}
	require.NoError(t, repo.Create(ctx, set))

	err := repo.Create(ctx, set)
	assert.ErrorIs(t, err, domain.ErrSetAlreadyExists)
}

func TestSetRepository_Create_UnknownTheme(t *testing.T) {
	db := newTestDB(t)
	repo := NewSetRepository(db)

	err := repo.Create(context.Background(), &domain.Set{
		Num:     "1234-1",
		Name:    "Orphan",
		Year:    2000,
		ThemeID: 999,
	})
	assert.ErrorIs(t, err, domain.ErrThemeNotFound)
}

func TestSetRepository_ListByTheme_CaseInsensitive(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	castle := seedTheme(t, db, "Castle")
	space := seedTheme(t, db, "Space")
	repo := NewSetRepository(db)

	require.NoError(t, repo.Create(ctx, &domain.Set{Num: "6086-1", Name: "Castle A", Year: 1992, NumParts: 1, ThemeID: castle.ID}))
	require.NoError(t, repo.Create(ctx, &domain.Set{Num: "6090-1", Name: "Castle B", Year: 1995, NumParts: 1, ThemeID: castle.ID}))
	require.NoError(t, repo.Create(ctx, &domain.Set{Num: "6929-1", Name: "Ship", Year: 1981, NumParts: 1, ThemeID: space.ID}))

	sets, err := repo.ListByTheme(ctx, "cast")
	require.NoError(t, err)
	assert.Len(t, sets, 2)

	sets, err = repo.ListByTheme(ctx, "SPACE")
	require.NoError(t, err)
	assert.Len(t, sets, 1)

	sets, err = repo.ListByTheme(ctx, "pirates")
	require.NoError(t, err)
	assert.Empty(t, sets)
}

func TestSetRepository_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	theme := seedTheme(t, db, "Town")
	repo := NewSetRepository(db)

	set := &domain.Set{Num: "6390-1", Name: "Main Street", Year: 1980, NumParts: 591, ThemeID: theme.ID}
	require.NoError(t, repo.Create(ctx, set))

	set.Name = "Main Street (reissue)"
	set.Year = 1981
	require.NoError(t, repo.Update(ctx, set))

	got, err := repo.GetByNum(ctx, "6390-1")
	require.NoError(t, err)
	assert.Equal(t, "Main Street (reissue)", got.Name)
	assert.Equal(t, 1981, got.Year)

	require.NoError(t, repo.Delete(ctx, "6390-1"))

	_, err = repo.GetByNum(ctx, "6390-1")
	assert.ErrorIs(t, err, domain.ErrSetNotFound)

	assert.ErrorIs(t, repo.Update(ctx, set), domain.ErrSetNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "6390-1"), domain.ErrSetNotFound)
}

func TestThemeRepository_ListAndCount(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewThemeRepository(db)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	seedTheme(t, db, "Space")
	seedTheme(t, db, "Castle")

	themes, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, themes, 2)
	assert.Equal(t, "Castle", themes[0].Name)
	assert.Equal(t, "Space", themes[1].Name)

	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	got, err := repo.GetByID(ctx, themes[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Castle", got.Name)

	_, err = repo.GetByID(ctx, 12345)
	assert.ErrorIs(t, err, domain.ErrThemeNotFound)
}
