package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/brickshelf/brickshelf/internal/domain"
)

// MockSetRepository is a mock implementation of repository.SetRepository.
type MockSetRepository struct {
	sets      map[string]*domain.Set
	themes    *MockThemeRepository
	createErr error
}

func NewMockSetRepository(themes *MockThemeRepository) *MockSetRepository {
	return &MockSetRepository{
		sets:   make(map[string]*domain.Set),
		themes: themes,
	}
}

func (m *MockSetRepository) Create(ctx context.Context, set *domain.Set) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, exists := m.sets[set.Num]; exists {
		return domain.ErrSetAlreadyExists
	}
	theme, exists := m.themes.byID[set.ThemeID]
	if !exists {
		return domain.ErrThemeNotFound
	}
	stored := *set
	stored.ThemeName = theme.Name
	m.sets[set.Num] = &stored
	return nil
}

func (m *MockSetRepository) GetByNum(ctx context.Context, num string) (*domain.Set, error) {
	if s, exists := m.sets[num]; exists {
		return s, nil
	}
	return nil, domain.ErrSetNotFound
}

func (m *MockSetRepository) List(ctx context.Context) ([]*domain.Set, error) {
	var result []*domain.Set
	for _, s := range m.sets {
		result = append(result, s)
	}
	return result, nil
}

func (m *MockSetRepository) ListByTheme(ctx context.Context, theme string) ([]*domain.Set, error) {
	var result []*domain.Set
	for _, s := range m.sets {
		if strings.Contains(strings.ToLower(s.ThemeName), strings.ToLower(theme)) {
			result = append(result, s)
		}
	}
	return result, nil
}

func (m *MockSetRepository) Update(ctx context.Context, set *domain.Set) error {
	if _, exists := m.sets[set.Num]; !exists {
		return domain.ErrSetNotFound
	}
	theme, exists := m.themes.byID[set.ThemeID]
	if !exists {
		return domain.ErrThemeNotFound
	}
	stored := *set
	stored.ThemeName = theme.Name
	m.sets[set.Num] = &stored
	return nil
}

func (m *MockSetRepository) Delete(ctx context.Context, num string) error {
	if _, exists := m.sets[num]; !exists {
		return domain.ErrSetNotFound
	}
	delete(m.sets, num)
	return nil
}

// MockThemeRepository is a mock implementation of repository.ThemeRepository.
type MockThemeRepository struct {
	byID   map[int64]*domain.Theme
	nextID int64
}

func NewMockThemeRepository() *MockThemeRepository {
	return &MockThemeRepository{
		byID:   make(map[int64]*domain.Theme),
		nextID: 1,
	}
}

func (m *MockThemeRepository) Create(ctx context.Context, theme *domain.Theme) error {
	theme.ID = m.nextID
	m.nextID++
	m.byID[theme.ID] = theme
	return nil
}

func (m *MockThemeRepository) GetByID(ctx context.Context, id int64) (*domain.Theme, error) {
	if t, exists := m.byID[id]; exists {
		return t, nil
	}
	return nil, domain.ErrThemeNotFound
}

func (m *MockThemeRepository) List(ctx context.Context) ([]*domain.Theme, error) {
	var themes []*domain.Theme
	for _, t := range m.byID {
		themes = append(themes, t)
	}
	return themes, nil
}

func (m *MockThemeRepository) Count(ctx context.Context) (int64, error) {
	return int64(len(m.byID)), nil
}

func newCatalogFixture(t *testing.T) (*CatalogService, *MockThemeRepository) {
	t.Helper()
	themes := NewMockThemeRepository()
	sets := NewMockSetRepository(themes)
	return NewCatalogService(sets, themes, zerolog.Nop()), themes
}

func seedCatalogTheme(t *testing.T, themes *MockThemeRepository, name string) *domain.Theme {
	t.Helper()
	theme := &domain.Theme{Name: name}
	if err := themes.Create(context.Background(), theme); err != nil {
		t.Fatalf("seed theme: %v", err)
	}
	return theme
}

func TestCatalogService_AddAndGetSet(t *testing.T) {
	svc, themes := newCatalogFixture(t)
	theme := seedCatalogTheme(t, themes, "Castle")
	ctx := context.Background()

	set, err := svc.AddSet(ctx, SetInput{
		Num:      "6086-1",
		Name:     "Black Knight's Castle",
		Year:     1992,
		NumParts: 588,
		ThemeID:  theme.ID,
	})
	if err != nil {
		t.Fatalf("add set: %v", err)
	}
	if set.Num != "6086-1" {
		t.Errorf("expected set num preserved, got %q", set.Num)
	}

	got, err := svc.GetSet(ctx, "6086-1")
	if err != nil {
		t.Fatalf("get set: %v", err)
	}
	if got.ThemeName != "Castle" {
		t.Errorf("expected theme name joined, got %q", got.ThemeName)
	}
}

func TestCatalogService_AddSet_Errors(t *testing.T) {
	svc, themes := newCatalogFixture(t)
	theme := seedCatalogTheme(t, themes, "Space")
	ctx := context.Background()

	valid := SetInput{Num: "6929-1", Name: "Starfleet Voyager", Year: 1981, ThemeID: theme.ID}
	if _, err := svc.AddSet(ctx, valid); err != nil {
		t.Fatalf("add set: %v", err)
	}

	tests := []struct {
		name    string
		input   SetInput
		wantErr error
	}{
		{
			name:    "duplicate number",
			input:   valid,
			wantErr: ErrSetAlreadyExists,
		},
		{
			name:    "unknown theme",
			input:   SetInput{Num: "1234-1", Name: "Orphan", ThemeID: 999},
			wantErr: ErrThemeNotFound,
		},
		{
			name:    "missing number",
			input:   SetInput{Name: "Nameless", ThemeID: theme.ID},
			wantErr: ErrInvalidSetInput,
		},
		{
			name:    "missing name",
			input:   SetInput{Num: "5678-1", ThemeID: theme.ID},
			wantErr: ErrInvalidSetInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddSet(ctx, tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCatalogService_ListSetsByTheme(t *testing.T) {
	svc, themes := newCatalogFixture(t)
	castle := seedCatalogTheme(t, themes, "Castle")
	space := seedCatalogTheme(t, themes, "Space")
	ctx := context.Background()

	mustAdd := func(num, name string, themeID int64) {
		t.Helper()
		if _, err := svc.AddSet(ctx, SetInput{Num: num, Name: name, ThemeID: themeID}); err != nil {
			t.Fatalf("add %s: %v", num, err)
		}
	}
	mustAdd("6086-1", "Castle A", castle.ID)
	mustAdd("6090-1", "Castle B", castle.ID)
	mustAdd("6929-1", "Ship", space.ID)

	sets, err := svc.ListSetsByTheme(ctx, "CASTLE")
	if err != nil {
		t.Fatalf("list by theme: %v", err)
	}
	if len(sets) != 2 {
		t.Errorf("expected 2 castle sets, got %d", len(sets))
	}

	_, err = svc.ListSetsByTheme(ctx, "pirates")
	if !errors.Is(err, ErrSetNotFound) {
		t.Fatalf("expected ErrSetNotFound for unknown theme, got %v", err)
	}
}

func TestCatalogService_EditSet(t *testing.T) {
	svc, themes := newCatalogFixture(t)
	theme := seedCatalogTheme(t, themes, "Town")
	ctx := context.Background()

	if _, err := svc.AddSet(ctx, SetInput{Num: "6390-1", Name: "Main Street", Year: 1980, ThemeID: theme.ID}); err != nil {
		t.Fatalf("add set: %v", err)
	}

	updated, err := svc.EditSet(ctx, "6390-1", SetInput{Name: "Main Street (reissue)", Year: 1981, ThemeID: theme.ID})
	if err != nil {
		t.Fatalf("edit set: %v", err)
	}
	if updated.Year != 1981 {
		t.Errorf("expected year updated, got %d", updated.Year)
	}

	_, err = svc.EditSet(ctx, "0000-0", SetInput{Name: "Ghost", ThemeID: theme.ID})
	if !errors.Is(err, ErrSetNotFound) {
		t.Fatalf("expected ErrSetNotFound, got %v", err)
	}
}

func TestCatalogService_DeleteSet(t *testing.T) {
	svc, themes := newCatalogFixture(t)
	theme := seedCatalogTheme(t, themes, "Town")
	ctx := context.Background()

	if _, err := svc.AddSet(ctx, SetInput{Num: "6390-1", Name: "Main Street", ThemeID: theme.ID}); err != nil {
		t.Fatalf("add set: %v", err)
	}

	if err := svc.DeleteSet(ctx, "6390-1"); err != nil {
		t.Fatalf("delete set: %v", err)
	}
	if err := svc.DeleteSet(ctx, "6390-1"); !errors.Is(err, ErrSetNotFound) {
		t.Fatalf("expected ErrSetNotFound on second delete, got %v", err)
	}
}

func TestCatalogService_Seed(t *testing.T) {
	svc, themes := newCatalogFixture(t)
	ctx := context.Background()

	data := []SeedThemeData{
		{
			Name: "Castle",
			Sets: []SetInput{
				{Num: "6086-1", Name: "Black Knight's Castle", Year: 1992, NumParts: 588},
			},
		},
		{
			Name: "Space",
			Sets: []SetInput{
				{Num: "6929-1", Name: "Starfleet Voyager", Year: 1981, NumParts: 148},
			},
		},
	}

	if err := svc.Seed(ctx, data); err != nil {
		t.Fatalf("seed: %v", err)
	}

	count, _ := themes.Count(ctx)
	if count != 2 {
		t.Fatalf("expected 2 themes after seed, got %d", count)
	}

	// Second run is a no-op.
	if err := svc.Seed(ctx, data); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	count, _ = themes.Count(ctx)
	if count != 2 {
		t.Errorf("seed must not duplicate themes, got %d", count)
	}
}
