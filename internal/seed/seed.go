// Package seed provides the bundled catalog data used to populate an empty
// database.
package seed

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/brickshelf/brickshelf/internal/service"
)

//go:embed data/*.json
var dataFS embed.FS

type themeRecord struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type setRecord struct {
	SetNum   string `json:"set_num"`
	Name     string `json:"name"`
	Year     int    `json:"year"`
	NumParts int    `json:"num_parts"`
	ThemeID  int64  `json:"theme_id"`
	ImgURL   string `json:"img_url"`
}

// Load parses the bundled theme and set data into the shape the catalog
// seeder consumes. The theme IDs in the data files only link sets to themes
// within the files; the store assigns its own IDs on insert.
func Load() ([]service.SeedThemeData, error) {
	themesRaw, err := dataFS.ReadFile("data/themes.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read bundled themes: %w", err)
	}
	setsRaw, err := dataFS.ReadFile("data/sets.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read bundled sets: %w", err)
	}

	var themes []themeRecord
	if err := json.Unmarshal(themesRaw, &themes); err != nil {
		return nil, fmt.Errorf("failed to parse bundled themes: %w", err)
	}
	var sets []setRecord
	if err := json.Unmarshal(setsRaw, &sets); err != nil {
		return nil, fmt.Errorf("failed to parse bundled sets: %w", err)
	}

	byTheme := make(map[int64][]service.SetInput, len(themes))
	for _, set := range sets {
		byTheme[set.ThemeID] = append(byTheme[set.ThemeID], service.SetInput{
			Num:      set.SetNum,
			Name:     set.Name,
			Year:     set.Year,
			NumParts: set.NumParts,
			ImgURL:   set.ImgURL,
		})
	}

	data := make([]service.SeedThemeData, 0, len(themes))
	for _, theme := range themes {
		data = append(data, service.SeedThemeData{
			Name: theme.Name,
			Sets: byTheme[theme.ID],
		})
	}

	return data, nil
}
