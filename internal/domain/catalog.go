package domain

// Theme groups sets into a named product line.
type Theme struct {
	// ID is the unique identifier for the theme.
	ID int64 `json:"id"`

	// Name is the display name of the theme.
	Name string `json:"name"`
}

// Set represents a single catalog entry.
type Set struct {
	// Num is the set number, the unique key of a set (e.g. "10030-1").
	Num string `json:"set_num"`

	// Name is the display name of the set.
	Name string `json:"name"`

	// Year is the release year.
	Year int `json:"year"`

	// NumParts is the piece count.
	NumParts int `json:"num_parts"`

	// ThemeID references the theme this set belongs to.
	ThemeID int64 `json:"theme_id"`

	// ThemeName is the joined theme name, populated on reads.
	ThemeName string `json:"theme_name,omitempty"`

	// ImgURL points at the box art image. Stored as an external URL.
	ImgURL string `json:"img_url"`
}
