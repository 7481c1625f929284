package entities

import "time"

// Theme is the colour scheme of the site
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Valid reports whether t is a known theme
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

// Toggled returns the opposite theme
func (t Theme) Toggled() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// Preferences holds the display settings of a visitor or user
type Preferences struct {
	VisitorKey string    `json:"visitor_key"`
	Theme      Theme     `json:"theme"`
	UpdatedAt  time.Time `json:"updated_at"`
}
