package models

// Theme is the display preference shared by every open portal view
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ValidTheme reports whether s is a supported theme value
func ValidTheme(s string) bool {
	return Theme(s) == ThemeLight || Theme(s) == ThemeDark
}

// UpdateThemeRequest represents the request body for updating the theme
type UpdateThemeRequest struct {
	Theme string `json:"theme" validate:"required,oneof=light dark"`
}
