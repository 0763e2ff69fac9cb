package model

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Session — данные аутентифицированной сессии, которые переносит cookie.
type Session struct {
	Username string
	Theme    string
}

// ToggledTheme возвращает противоположную тему.
func (s Session) ToggledTheme() string {
	if s.Theme == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}
