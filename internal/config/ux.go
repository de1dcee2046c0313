package config

// Theme names.
const (
	ThemeAuto  = "auto"
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// ValidThemes lists the accepted ui.theme values.
var ValidThemes = []string{ThemeAuto, ThemeLight, ThemeDark}

// ValidResolvePolicies lists the accepted ui.resolve_policy values.
var ValidResolvePolicies = []string{"placeholder", "last"}

// UIConfig holds terminal interface configuration.
type UIConfig struct {
	// Theme is auto (detect from terminal), light or dark.
	Theme string `yaml:"theme"`

	// Markdown renders bot replies through glamour.
	Markdown bool `yaml:"markdown"`

	// ResolvePolicy picks the bot entry a reply updates when several
	// questions are in flight: placeholder (its own) or last (most recent).
	ResolvePolicy string `yaml:"resolve_policy"`

	// CharLimit caps the input field length.
	CharLimit int `yaml:"char_limit"`
}
