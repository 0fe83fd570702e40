package render

import (
	"log/slog"
	"strings"

	darkmode "github.com/thiagokokada/dark-mode-go"
)

type ThemePreference int

const (
	ThemeAuto ThemePreference = iota
	ThemeLight
	ThemeDark
)

func (p ThemePreference) String() string {
	switch p {
	case ThemeLight:
		return "light"
	case ThemeDark:
		return "dark"
	default:
		return "auto"
	}
}

func ThemePreferenceFromString(raw string) ThemePreference {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case ThemeDark.String():
		return ThemeDark
	case ThemeLight.String():
		return ThemeLight
	default:
		return ThemeAuto
	}
}

// Palette maps decoration colours and diff markers to ANSI SGR parameters.
type Palette struct {
	Name       string
	Dark       bool
	Colours    map[Colour]string
	DiffAdd    string
	DiffDel    string
	DiffHeader string
	// ChromaStyle names the chroma style used for code in diffs.
	ChromaStyle string
}

var (
	lightPalette = Palette{
		Name: "light",
		Colours: map[Colour]string{
			Black:     "30",
			Blue:      "34",
			Red:       "31",
			DarkGreen: "32",
			Pink:      "95",
			Green:     "92",
			Magenta:   "35",
			Cyan:      "36",
			Grey:      "90",
		},
		DiffAdd:     "32",
		DiffDel:     "31",
		DiffHeader:  "1",
		ChromaStyle: "github",
	}
	darkPalette = Palette{
		Name: "dark",
		Dark: true,
		Colours: map[Colour]string{
			Black:     "39",
			Blue:      "94",
			Red:       "91",
			DarkGreen: "32",
			Pink:      "95",
			Green:     "92",
			Magenta:   "95",
			Cyan:      "96",
			Grey:      "90",
		},
		DiffAdd:     "92",
		DiffDel:     "91",
		DiffHeader:  "1",
		ChromaStyle: "github-dark",
	}
	detectDarkMode = darkmode.IsDarkMode
)

// PaletteFor resolves a preference, asking the desktop for its colour
// scheme when the preference is auto.
func PaletteFor(pref ThemePreference) Palette {
	switch pref {
	case ThemeDark:
		return darkPalette
	case ThemeLight:
		return lightPalette
	default:
		if detectDarkMode != nil {
			if dark, err := detectDarkMode(); err == nil {
				if dark {
					return darkPalette
				}
			} else {
				slog.Debug("detect dark mode", slog.Any("error", err))
			}
		}
		return lightPalette
	}
}
