package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines color scheme for the TUI
type Theme struct {
	Name     string
	Relaxed  lipgloss.Color // links at rest length
	Strained lipgloss.Color // links at the break threshold
	Pinned   lipgloss.Color
	Accent   lipgloss.Color
	Text     lipgloss.Color
	Muted    lipgloss.Color
	Warning  lipgloss.Color
}

// Available themes
var (
	ThemeCyberpunk = Theme{
		Name:     "cyberpunk",
		Relaxed:  lipgloss.Color("#00ffff"),
		Strained: lipgloss.Color("#ff00ff"),
		Pinned:   lipgloss.Color("#ffff00"),
		Accent:   lipgloss.Color("#ff00ff"),
		Text:     lipgloss.Color("#ffffff"),
		Muted:    lipgloss.Color("#666666"),
		Warning:  lipgloss.Color("#ff8800"),
	}

	ThemeRetroGreen = Theme{
		Name:     "retro",
		Relaxed:  lipgloss.Color("#005500"),
		Strained: lipgloss.Color("#88ff88"),
		Pinned:   lipgloss.Color("#00ff00"),
		Accent:   lipgloss.Color("#00ff00"),
		Text:     lipgloss.Color("#00ff00"),
		Muted:    lipgloss.Color("#005500"),
		Warning:  lipgloss.Color("#ffff00"),
	}

	ThemeHeat = Theme{
		Name:     "heat",
		Relaxed:  lipgloss.Color("#28a0ff"),
		Strained: lipgloss.Color("#ff2828"),
		Pinned:   lipgloss.Color("#cccccc"),
		Accent:   lipgloss.Color("#ffd700"),
		Text:     lipgloss.Color("#e0f0ff"),
		Muted:    lipgloss.Color("#4488aa"),
		Warning:  lipgloss.Color("#ffcc00"),
	}

	ThemeSunset = Theme{
		Name:     "sunset",
		Relaxed:  lipgloss.Color("#feca57"),
		Strained: lipgloss.Color("#ff4757"),
		Pinned:   lipgloss.Color("#ff9ff3"),
		Accent:   lipgloss.Color("#ff6b6b"),
		Text:     lipgloss.Color("#fff5f5"),
		Muted:    lipgloss.Color("#8b6b8c"),
		Warning:  lipgloss.Color("#ffc048"),
	}

	// Default theme
	CurrentTheme = ThemeHeat

	// All available themes
	Themes = []Theme{
		ThemeHeat,
		ThemeCyberpunk,
		ThemeRetroGreen,
		ThemeSunset,
	}
)

// GetTheme returns a theme by name
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeHeat
}

// SetTheme changes the current theme
func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

// NextTheme switches to the theme after the current one.
func NextTheme() {
	names := ThemeNames()
	for i, name := range names {
		if name == CurrentTheme.Name {
			SetTheme(names[(i+1)%len(names)])
			return
		}
	}
	CurrentTheme = Themes[0]
}

// ThemeNames returns list of available theme names
func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// StrainColor blends from Relaxed to Strained as strain goes from 1 to limit.
func (t Theme) StrainColor(strain, limit float64) lipgloss.Color {
	frac := 0.0
	if limit > 1 {
		frac = (strain - 1) / (limit - 1)
	}
	return Blend(t.Relaxed, t.Strained, frac)
}
