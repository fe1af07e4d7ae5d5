package viz

import "github.com/charmbracelet/lipgloss"

// Theme is the colour scheme of the live view.
type Theme struct {
	Name    string
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Wet     lipgloss.Color
	Mid     lipgloss.Color
	Dry     lipgloss.Color
}

var (
	ThemeLoam = Theme{
		Name:    "loam",
		Primary: lipgloss.Color("#00ccff"),
		Accent:  lipgloss.Color("#ffcc00"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#888899"),
		Wet:     lipgloss.Color("#00ff88"),
		Mid:     lipgloss.Color("#ffcc00"),
		Dry:     lipgloss.Color("#ff4444"),
	}

	ThemeRetro = Theme{
		Name:    "retro",
		Primary: lipgloss.Color("#00ff00"),
		Accent:  lipgloss.Color("#88ff88"),
		Text:    lipgloss.Color("#00ff00"),
		Muted:   lipgloss.Color("#005500"),
		Wet:     lipgloss.Color("#88ff88"),
		Mid:     lipgloss.Color("#00cc00"),
		Dry:     lipgloss.Color("#ffff00"),
	}

	ThemeMinimal = Theme{
		Name:    "minimal",
		Primary: lipgloss.Color("#ffffff"),
		Accent:  lipgloss.Color("#0088ff"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#888888"),
		Wet:     lipgloss.Color("#cccccc"),
		Mid:     lipgloss.Color("#999999"),
		Dry:     lipgloss.Color("#666666"),
	}

	Themes = []Theme{ThemeLoam, ThemeRetro, ThemeMinimal}
)

// GetTheme returns the theme called name, or ThemeLoam.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeLoam
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// next returns the theme after t in Themes.
func (t Theme) next() Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}
