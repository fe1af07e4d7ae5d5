package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles are the lipgloss styles derived from a Theme.
type Styles struct {
	Header  lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Running lipgloss.Style
	Paused  lipgloss.Style
	Graph   lipgloss.Style
	Hint    lipgloss.Style
	Panel   lipgloss.Style
	Error   lipgloss.Style

	wet, mid, dry lipgloss.Style
}

// NewStyles builds the styles for t.
func NewStyles(t Theme) Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Text).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(t.Muted),
		Label:   lipgloss.NewStyle().Foreground(t.Muted).Width(14),
		Value:   lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
		Running: lipgloss.NewStyle().Bold(true).Foreground(t.Wet),
		Paused:  lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		Graph:   lipgloss.NewStyle().Foreground(t.Primary).Padding(1, 0),
		Hint:    lipgloss.NewStyle().Foreground(t.Muted).Italic(true),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Muted).
			Padding(1, 2),
		Error: lipgloss.NewStyle().Bold(true).Foreground(t.Dry),

		wet: lipgloss.NewStyle().Foreground(t.Wet),
		mid: lipgloss.NewStyle().Foreground(t.Mid),
		dry: lipgloss.NewStyle().Foreground(t.Dry),
	}
}

// level picks the wet, mid or dry style for a fraction in [0, 1].
func (s Styles) level(f float64) lipgloss.Style {
	switch {
	case f > 0.7:
		return s.wet
	case f > 0.3:
		return s.mid
	}
	return s.dry
}

// ProgressBar renders fraction f of width cells.
func (s Styles) ProgressBar(f float64, width int) string {
	filled := int(f * float64(width))
	filled = max(0, min(width, filled))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return s.level(f).Render(bar)
}

// FillBars renders one bar per value in [0, 1], resampled to at most width bars.
func (s Styles) FillBars(fractions []float64, width int) string {
	if len(fractions) == 0 {
		return strings.Repeat("─", width)
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	step := max(1, len(fractions)/width)
	var b strings.Builder
	for i := 0; i < width && i*step < len(fractions); i++ {
		f := max(0, min(1, fractions[i*step]))
		idx := min(len(chars)-1, int(f*float64(len(chars)-1)))
		b.WriteString(s.level(f).Render(string(chars[idx])))
	}
	return b.String()
}

// Row renders a label and value on one line.
func (s Styles) Row(label, value string) string {
	return s.Label.Render(label) + s.Value.Render(value) + "\n"
}
