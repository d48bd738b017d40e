package cli

import "github.com/charmbracelet/lipgloss"

// theme defines the colour palette for table output.
type theme struct {
	// Primary is the main accent colour.
	Primary lipgloss.Color

	// Foreground is the default text colour.
	Foreground lipgloss.Color

	// Muted is for less important text.
	Muted lipgloss.Color

	// Success highlights scores.
	Success lipgloss.Color

	// Border is the border colour.
	Border lipgloss.Color
}

func defaultTheme() *theme {
	return &theme{
		Primary:    lipgloss.Color("#7C3AED"), // Purple
		Foreground: lipgloss.Color("#CDD6F4"), // Light gray
		Muted:      lipgloss.Color("#6C7086"), // Medium gray
		Success:    lipgloss.Color("#A6E3A1"), // Green
		Border:     lipgloss.Color("#45475A"), // Border gray
	}
}

// styles contains the lipgloss styles used by table output.
type styles struct {
	Header lipgloss.Style
	Cell   lipgloss.Style
	Score  lipgloss.Style
	Border lipgloss.Style
	Label  lipgloss.Style
	Muted  lipgloss.Style
}

func newStyles(t *theme) *styles {
	if t == nil {
		t = defaultTheme()
	}
	return &styles{
		Header: lipgloss.NewStyle().Bold(true).Foreground(t.Primary).Padding(0, 1),
		Cell:   lipgloss.NewStyle().Foreground(t.Foreground).Padding(0, 1),
		Score:  lipgloss.NewStyle().Foreground(t.Success).Padding(0, 1),
		Border: lipgloss.NewStyle().Foreground(t.Border),
		Label:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Muted:  lipgloss.NewStyle().Foreground(t.Muted),
	}
}
