package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/stackvity/converty/pkg/converter"
)

// Palette is the set of colors one theme is drawn with.
type Palette struct {
	Background lipgloss.Color
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Accent     lipgloss.Color
	Text       lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
}

var (
	// LightPalette is the default theme.
	LightPalette = Palette{
		Background: "#DAD7CD",
		Primary:    "#A3B18A",
		Secondary:  "#588157",
		Accent:     "#3A5A40",
		Text:       "#344E41",
		Success:    "#6A994E",
		Warning:    "#B85C5C",
		Error:      "#9E2B25",
	}
	// DarkPalette is the dark theme.
	DarkPalette = Palette{
		Background: "#344E41",
		Primary:    "#3A5A40",
		Secondary:  "#588157",
		Accent:     "#A3B18A",
		Text:       "#DAD7CD",
		Success:    "#A7C957",
		Warning:    "#B85C5C",
		Error:      "#9E2B25",
	}
)

// PaletteFor returns the palette of theme t.
func PaletteFor(t converter.Theme) Palette {
	if t == converter.ThemeDark {
		return DarkPalette
	}
	return LightPalette
}

// Styles are the lipgloss styles derived from a Palette.
type Styles struct {
	Palette Palette

	Header lipgloss.Style
	Footer lipgloss.Style

	NormalTitle   lipgloss.Style
	NormalDesc    lipgloss.Style
	SelectedTitle lipgloss.Style
	SelectedDesc  lipgloss.Style

	StatusSuccess    lipgloss.Style
	StatusFailed     lipgloss.Style
	StatusPending    lipgloss.Style
	StatusProcessing lipgloss.Style

	TableBorder lipgloss.Style
	TableHeader lipgloss.Style
	TableCell   lipgloss.Style
}

// NewStyles builds the styles for p.
func NewStyles(p Palette) Styles {
	return Styles{
		Palette: p,
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Primary).
			Background(p.Accent).
			Padding(0, 1),
		Footer: lipgloss.NewStyle().
			Foreground(p.Background).
			Background(p.Secondary).
			Padding(0, 1),

		NormalTitle:   lipgloss.NewStyle().Foreground(p.Text).Padding(0, 0, 0, 1),
		NormalDesc:    lipgloss.NewStyle().Foreground(p.Secondary).Padding(0, 0, 0, 1),
		SelectedTitle: lipgloss.NewStyle().Foreground(p.Text).Background(p.Primary).Bold(true).Padding(0, 0, 0, 1),
		SelectedDesc:  lipgloss.NewStyle().Foreground(p.Accent).Background(p.Primary).Padding(0, 0, 0, 1),

		StatusSuccess:    lipgloss.NewStyle().Foreground(p.Success),
		StatusFailed:     lipgloss.NewStyle().Foreground(p.Error),
		StatusPending:    lipgloss.NewStyle().Foreground(p.Secondary),
		StatusProcessing: lipgloss.NewStyle().Foreground(p.Accent),

		TableBorder: lipgloss.NewStyle().Foreground(p.Secondary),
		TableHeader: lipgloss.NewStyle().Bold(true).Foreground(p.Primary).Background(p.Accent).Padding(0, 1),
		TableCell:   lipgloss.NewStyle().Foreground(p.Text).Padding(0, 1),
	}
}
