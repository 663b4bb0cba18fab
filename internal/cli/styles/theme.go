// Package styles provides the lipgloss styles and renderers used by the
// retain CLI.
package styles

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// labelWidth pads row labels so values line up in a column.
const labelWidth = 18

// Palette is the set of colors a Theme is built from.
type Palette struct {
	Background string
	Panel      string
	Text       string
	Muted      string
	Accent     string
	Border     string
	Warning    string
	Error      string
}

// Theme holds the styles shared by every renderer.
type Theme struct {
	Palette Palette

	Title        lipgloss.Style
	Normal       lipgloss.Style
	Subtle       lipgloss.Style
	Highlight    lipgloss.Style
	ErrorStyle   lipgloss.Style
	WarningStyle lipgloss.Style
	SuccessStyle lipgloss.Style

	Badge      lipgloss.Style
	BadgeMuted lipgloss.Style

	Label lipgloss.Style
	Value lipgloss.Style

	Box       lipgloss.Style
	BoxHeader lipgloss.Style
}

// DefaultDarkPalette returns the built-in dark colors.
func DefaultDarkPalette() Palette {
	return Palette{
		Background: "#0a0a0b",
		Panel:      "#2d2d2d",
		Text:       "#ffffff",
		Muted:      "#909090",
		Accent:     "#4ade80",
		Border:     "#333333",
		Warning:    "#f59e0b",
		Error:      "#ef4444",
	}
}

// NewTheme creates the default dark theme.
func NewTheme() *Theme {
	return NewThemeFromPalette(DefaultDarkPalette())
}

// NewThemeFromPalette creates a Theme from a Palette.
func NewThemeFromPalette(p Palette) *Theme {
	fg := func(c string) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(c))
	}
	border := lipgloss.Color(p.Border)

	return &Theme{
		Palette: p,

		Title:        fg(p.Text).Bold(true),
		Normal:       fg(p.Text),
		Subtle:       fg(p.Muted),
		Highlight:    fg(p.Accent).Bold(true),
		ErrorStyle:   fg(p.Error).Bold(true),
		WarningStyle: fg(p.Warning),
		SuccessStyle: fg(p.Accent),

		Badge:      fg(p.Background).Background(lipgloss.Color(p.Accent)).Padding(0, 1),
		BadgeMuted: fg(p.Text).Background(lipgloss.Color(p.Panel)).Padding(0, 1),

		Label: fg(p.Muted).Width(labelWidth),
		Value: fg(p.Text),

		Box: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 2),
		BoxHeader: fg(p.Text).
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(border),
	}
}

// Row renders a "label value" line.
func (t *Theme) Row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, t.Label.Render(label), t.Value.Render(value))
}

// Section renders a boxed block with a header.
func (t *Theme) Section(icon, title string, lines []string) string {
	header := t.BoxHeader.Render(t.Highlight.Render(icon) + " " + title)
	return t.Box.Render(lipgloss.JoinVertical(lipgloss.Left, append([]string{header}, lines...)...))
}

// Failure renders a command error on one line.
func (t *Theme) Failure(err error) string {
	return t.ErrorStyle.Render(fmt.Sprintf("%s %v", IconX, err))
}
