package styles

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
)

// NewDefaultSpinner creates the default themed spinner.
func NewDefaultSpinner(theme *Theme) spinner.Model {
	s := spinner.New()
	s.Style = theme.SuccessStyle
	s.Spinner = spinner.Dot
	return s
}

// ProgressBar renders a fixed-width bar for a 0..1 ratio.
func (t *Theme) ProgressBar(ratio float64, width int) string {
	ratio = max(0, min(ratio, 1))
	filled := int(ratio * float64(width))
	bar := t.SuccessStyle.Render(strings.Repeat("█", filled))
	rest := lipgloss.NewStyle().Foreground(lipgloss.Color(t.Palette.Panel)).Render(strings.Repeat("░", width-filled))
	return bar + rest
}

