package styles

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/retain/internal/application/port"
)

// MemoryRenderer renders memory probe readings.
type MemoryRenderer struct {
	theme *Theme
}

// NewMemoryRenderer creates a new memory renderer with the given theme.
func NewMemoryRenderer(theme *Theme) *MemoryRenderer {
	return &MemoryRenderer{theme: theme}
}

// Render renders stats; pressure is the monitor policy's verdict.
func (r *MemoryRenderer) Render(stats port.MemoryStats, pressure bool) string {
	title := fmt.Sprintf("%s %s", r.theme.Highlight.Render(IconMemory), r.theme.Title.Render("Memory"))
	header := lipgloss.JoinHorizontal(lipgloss.Center, title, " ", r.theme.StatusBadge(!pressure, "pressure"))

	limit := "unlimited"
	if stats.MemoryLimit > 0 {
		limit = fmt.Sprintf("%s (%s used)", Bytes(stats.MemoryLimit), Percent(stats.LimitRatio()))
	}

	host := []string{
		r.theme.Row("Total", Bytes(stats.TotalRAM)),
		r.theme.Row("Available", fmt.Sprintf("%s (%s)", Bytes(stats.AvailableRAM), Percent(stats.AvailableRatio()))),
	}
	runtime := []string{
		r.theme.Row("Heap live", Bytes(stats.HeapLive)),
		r.theme.Row("Heap goal", Bytes(stats.HeapGoal)),
		r.theme.Row("Memory limit", limit),
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		r.theme.Section(IconGauge, "Host", host),
		r.theme.Section(IconSettings, "Go runtime", runtime),
	)
}
