package styles

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/retain/internal/application/usecase"
	"github.com/bnema/retain/internal/domain/entity"
)

// SoakInfo describes the map a soak ran against.
type SoakInfo struct {
	KeyRetention   entity.Retention
	ValueRetention entity.Retention
	Segments       int
	Monitored      bool
	Released       uint64
}

// SoakRenderer renders soak reports.
type SoakRenderer struct {
	theme *Theme
}

// NewSoakRenderer creates a new soak renderer with the given theme.
func NewSoakRenderer(theme *Theme) *SoakRenderer {
	return &SoakRenderer{theme: theme}
}

// Render renders the workload counters and the slot accounting.
func (r *SoakRenderer) Render(info SoakInfo, out *usecase.RunSoakOutput) string {
	title := fmt.Sprintf("%s %s", r.theme.Highlight.Render(IconRecycle), r.theme.Title.Render("Soak"))
	badges := r.theme.RetentionBadge(info.KeyRetention.String(), info.ValueRetention.String())
	if info.Monitored {
		badges += " " + r.theme.MutedBadge("monitored")
	}
	if out.Interrupted {
		badges += " " + r.theme.StatusBadge(false, "interrupted")
	}
	header := lipgloss.JoinHorizontal(lipgloss.Center, title, " ", badges)

	hitRate := 0.0
	if total := out.Hits + out.Misses; total > 0 {
		hitRate = float64(out.Hits) / float64(total)
	}
	workload := []string{
		r.theme.Row("Elapsed", out.Elapsed.Round(time.Millisecond).String()),
		r.theme.Row("Segments", Count(info.Segments)),
		r.theme.Row("Puts", Count(out.Puts)),
		r.theme.Row("Hit rate", Percent(hitRate)),
		r.theme.Row("Removes", Count(out.Removes)),
		r.theme.Row("Collections", Count(out.Collections)),
	}

	slots := []string{
		r.theme.Row("Peak raw slots", Count(out.PeakRawSlots)),
		r.theme.Row("Final raw slots", Count(out.FinalRawSlots)),
		r.theme.Row("Live entries", Count(out.FinalLen)),
	}
	if info.KeyRetention == entity.RetentionSoft || info.ValueRetention == entity.RetentionSoft {
		slots = append(slots, r.theme.Row("Soft anchors", Count(out.SoftHeld)))
	}
	if info.Monitored {
		slots = append(slots, r.theme.Row("Released", Count(info.Released)))
	}
	if out.Phases != "" {
		slots = append(slots, r.theme.Row("Phases", r.theme.Subtle.Render(out.Phases)))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		r.theme.Section(IconGauge, "Workload", workload),
		r.theme.Section(IconPackage, "Slots", slots),
	)
}
