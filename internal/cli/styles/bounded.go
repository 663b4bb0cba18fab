package styles

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/retain/internal/application/usecase"
	"github.com/bnema/retain/internal/infrastructure/cache"
)

// BoundedRenderer renders bounded cache replays.
type BoundedRenderer struct {
	theme *Theme
}

// NewBoundedRenderer creates a new bounded renderer with the given theme.
func NewBoundedRenderer(theme *Theme) *BoundedRenderer {
	return &BoundedRenderer{theme: theme}
}

// Render renders the step trace, the surviving keys and the cache stats.
func (r *BoundedRenderer) Render(out *usecase.ReplayBoundedOutput, stats cache.Stats) string {
	steps := make([]string, 0, len(out.Steps))
	for i, step := range out.Steps {
		steps = append(steps, r.renderStep(i, step))
	}
	if len(steps) == 0 {
		steps = append(steps, r.theme.Subtle.Render("no operations"))
	}

	keys := r.theme.Subtle.Render("(empty)")
	if len(out.Keys) > 0 {
		keys = strings.Join(out.Keys, r.theme.Subtle.Render(" "+IconArrow+" "))
	}

	summary := []string{
		r.theme.Row("Capacity", Count(stats.Capacity)),
		r.theme.Row("Entries", Count(stats.Len)),
		r.theme.Row("Order", keys),
		r.theme.Row("Inserts", Count(stats.Inserts)),
		r.theme.Row("Updates", Count(stats.Updates)),
		r.theme.Row("Evictions", Count(stats.Evictions)),
		r.theme.Row("Hit rate", Percent(stats.HitRate())),
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		r.theme.Section(IconArrow, "Replay", steps),
		r.theme.Section(IconCache, "Cache", summary),
	)
}

func (r *BoundedRenderer) renderStep(i int, step usecase.BoundedStep) string {
	index := r.theme.Subtle.Render(fmt.Sprintf("%3d", i+1))
	op := r.theme.Highlight.Render(step.Op.String())

	var result string
	switch step.Op.Kind {
	case usecase.BoundedOpPut:
		if len(step.Evicted) == 0 {
			result = r.theme.Subtle.Render("stored")
			break
		}
		evicted := make([]string, 0, len(step.Evicted))
		for _, e := range step.Evicted {
			evicted = append(evicted, fmt.Sprintf("%s=%s", e.Key, e.Value))
		}
		result = r.theme.WarningStyle.Render(IconTrash + " evicted " + strings.Join(evicted, ", "))
	default:
		if step.Found {
			result = r.theme.SuccessStyle.Render(IconCheck + " " + step.Value)
		} else {
			result = r.theme.Subtle.Render(IconX + " miss")
		}
	}
	return fmt.Sprintf("%s  %s  %s", index, op, result)
}
