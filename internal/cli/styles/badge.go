package styles

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// AccentBadge renders a badge with accent color.
func (t *Theme) AccentBadge(text string) string {
	return t.Badge.Render(text)
}

// MutedBadge renders a badge with muted colors.
func (t *Theme) MutedBadge(text string) string {
	return t.BadgeMuted.Render(text)
}

// StatusBadge renders "OK" in the success color or text in the warning color.
func (t *Theme) StatusBadge(ok bool, text string) string {
	if ok {
		return t.BadgeMuted.Render(t.SuccessStyle.Render("OK"))
	}
	return t.BadgeMuted.Render(t.WarningStyle.Render(text))
}

// RetentionBadge renders a "keys/values" retention pair.
func (t *Theme) RetentionBadge(keys, values string) string {
	return t.AccentBadge(fmt.Sprintf("%s/%s", keys, values))
}

// Count formats n with thousands separators.
func Count[T ~int | ~int64 | ~uint64](n T) string {
	if n < 0 {
		return "-" + humanize.Comma(-int64(n))
	}
	return humanize.Comma(int64(n))
}

// Bytes formats a byte count with binary units, or "unknown" for zero.
func Bytes(n uint64) string {
	if n == 0 {
		return "unknown"
	}
	return humanize.IBytes(n)
}

// Percent formats a 0..1 ratio as a percentage.
func Percent(ratio float64) string {
	return fmt.Sprintf("%.1f%%", ratio*100)
}
