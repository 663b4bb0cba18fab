package styles

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ConfigRenderer renders config status messages with styled output.
type ConfigRenderer struct {
	theme *Theme
}

// NewConfigRenderer creates a new config renderer with the given theme.
func NewConfigRenderer(theme *Theme) *ConfigRenderer {
	return &ConfigRenderer{theme: theme}
}

// RenderConfigInfo renders the config file path, or a note that defaults
// are in use when path is empty.
func (r *ConfigRenderer) RenderConfigInfo(path string) string {
	iconStyle := r.theme.SuccessStyle
	if path == "" {
		return fmt.Sprintf("\n  %s Config %s\n",
			iconStyle.Render(IconConfig),
			r.theme.Subtle.Render("(no file, using defaults)"),
		)
	}
	return fmt.Sprintf("\n  %s Config %s\n", iconStyle.Render(IconConfig), r.theme.Subtle.Render(path))
}

// RenderSettings renders nested settings as sorted dotted keys.
func (r *ConfigRenderer) RenderSettings(settings map[string]any) string {
	flat := make(map[string]string)
	flatten("", settings, flat)

	var sb strings.Builder
	for _, key := range slices.Sorted(maps.Keys(flat)) {
		sb.WriteString(fmt.Sprintf("    %s %s\n",
			lipgloss.NewStyle().Width(30).Render(r.theme.Highlight.Render(key)),
			r.theme.Value.Render(flat[key]),
		))
	}
	return sb.String()
}

func flatten(prefix string, settings map[string]any, out map[string]string) {
	for k, v := range settings {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok {
			flatten(key, nested, out)
			continue
		}
		out[key] = fmt.Sprint(v)
	}
}

// RenderWritten renders the paths written by "config init".
func (r *ConfigRenderer) RenderWritten(configPath, schemaPath string) string {
	iconStyle := r.theme.SuccessStyle
	return fmt.Sprintf("\n  %s Wrote %s\n  %s Wrote %s\n",
		iconStyle.Render(IconCheck), r.theme.Subtle.Render(configPath),
		iconStyle.Render(IconSchema), r.theme.Subtle.Render(schemaPath),
	)
}

// RenderReloaded renders a one-line notice after a config reload.
func (r *ConfigRenderer) RenderReloaded(path string) string {
	return fmt.Sprintf("  %s %s %s\n",
		r.theme.Highlight.Render(IconInfo),
		r.theme.Normal.Render("reloaded"),
		r.theme.Subtle.Render(path),
	)
}
