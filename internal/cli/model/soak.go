// Package model provides Bubble Tea models for interactive CLI output.
package model

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/retain/internal/application/usecase"
	"github.com/bnema/retain/internal/cli/styles"
)

const progressWidth = 30

// SoakProgressMsg carries a progress snapshot into the model.
type SoakProgressMsg usecase.SoakProgress

// SoakDoneMsg is sent when the soak has returned.
type SoakDoneMsg struct {
	Output *usecase.RunSoakOutput
	Err    error
}

// SoakModel shows a spinner and live counters while a soak runs. It quits
// on SoakDoneMsg; ctrl+c calls cancel and waits for the soak to return.
type SoakModel struct {
	spinner  spinner.Model
	theme    *styles.Theme
	progress usecase.SoakProgress
	cancel   func()

	stopping bool
	Done     *SoakDoneMsg
}

// NewSoakModel creates a progress model. cancel stops the soak.
func NewSoakModel(theme *styles.Theme, cancel func()) SoakModel {
	return SoakModel{
		spinner: styles.NewDefaultSpinner(theme),
		theme:   theme,
		cancel:  cancel,
	}
}

// Init implements tea.Model.
func (m SoakModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m SoakModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SoakProgressMsg:
		m.progress = usecase.SoakProgress(msg)
		return m, nil

	case SoakDoneMsg:
		m.Done = &msg
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if !m.stopping && m.cancel != nil {
				m.cancel()
			}
			m.stopping = true
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m SoakModel) View() string {
	if m.Done != nil {
		return ""
	}
	t := m.theme

	ratio := 0.0
	if m.progress.Duration > 0 {
		ratio = float64(m.progress.Elapsed) / float64(m.progress.Duration)
	}
	status := "soaking"
	if m.stopping {
		status = "stopping"
	}

	line := lipgloss.JoinHorizontal(lipgloss.Center,
		m.spinner.View(), " ",
		t.Subtle.Render(status), " ",
		t.ProgressBar(ratio, progressWidth), " ",
		t.Normal.Render(fmt.Sprintf("%s / %s",
			m.progress.Elapsed.Round(time.Second), m.progress.Duration.Round(time.Second))),
	)
	counters := t.Subtle.Render(fmt.Sprintf("puts %s  collections %s  raw slots %s",
		styles.Count(m.progress.Puts),
		styles.Count(m.progress.Collections),
		styles.Count(m.progress.RawSlots),
	))
	return lipgloss.JoinVertical(lipgloss.Left, line, counters) + "\n"
}
