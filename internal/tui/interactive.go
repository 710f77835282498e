package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/BenniSchmiedel/Low-dimensional-EBMs/internal/config"
	"github.com/BenniSchmiedel/Low-dimensional-EBMs/internal/experiment"
)

var (
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

var presetInfo = map[string]string{
	"0d-planck":  "global mean, blackbody cooling",
	"budyko-1d":  "zonal bands, linear longwave, diffusive transfer",
	"sellers-1d": "zonal bands, full meridional transfer",
}

type screen int

const (
	screenMenu screen = iota
	screenRun
)

type interactiveModel struct {
	screen  screen
	cursor  int
	presets []string
	loadErr error

	live   liveModel
	cancel context.CancelFunc
}

func newInteractiveModel() interactiveModel {
	return interactiveModel{presets: config.PresetNames()}
}

func (m interactiveModel) Init() tea.Cmd { return nil }

func (m interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.screen == screenMenu {
		return m.updateMenu(msg)
	}
	return m.updateRun(msg)
}

func (m interactiveModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.presets)-1 {
				m.cursor++
			}
		case "enter", " ":
			live, cancel, err := startPresetRun(m.presets[m.cursor])
			if err != nil {
				m.loadErr = err
				return m, nil
			}
			m.loadErr = nil
			m.live = live
			m.cancel = cancel
			m.screen = screenRun
			return m, m.live.wait
		}
	}
	return m, nil
}

func (m interactiveModel) updateRun(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit
		case "q", "esc":
			m.cancel()
			m.screen = screenMenu
			return m, nil
		}
		return m, nil
	case doneMsg:
		// Keep showing the finished run until the user backs out.
		next, _ := m.live.Update(msg)
		m.live = next.(liveModel)
		return m, nil
	default:
		next, cmd := m.live.Update(msg)
		m.live = next.(liveModel)
		return m, cmd
	}
}

func (m interactiveModel) View() string {
	if m.screen == screenRun {
		return m.live.View() + dimStyle.Render("  esc back") + "\n"
	}

	var b strings.Builder
	b.WriteString("\n  " + titleStyle.Render("lowebm") + "\n")
	b.WriteString("  " + labelStyle.Render("energy balance models") + "\n\n")

	for i, name := range m.presets {
		desc := presetInfo[name]
		if i == m.cursor {
			b.WriteString("  " + cursorStyle.Render("▸ ") +
				valueStyle.Render(fmt.Sprintf("%-12s", name)) +
				labelStyle.Render(desc) + "\n")
		} else {
			b.WriteString("    " + labelStyle.Render(fmt.Sprintf("%-12s", name)) +
				dimStyle.Render(desc) + "\n")
		}
	}

	if m.loadErr != nil {
		b.WriteString("\n  " + errStyle.Render(m.loadErr.Error()) + "\n")
	}
	b.WriteString("\n  " + labelStyle.Render("↑↓ select   enter run   q quit") + "\n")
	return b.String()
}

// startPresetRun launches one preset integration in the background and
// returns the live view over it plus a cancel for early exit.
func startPresetRun(name string) (liveModel, context.CancelFunc, error) {
	cfg, err := config.Preset(name)
	if err != nil {
		return liveModel{}, nil, err
	}
	exp, err := experiment.New(cfg)
	if err != nil {
		return liveModel{}, nil, err
	}

	samples := make(chan Sample, 256)
	finished := make(chan struct{})
	out := &outcome{}
	exp.OnRecord = func(step int, t, gmt float64) {
		select {
		case samples <- Sample{Step: step, Time: t, GMT: gmt}:
		default:
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		out.res, out.err = exp.Run(ctx)
		close(finished)
		close(samples)
	}()

	return newLiveModel(cfg.Name, cfg.Integration.Steps, samples, finished, out), cancel, nil
}

// RunInteractive starts the preset browser.
func RunInteractive() error {
	p := tea.NewProgram(newInteractiveModel(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
