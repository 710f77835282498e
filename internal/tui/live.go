// Package tui renders a live view of a running integration: the latest
// global-mean temperature, run progress and a trailing GMT graph.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/BenniSchmiedel/Low-dimensional-EBMs/internal/config"
	"github.com/BenniSchmiedel/Low-dimensional-EBMs/internal/ebm"
	"github.com/BenniSchmiedel/Low-dimensional-EBMs/internal/experiment"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	graphStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
)

const historyLen = 120

// Sample is one recorded integration sample.
type Sample struct {
	Step int
	Time float64
	GMT  float64
}

// outcome carries the run result across goroutines; reading it is safe
// only after the finished channel is closed.
type outcome struct {
	res *ebm.Result
	err error
}

type sampleMsg Sample
type doneMsg struct{}

type liveModel struct {
	name       string
	totalSteps int
	samples    <-chan Sample
	finished   <-chan struct{}
	out        *outcome

	latest  Sample
	history []float64
	done    bool
	width   int
}

func newLiveModel(name string, totalSteps int, samples <-chan Sample, finished <-chan struct{}, out *outcome) liveModel {
	return liveModel{
		name:       name,
		totalSteps: totalSteps,
		samples:    samples,
		finished:   finished,
		out:        out,
		history:    make([]float64, 0, historyLen),
		width:      80,
	}
}

func (m liveModel) wait() tea.Msg {
	s, ok := <-m.samples
	if !ok {
		<-m.finished
		return doneMsg{}
	}
	return sampleMsg(s)
}

func (m liveModel) Init() tea.Cmd {
	return m.wait
}

func (m liveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case sampleMsg:
		m.latest = Sample(msg)
		m.history = append(m.history, msg.GMT)
		if len(m.history) > historyLen {
			m.history = m.history[1:]
		}
		return m, m.wait
	case doneMsg:
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m liveModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("lowebm · "+m.name) + "\n\n")

	years := m.latest.Time / (86400 * 365)
	b.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
		labelStyle.Render("year"), valueStyle.Render(fmt.Sprintf("%8.2f", years)),
		labelStyle.Render("gmt"), valueStyle.Render(fmt.Sprintf("%7.3f K", m.latest.GMT)),
		labelStyle.Render("step"), valueStyle.Render(fmt.Sprintf("%d/%d", m.latest.Step, m.totalSteps)),
	))

	if m.totalSteps > 0 {
		pct := float64(m.latest.Step) / float64(m.totalSteps)
		barWidth := m.width - 12
		if barWidth > 50 {
			barWidth = 50
		}
		if barWidth > 0 {
			filled := int(pct * float64(barWidth))
			bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
			b.WriteString(labelStyle.Render("progress ") + bar +
				valueStyle.Render(fmt.Sprintf(" %3.0f%%", pct*100)) + "\n")
		}
	}

	if len(m.history) >= 2 {
		graphWidth := m.width - 10
		if graphWidth > 70 {
			graphWidth = 70
		}
		plot := asciigraph.Plot(m.history,
			asciigraph.Height(10),
			asciigraph.Width(graphWidth),
			asciigraph.Precision(2),
		)
		b.WriteString("\n" + graphStyle.Render(plot) + "\n")
	}

	if m.done {
		switch {
		case m.out.err != nil:
			b.WriteString("\n" + warnStyle.Render("run failed: "+m.out.err.Error()) + "\n")
		case m.out.res != nil && m.out.res.Converged:
			b.WriteString("\n" + okStyle.Render("converged") + "\n")
		default:
			b.WriteString("\n" + okStyle.Render("completed") + "\n")
		}
	} else {
		b.WriteString("\n" + labelStyle.Render("q to quit") + "\n")
	}
	return b.String()
}

// RunLive executes a configured run while rendering the live view, and
// returns the finished result. Quitting the view waits for the
// integration to complete.
func RunLive(cfg *config.Config) (*ebm.Result, error) {
	exp, err := experiment.New(cfg)
	if err != nil {
		return nil, err
	}

	samples := make(chan Sample, 256)
	finished := make(chan struct{})
	out := &outcome{}
	// Recording happens inside the hot loop; drop samples rather than
	// stall the integration when the view lags.
	exp.OnRecord = func(step int, t, gmt float64) {
		select {
		case samples <- Sample{Step: step, Time: t, GMT: gmt}:
		default:
		}
	}

	go func() {
		out.res, out.err = exp.Run(context.Background())
		close(finished)
		close(samples)
	}()

	p := tea.NewProgram(newLiveModel(cfg.Name, cfg.Integration.Steps, samples, finished, out))
	if _, err := p.Run(); err != nil {
		return nil, err
	}

	<-finished
	return out.res, out.err
}
