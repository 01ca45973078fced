package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Builder creates a live model for a named preset.
type Builder func(name string) (Model, error)

const (
	stateMenu = iota
	stateSim
)

type picker struct {
	state  int
	cursor int
	names  []string
	build  Builder
	live   Model
	err    error
}

// NewPicker lists preset names and starts the chosen one.
func NewPicker(names []string, build Builder) tea.Model {
	return picker{names: names, build: build}
}

func (p picker) Init() tea.Cmd { return nil }

func (p picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if p.state == stateSim {
		next, cmd := p.live.Update(msg)
		p.live = next.(Model)
		return p, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return p, tea.Quit
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.names)-1 {
			p.cursor++
		}
	case "enter", " ":
		if len(p.names) == 0 {
			return p, nil
		}
		live, err := p.build(p.names[p.cursor])
		if err != nil {
			p.err = err
			return p, nil
		}
		p.err = nil
		p.live = live
		p.state = stateSim
		return p, p.live.Init()
	}
	return p, nil
}

func (p picker) View() string {
	if p.state == stateSim {
		return p.live.View()
	}

	h := lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Bold(true)
	sel := lipgloss.NewStyle().Foreground(CurrentTheme.Text).Bold(true)
	key := lipgloss.NewStyle().Foreground(CurrentTheme.Accent).Bold(true)

	var b strings.Builder
	b.WriteString("\n\n    " + h.Render("NBODYSIM") + "\n    " + Subtle.Render("gravitational n-body simulation") + "\n    " + Subtle.Render("─────────────────────────") + "\n\n")
	for i, name := range p.names {
		if i == p.cursor {
			b.WriteString(fmt.Sprintf("    %s %s\n", h.Render("▸"), sel.Render(name)))
		} else {
			b.WriteString(fmt.Sprintf("      %s\n", Subtle.Render(name)))
		}
	}
	if p.err != nil {
		b.WriteString("\n    " + StatusFailed.Render(p.err.Error()) + "\n")
	}
	b.WriteString("\n    " + key.Render("j/k") + Subtle.Render(" navigate  ") + key.Render("enter") + Subtle.Render(" start  ") + key.Render("q") + Subtle.Render(" quit") + "\n")
	return b.String()
}

// RunPicker runs the preset picker full screen.
func RunPicker(names []string, build Builder) error {
	_, err := tea.NewProgram(NewPicker(names, build), tea.WithAltScreen()).Run()
	return err
}
