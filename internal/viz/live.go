package viz

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/nbodysim/internal/physics"
	"github.com/san-kum/nbodysim/internal/sim"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	frameInterval   = time.Second / 30
	maxStepsPerTick = 1 << 14
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model steps an engine on every tick and renders what its Plotter saw.
type Model struct {
	ctx     context.Context
	engine  *sim.Engine
	plotter *Plotter
	name    string

	canvas *Canvas
	camera *Camera
	fitted bool
	follow bool

	stepsPerTick int
	running      bool
	showHelp     bool
	err          error

	seen          int
	energyHistory []float64
}

// NewModel wraps an engine that has plotter registered as a sink.
func NewModel(ctx context.Context, name string, engine *sim.Engine, plotter *Plotter, stepsPerTick int) Model {
	if stepsPerTick < 1 {
		stepsPerTick = 1
	}
	return Model{
		ctx:           ctx,
		engine:        engine,
		plotter:       plotter,
		name:          name,
		canvas:        NewCanvas(width, height),
		camera:        NewCamera(),
		follow:        true,
		stepsPerTick:  stepsPerTick,
		running:       true,
		energyHistory: make([]float64, 0, historyCapacity),
	}
}

// Err returns the error that stopped the engine, if any.
func (m Model) Err() error { return m.err }

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		case "x":
			m.camera.RotateX(0.1)
		case "X":
			m.camera.RotateX(-0.1)
		case "y":
			m.camera.RotateY(0.1)
		case "Y":
			m.camera.RotateY(-0.1)
		case "z":
			m.camera.RotateZ(0.1)
		case "Z":
			m.camera.RotateZ(-0.1)
		case "f":
			m.follow = !m.follow
		case ">":
			m.stepsPerTick = min(maxStepsPerTick, m.stepsPerTick*2)
		case "<":
			m.stepsPerTick = max(1, m.stepsPerTick/2)
		case "t":
			NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running && m.err == nil {
			m.advance()
		}
		m.fit()
		return m, tick()
	}
	return m, nil
}

func (m *Model) advance() {
	for i := 0; i < m.stepsPerTick && !m.engine.Done(); i++ {
		if err := m.engine.Step(m.ctx); err != nil {
			m.err = err
			m.running = false
			break
		}
	}
	if m.engine.Done() {
		m.running = false
	}

	if n := m.plotter.Updates(); n != m.seen {
		m.seen = n
		if snap, ok := m.plotter.Latest(); ok {
			m.energyHistory = append(m.energyHistory, physics.TotalEnergy(snap.Bodies, m.engine.Config().G))
			if len(m.energyHistory) > historyCapacity {
				m.energyHistory = m.energyHistory[1:]
			}
		}
	}
}

func (m *Model) fit() {
	if m.fitted && !m.follow {
		return
	}
	if pts := m.plotter.LivePositions(); len(pts) > 0 {
		m.camera.Fit(pts)
		m.fitted = true
	}
}

func (m Model) draw() {
	m.canvas.Clear()
	m.plotter.Draw(m.canvas, m.camera)
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return StatusFailed.Render("FAILED")
	case m.engine.Done():
		return StatusRunning.Render("DONE")
	case !m.running:
		return StatusPaused.Render("PAUSED")
	}
	return StatusRunning.Render("RUNNING")
}

func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(bodyStyle().Render(m.canvas.String()))

	var s strings.Builder
	s.WriteString(headerStyle().Render(strings.ToUpper(m.name)) + "\n")
	s.WriteString(m.status() + "\n\n")

	cfg := m.engine.Config()
	progress := 1.0
	if cfg.Duration > 0 {
		progress = m.engine.Elapsed() / cfg.Duration
	}
	s.WriteString(ProgressBar(progress, 30) + "\n\n")

	live, total := 0, 0
	if snap, ok := m.plotter.Latest(); ok {
		total = len(snap.Bodies)
		for i := range snap.Bodies {
			if snap.Bodies[i].Alive() {
				live++
			}
		}
	}

	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(formatDuration(m.engine.Elapsed())) + "\n")
	s.WriteString(labelStyle.Render("Step") + valueStyle.Render(fmt.Sprintf("%d", m.engine.StepIndex())) + "\n")
	s.WriteString(labelStyle.Render("Bodies") + valueStyle.Render(fmt.Sprintf("%d / %d", live, total)) + "\n")
	s.WriteString(labelStyle.Render("Steps/frame") + valueStyle.Render(fmt.Sprintf("%d", m.stepsPerTick)) + "\n")
	if len(m.energyHistory) > 0 {
		s.WriteString(labelStyle.Render("Energy") + valueStyle.Render(fmt.Sprintf("%.4e J", m.energyHistory[len(m.energyHistory)-1])) + "\n")
	}
	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(graphStyle.Foreground(CurrentTheme.Primary).Render(chart) + "\n")
	}
	if m.err != nil {
		s.WriteString("\n" + StatusFailed.Render(m.err.Error()) + "\n")
	}

	s.WriteString(helpStyle.Render(Separator(36) + "\nSP:Pause Q:Quit ?:Help\n+/-:Zoom x/y/z:Rotate"))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))

	if m.showHelp {
		return GlassPanel.Render(`KEYBOARD SHORTCUTS

Space   Pause/Resume simulation
+ / -   Zoom in/out
x y z   Rotate view (shift reverses)
f       Toggle auto-fit
> / <   More/fewer steps per frame
t       Cycle themes
?       Toggle this help
q       Quit`) + "\n\n" + mainView
	}
	return mainView
}

// formatDuration renders simulated seconds in the largest fitting unit.
func formatDuration(sec float64) string {
	const (
		day  = 86400.0
		year = 365 * day
	)
	switch {
	case sec >= year:
		return fmt.Sprintf("%.2f yr", sec/year)
	case sec >= day:
		return fmt.Sprintf("%.2f d", sec/day)
	}
	return fmt.Sprintf("%.0f s", sec)
}

// RunLive runs the model full screen and returns the engine error, if any.
func RunLive(m Model) error {
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(Model); ok {
		return fm.Err()
	}
	return nil
}
