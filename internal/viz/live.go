package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/driftlab/driftsim/internal/config"
	"github.com/driftlab/driftsim/internal/drift"
	"github.com/driftlab/driftsim/internal/model"
	"github.com/driftlab/driftsim/internal/particle"
)

const (
	canvasWidth     = 64
	canvasHeight    = 20
	historyCapacity = 600
	trailCapacity   = 120
)

var (
	canvasStyle  = lipgloss.NewStyle().Padding(1, 2)
	sideStyle    = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(44)
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	flaggedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	graphStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
)

type TickMsg time.Time

type trailPoint struct{ x, y float64 }

// Model animates a seeded particle batch in the terminal, stepping the
// underlying simulation on every tick.
type Model struct {
	sim    *model.Model
	cfg    *config.Config
	vp     Viewport
	canvas *Canvas

	t, dt   float64
	steps   int
	running bool

	initial    particle.Snapshot
	trails     [][]trailPoint
	showTrails bool
	spread     []float64

	err error
}

// NewModel wraps an already-seeded simulation. The initial snapshot is kept
// so the batch can be restored with the reset key.
func NewModel(sim *model.Model, cfg *config.Config) Model {
	initial := sim.Snapshot()
	return Model{
		sim:        sim,
		cfg:        cfg,
		vp:         Viewport{XMin: cfg.Basin.XMin, XMax: cfg.Basin.XMax, YMin: cfg.Basin.YMin, YMax: cfg.Basin.YMax},
		canvas:     NewCanvas(canvasWidth, canvasHeight),
		dt:         cfg.Dt,
		running:    true,
		initial:    initial,
		trails:     make([][]trailPoint, len(initial.X)),
		showTrails: true,
		spread:     make([]float64, 0, historyCapacity),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "t":
			m.showTrails = !m.showTrails
		case "+", "=":
			m.dt *= 2
		case "-", "_":
			m.dt /= 2
		}
		return m, nil

	case TickMsg:
		if m.running && m.err == nil {
			m.step()
		}
		return m, tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

func (m *Model) step() {
	if err := m.sim.Update(m.t, m.dt); err != nil {
		m.err = err
		m.running = false
		return
	}
	m.t += m.dt
	m.steps++

	snap := m.sim.Snapshot()
	sum := 0.0
	for i := range snap.X {
		sum += math.Hypot(snap.X[i]-m.initial.X[i], snap.Y[i]-m.initial.Y[i])
		if snap.Status[i] == drift.StatusActive && m.showTrails {
			m.trails[i] = append(m.trails[i], trailPoint{snap.X[i], snap.Y[i]})
			if len(m.trails[i]) > trailCapacity {
				m.trails[i] = m.trails[i][1:]
			}
		}
	}
	if n := len(snap.X); n > 0 {
		m.spread = append(m.spread, sum/float64(n))
		if len(m.spread) > historyCapacity {
			m.spread = m.spread[1:]
		}
	}
}

func (m *Model) reset() {
	m.err = m.sim.SetParticleData(m.initial.GroupIDs, m.initial.X, m.initial.Y, m.initial.Z)
	m.t = 0
	m.steps = 0
	m.spread = m.spread[:0]
	for i := range m.trails {
		m.trails[i] = nil
	}
}

func (m Model) View() string {
	m.canvas.Clear()

	snap := m.sim.Snapshot()
	if m.showTrails {
		for _, trail := range m.trails {
			for _, pt := range trail {
				m.canvas.Mark(m.vp, pt.x, pt.y)
			}
		}
	}
	flagged := 0
	for i := range snap.X {
		m.canvas.Mark(m.vp, snap.X[i], snap.Y[i])
		if snap.Status[i] != drift.StatusActive {
			flagged++
		}
	}

	var side strings.Builder
	side.WriteString(headerStyle.Render(m.cfg.Name) + "\n")
	row := func(label, value string) {
		side.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("time", fmt.Sprintf("%.1f s", m.t))
	row("step", fmt.Sprintf("%d", m.steps))
	row("dt", fmt.Sprintf("%.2f s", m.dt))
	row("scheme", m.cfg.NumMethod)
	row("particles", fmt.Sprintf("%d", len(snap.X)))
	active := fmt.Sprintf("%d", m.sim.Active())
	if flagged > 0 {
		active += flaggedStyle.Render(fmt.Sprintf("  (%d flagged)", flagged))
	}
	row("active", active)

	if len(m.spread) > 1 {
		graph := asciigraph.Plot(m.spread,
			asciigraph.Height(6),
			asciigraph.Width(34),
			asciigraph.Caption("mean drift"))
		side.WriteString(graphStyle.Render(graph) + "\n")
	}

	if m.err != nil {
		side.WriteString("\n" + flaggedStyle.Render("error: "+m.err.Error()) + "\n")
	} else if !m.running {
		side.WriteString("\n" + flaggedStyle.Render("paused") + "\n")
	}

	side.WriteString(helpStyle.Render("space pause · r reset · t trails · +/- dt · q quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top,
		canvasStyle.Render(m.canvas.String()),
		sideStyle.Render(side.String()),
	)
}
