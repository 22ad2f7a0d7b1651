package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/heatmc/internal/config"
	"github.com/san-kum/heatmc/internal/grid"
	"github.com/san-kum/heatmc/internal/physics"
	"github.com/san-kum/heatmc/internal/rng"
)

const (
	historyCapacity = 600
	stepsPerFrame   = 2
)

type TickMsg time.Time

// Model drives a simulation interactively: it owns the walk state and
// advances it a few steps per frame, so pausing and resetting need no
// coordination with a background run.
type Model struct {
	cfg    *config.Config
	g      *grid.Grid
	walker *physics.Walker
	src    *rng.Source

	packets []struct{ x, y int }
	acc     *grid.Field

	step       int
	totalSteps int
	injected   int
	convected  int
	lost       int

	running     bool
	tempHistory []float64
}

func NewModel(cfg *config.Config) Model {
	m := Model{
		cfg:        cfg,
		totalSteps: cfg.Steps(),
		running:    true,
	}
	m.init()
	return m
}

// init builds fresh walk state; also the reset path.
func (m *Model) init() {
	m.g = grid.New(m.cfg)
	m.walker = physics.NewWalker(m.cfg, m.g)
	m.src = rng.New(m.cfg.Seed)
	m.acc = grid.NewField(m.g.Nx, m.g.Ny)
	m.packets = m.packets[:0]
	m.step = 0
	m.injected = 0
	m.convected = 0
	m.lost = 0
	m.tempHistory = m.tempHistory[:0]

	n := m.cfg.NPackets / 10
	if n == 0 && m.cfg.NPackets > 0 {
		n = 1
	}
	for i := 0; i < n; i++ {
		x, y := m.g.SampleHotspot(m.src)
		m.packets = append(m.packets, struct{ x, y int }{x, y})
	}
	m.injected = n
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
			m.init()
		}
	case TickMsg:
		if m.running && m.step < m.totalSteps {
			for i := 0; i < stepsPerFrame && m.step < m.totalSteps; i++ {
				m.advance()
			}
		}
		return m, tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

// advance performs one simulation step: inject, walk, deposit.
func (m *Model) advance() {
	for i := 0; i < m.cfg.Q; i++ {
		x, y := m.g.SampleHotspot(m.src)
		m.packets = append(m.packets, struct{ x, y int }{x, y})
	}
	m.injected += m.cfg.Q

	live := m.packets[:0]
	for _, p := range m.packets {
		nx, ny, absorbed := m.walker.Step(p.x, p.y, m.src)
		if absorbed {
			if m.g.InBounds(nx, ny) {
				m.convected++
			} else {
				m.lost++
			}
			continue
		}
		live = append(live, struct{ x, y int }{nx, ny})
	}
	m.packets = live

	inSpot := 0
	for _, p := range m.packets {
		m.acc.Add(p.x, p.y, 1)
		if m.g.InHotspot(p.x, p.y) {
			inSpot++
		}
	}

	temp := float64(inSpot) / float64(m.g.HotspotCells()) * m.cfg.CorrectionFactor()
	m.tempHistory = append(m.tempHistory, temp)
	if len(m.tempHistory) > historyCapacity {
		m.tempHistory = m.tempHistory[1:]
	}

	m.step++
}

func (m Model) View() string {
	var field *grid.Field
	if m.injected > 0 {
		field = m.acc.Scale(1 / float64(m.injected))
	} else {
		field = m.acc
	}

	left := fieldStyle.Render(RenderField(field))
	right := statsStyle.Render(m.statsView())

	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	help := helpStyle.Render("space pause · r reset · q quit")
	return body + "\n" + help + "\n"
}

func (m Model) statsView() string {
	status := StatusRunning.Render("running")
	if !m.running {
		status = StatusPaused.Render("paused")
	}
	if m.step >= m.totalSteps {
		status = StatusPaused.Render("done")
	}

	material := config.MaterialName(m.cfg.Alpha)
	rows := []string{
		headerStyle.Render("heatmc · " + material),
		row("status", status),
		row("step", fmt.Sprintf("%d / %d", m.step, m.totalSteps)),
		row("time", fmt.Sprintf("%.3f s", float64(m.step)*m.cfg.Dt)),
		row("packets", fmt.Sprintf("%d", len(m.packets))),
		row("injected", fmt.Sprintf("%d", m.injected)),
		row("convected", fmt.Sprintf("%d", m.convected)),
		row("boundary", fmt.Sprintf("%d", m.lost)),
		"",
		ProgressBar(float64(m.step)/float64(m.totalSteps), 30),
	}

	if len(m.tempHistory) > 1 {
		chart := asciigraph.Plot(m.tempHistory,
			asciigraph.Height(4), asciigraph.Width(28), asciigraph.Caption("hotspot temp"))
		rows = append(rows, "", chart)
	}

	return strings.Join(rows, "\n")
}

func row(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value)
}

// Run starts the live view and blocks until the user quits.
func Run(cfg *config.Config) error {
	p := tea.NewProgram(NewModel(cfg))
	_, err := p.Run()
	return err
}
