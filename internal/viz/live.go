package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/tearsim/internal/control"
	"github.com/san-kum/tearsim/internal/dynamo"
	"github.com/san-kum/tearsim/internal/sim"
)

const (
	width           = 80
	height          = 24
	statsWidth      = 45
	historyCapacity = 300

	// canvas origin on screen, from canvasStyle padding
	canvasPadX = 2
	canvasPadY = 1
)

type TickMsg time.Time

// pulseGate forwards pointer requests to the simulation, dropping pulses while
// they are switched off so the pointer only tears.
type pulseGate struct {
	sim    *sim.Simulation
	pulses bool
}

func (g *pulseGate) InjectPulse(x, y, strength float64) {
	if g.pulses {
		g.sim.InjectPulse(x, y, strength)
	}
}

func (g *pulseGate) WeakenNear(x, y float64, aggressive bool) {
	g.sim.WeakenNear(x, y, aggressive)
}

// Model is the live terminal viewer. The simulation is advanced from
// wall-clock tick messages; mouse gestures go through a control.Pointer.
type Model struct {
	sim     *sim.Simulation
	pointer *control.Pointer
	gate    *pulseGate
	canvas  *Canvas
	fps     int
	running bool
	last    time.Time
	snap    *dynamo.Snapshot

	history  []float64
	spring   harmonica.Spring
	gauge    float64
	gaugeVel float64
	err      error
}

// NewModel wraps s in a viewer ticking at fps frames per second.
func NewModel(s *sim.Simulation, fps int) *Model {
	if fps <= 0 {
		fps = 60
	}
	m := &Model{
		sim:     s,
		pointer: control.NewPointer(s.Params()),
		gate:    &pulseGate{sim: s, pulses: true},
		canvas:  NewCanvas(width, height),
		fps:     fps,
		running: true,
		history: make([]float64, 0, historyCapacity),
		spring:  harmonica.NewSpring(harmonica.FPS(fps), 6.0, 0.6),
	}
	m.snap = s.Snapshot()
	m.draw()
	return m
}

func (m *Model) frame() time.Duration { return time.Second / time.Duration(m.fps) }

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.frame(), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m *Model) Init() tea.Cmd { return m.tick() }

// Update handles input events and steps the simulation.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "p":
			m.gate.pulses = !m.gate.pulses
		case "t":
			NextTheme()
		}
	case tea.MouseMsg:
		m.mouse(msg)
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case TickMsg:
		m.advance(time.Time(msg))
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) mouse(msg tea.MouseMsg) {
	x, y := m.toDomain(msg.X, msg.Y)
	switch {
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.pointer.Down(m.gate, x, y)
	case msg.Action == tea.MouseActionMotion:
		m.pointer.Move(m.gate, x, y)
	case msg.Action == tea.MouseActionRelease:
		m.pointer.Up()
	}
}

// advance feeds the wall time since the last tick to the simulation.
func (m *Model) advance(now time.Time) {
	elapsed := float64(m.frame()) / float64(time.Millisecond)
	if !m.last.IsZero() {
		elapsed = float64(now.Sub(m.last)) / float64(time.Millisecond)
	}
	m.last = now
	if !m.running {
		return
	}

	if m.sim.Tick(elapsed) > 0 {
		m.snap = m.sim.Snapshot()
		if !m.snap.IsValid() {
			m.err = dynamo.SimError{Step: m.snap.Steps, Time: m.snap.Time, Message: "non-finite particle position"}
			m.running = false
		}
		m.history = append(m.history, float64(m.snap.Constraints))
		if len(m.history) > historyCapacity {
			m.history = m.history[1:]
		}
	}

	target := 0.0
	if limit := m.sim.Params().BreakThreshold; limit > 1 {
		target = (m.snap.PeakStrain - 1) / (limit - 1)
	}
	m.gauge, m.gaugeVel = m.spring.Update(m.gauge, m.gaugeVel, target)
	m.draw()
}

func (m *Model) reset() {
	if err := m.sim.Reset(); err != nil {
		m.err = err
		return
	}
	m.pointer.Up()
	m.err = nil
	m.history = m.history[:0]
	m.gauge, m.gaugeVel = 0, 0
	m.snap = m.sim.Snapshot()
	m.draw()
}

func (m *Model) resize(w, h int) {
	cw := w - statsWidth - 2*canvasPadX - 2
	ch := h - 2*canvasPadY
	if cw < 20 || ch < 8 {
		return
	}
	m.canvas = NewCanvas(cw, ch)
	m.draw()
}

// toDomain maps a terminal cell to simulation coordinates.
func (m *Model) toDomain(col, row int) (float64, float64) {
	pw, ph := m.canvas.PixelSize()
	px := float64((col-canvasPadX)*2 + 1)
	py := float64((row-canvasPadY)*4 + 2)
	return px / float64(pw-1) * m.snap.Width, py / float64(ph-1) * m.snap.Height
}

// toPixel maps simulation coordinates to canvas sub-pixels.
func (m *Model) toPixel(x, y float64) (int, int) {
	pw, ph := m.canvas.PixelSize()
	return int(x/m.snap.Width*float64(pw-1) + 0.5), int(y/m.snap.Height*float64(ph-1) + 0.5)
}

func (m *Model) draw() {
	m.canvas.Clear()
	if m.snap == nil || m.snap.Width <= 0 || m.snap.Height <= 0 {
		return
	}
	for _, l := range m.snap.Links {
		x0, y0 := m.toPixel(m.snap.Positions[l.A].X, m.snap.Positions[l.A].Y)
		x1, y1 := m.toPixel(m.snap.Positions[l.B].X, m.snap.Positions[l.B].Y)
		m.canvas.DrawLine(x0, y0, x1, y1, l.Strain)
	}
}

// View renders the TUI interface.
func (m *Model) View() string {
	limit := m.sim.Params().BreakThreshold
	canvasView := canvasStyle.Render(m.canvas.Render(func(h float64) lipgloss.Color {
		return CurrentTheme.StrainColor(h, limit)
	}))

	st := m.snap.Stats
	var s strings.Builder
	s.WriteString(headerStyle().Render("TEARSIM") + "\n")

	status := "RUNNING"
	if !m.running {
		status = "PAUSED"
	}
	s.WriteString(statusStyle(m.running).Render(status))
	if !m.gate.pulses {
		s.WriteString(labelStyle.Render("  tear only"))
	}
	s.WriteString("\n\n")

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", st.Time))
	row("Steps", fmt.Sprintf("%d", st.Steps))
	row("Links", fmt.Sprintf("%d / %d", st.Constraints, m.snap.Initial))
	row("Torn", fmt.Sprintf("%d", st.Broken))
	row("Pulses", fmt.Sprintf("%d", st.Pulses))
	row("Strain", fmt.Sprintf("%.3f avg  %.3f peak", st.MeanStrain, st.PeakStrain))
	s.WriteString(labelStyle.Render("Stress") + Gauge(m.gauge, 24) + "\n")
	row("Theme", CurrentTheme.Name)

	if len(m.history) > 1 {
		chart := asciigraph.Plot(m.history, asciigraph.Height(5), asciigraph.Width(30), asciigraph.Caption("live links"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	if m.err != nil {
		s.WriteString(lipgloss.NewStyle().Foreground(CurrentTheme.Warning).Render(m.err.Error()) + "\n")
	}
	s.WriteString(helpStyle.Render("─────────────────────\nDrag:Tear  SP:Pause  R:Reset\nP:Pulses   T:Theme   Q:Quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
}

// RunLive opens the terminal viewer and blocks until it quits.
func RunLive(s *sim.Simulation, fps int) error {
	_, err := tea.NewProgram(NewModel(s, fps), tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
