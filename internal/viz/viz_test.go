package viz

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/tearsim/internal/dynamo"
	"github.com/san-kum/tearsim/internal/sim"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	p := dynamo.DefaultParams()
	p.Cols, p.Rows = 12, 8
	p.Width, p.Height, p.Padding = 240, 160, 10
	s, err := sim.New(p, 1)
	if err != nil {
		t.Fatalf("sim.New: %v", err)
	}
	return NewModel(s, 60)
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestCanvasSetAndClear(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.SetHeat(3, 3, 1.4)

	if c.Grid[0][0] != blank|0x1 {
		t.Errorf("expected dot 1 set, got %U", c.Grid[0][0])
	}
	if c.Grid[0][1] != blank|0x80 || c.Heat[0][1] != 1.4 {
		t.Errorf("expected dot 8 with heat, got %U heat %.2f", c.Grid[0][1], c.Heat[0][1])
	}

	c.Set(-1, 0)
	c.Set(4, 0)

	c.Clear()
	if strings.TrimRight(c.String(), "\n") != "⠀⠀" {
		t.Errorf("canvas not cleared: %q", c.String())
	}
}

func TestCanvasDrawLine(t *testing.T) {
	c := NewCanvas(4, 1)
	c.DrawLine(0, 0, 7, 0, 1.2)

	for col := 0; col < 4; col++ {
		if c.Grid[0][col] != blank|0x1|0x8 {
			t.Errorf("cell %d: expected top row dots, got %U", col, c.Grid[0][col])
		}
		if c.Heat[0][col] != 1.2 {
			t.Errorf("cell %d: heat %.2f", col, c.Heat[0][col])
		}
	}
}

func TestBlend(t *testing.T) {
	tests := []struct {
		frac     float64
		expected lipgloss.Color
	}{
		{0, "#000000"},
		{1, "#ff8040"},
		{0.5, "#804020"},
		{-3, "#000000"},
		{7, "#ff8040"},
	}
	for _, tt := range tests {
		if got := Blend("#000000", "#ff8040", tt.frac); got != tt.expected {
			t.Errorf("Blend(%.1f) = %s, want %s", tt.frac, got, tt.expected)
		}
	}
}

func TestNextThemeCycles(t *testing.T) {
	defer SetTheme(CurrentTheme.Name)

	SetTheme(Themes[0].Name)
	seen := map[string]bool{}
	for range Themes {
		seen[CurrentTheme.Name] = true
		NextTheme()
	}
	if len(seen) != len(Themes) || CurrentTheme.Name != Themes[0].Name {
		t.Errorf("theme cycle visited %v, ended on %s", seen, CurrentTheme.Name)
	}
}

func TestModelPauseToggle(t *testing.T) {
	m := newTestModel(t)
	start := time.Unix(0, 0)

	m.Update(TickMsg(start))
	m.Update(TickMsg(start.Add(50 * time.Millisecond)))
	steps := m.sim.Steps()
	if steps == 0 {
		t.Fatal("running model did not step")
	}

	m.Update(key(" "))
	m.Update(TickMsg(start.Add(100 * time.Millisecond)))
	if m.sim.Steps() != steps {
		t.Errorf("paused model stepped")
	}
}

func TestModelMouseDrag(t *testing.T) {
	m := newTestModel(t)

	m.Update(tea.MouseMsg{X: 20, Y: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if m.sim.Pending() != 2 {
		t.Fatalf("press should queue a pulse and a weaken, got %d", m.sim.Pending())
	}

	m.Update(tea.MouseMsg{X: 22, Y: 10, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	if m.sim.Pending() != 4 {
		t.Fatalf("drag should queue two more requests, got %d", m.sim.Pending())
	}

	m.Update(tea.MouseMsg{X: 22, Y: 10, Action: tea.MouseActionRelease})
	m.Update(tea.MouseMsg{X: 30, Y: 12, Action: tea.MouseActionMotion})
	if m.sim.Pending() != 4 {
		t.Errorf("motion after release queued requests")
	}
}

func TestModelPulseToggle(t *testing.T) {
	m := newTestModel(t)
	m.Update(key("p"))

	m.Update(tea.MouseMsg{X: 20, Y: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if m.sim.Pending() != 1 {
		t.Errorf("tear-only press should queue just the weaken, got %d", m.sim.Pending())
	}
	if !strings.Contains(m.View(), "tear only") {
		t.Errorf("view does not show tear-only mode")
	}
}

func TestModelReset(t *testing.T) {
	m := newTestModel(t)
	start := time.Unix(0, 0)
	m.Update(tea.MouseMsg{X: 20, Y: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m.Update(TickMsg(start))
	m.Update(TickMsg(start.Add(100 * time.Millisecond)))

	m.Update(key("r"))

	if m.snap.Constraints != m.snap.Initial || m.snap.Broken != 0 {
		t.Errorf("reset left %d/%d links, %d broken", m.snap.Constraints, m.snap.Initial, m.snap.Broken)
	}
	if len(m.history) != 0 || m.pointer.Pressed() {
		t.Errorf("reset kept viewer state")
	}
}

func TestModelQuit(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("expected tea.QuitMsg")
	}
}

func TestDomainMappingRoundTrip(t *testing.T) {
	m := newTestModel(t)
	x, y := m.toDomain(canvasPadX+10, canvasPadY+5)
	px, py := m.toPixel(x, y)
	if px/2 != 10 || py/4 != 5 {
		t.Errorf("cell (10,5) mapped to pixel (%d,%d)", px, py)
	}
}
