package gui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/tearsim/internal/control"
	"github.com/san-kum/tearsim/internal/dynamo"
	"github.com/san-kum/tearsim/internal/sim"
)

// Theme Colors (Monochrome Hyper-Minimalist)
var (
	ColBg      = rl.NewColor(10, 10, 10, 255)
	ColAccent  = rl.NewColor(180, 180, 180, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
	ColPinned  = rl.NewColor(200, 200, 120, 255)
)

const (
	screenW    = 1280
	screenH    = 720
	maxHistory = 400
)

// App is the windowed viewer. It owns no physics; every frame it hands the
// frame time to the simulation and draws the latest snapshot.
type App struct {
	Sim       *sim.Simulation
	Pointer   *control.Pointer
	Running   bool
	Pulses    bool
	Palette   int
	Font      rl.Font
	Snap      *dynamo.Snapshot
	Telemetry []float64 // live constraint count per frame
	Err       error

	view viewport
}

func initWindow(fps int) {
	rl.InitWindow(screenW, screenH, "tearsim")
	rl.SetTargetFPS(int32(fps))
	rl.SetExitKey(0)
}

// loadFont loads Liberation Mono if present and falls back to raylib's font.
func loadFont() rl.Font {
	font := rl.LoadFontEx("/usr/share/fonts/liberation/LiberationMono-Regular.ttf", 32, nil, 0)
	if font.Texture.ID == 0 {
		return rl.GetFontDefault()
	}
	rl.SetTextureFilter(font.Texture, rl.FilterBilinear)
	return font
}

func NewApp(s *sim.Simulation) *App {
	a := &App{
		Sim:       s,
		Pointer:   control.NewPointer(s.Params()),
		Running:   true,
		Pulses:    true,
		Font:      loadFont(),
		Telemetry: make([]float64, 0, maxHistory),
	}
	a.Snap = s.Snapshot()
	a.view = fit(a.Snap.Width, a.Snap.Height, screenW, screenH, 60)
	return a
}

// Run opens the window and blocks until it is closed.
func Run(s *sim.Simulation, fps int) {
	if fps <= 0 {
		fps = 60
	}
	initWindow(fps)
	defer rl.CloseWindow()
	NewApp(s).RunLoop()
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() {
		if !a.Update() {
			return
		}
		a.Draw()
	}
}

// InjectPulse and WeakenNear make the app the pointer's target so pulses can
// be switched off without touching the pointer.
func (a *App) InjectPulse(x, y, strength float64) {
	if a.Pulses {
		a.Sim.InjectPulse(x, y, strength)
	}
}

func (a *App) WeakenNear(x, y float64, aggressive bool) {
	a.Sim.WeakenNear(x, y, aggressive)
}

// Update handles input and advances the simulation. It returns false on quit.
func (a *App) Update() bool {
	switch {
	case rl.IsKeyPressed(rl.KeyQ):
		return false
	case rl.IsKeyPressed(rl.KeySpace):
		a.Running = !a.Running
	case rl.IsKeyPressed(rl.KeyR):
		a.reset()
	case rl.IsKeyPressed(rl.KeyP):
		a.Pulses = !a.Pulses
	case rl.IsKeyPressed(rl.KeyT):
		a.Palette = (a.Palette + 1) % len(palettes)
	}

	m := rl.GetMousePosition()
	x, y := a.view.toDomain(m.X, m.Y)
	switch {
	case rl.IsMouseButtonPressed(rl.MouseLeftButton):
		a.Pointer.Down(a, x, y)
	case rl.IsMouseButtonDown(rl.MouseLeftButton):
		a.Pointer.Move(a, x, y)
	case rl.IsMouseButtonReleased(rl.MouseLeftButton):
		a.Pointer.Up()
	}

	if !a.Running {
		return true
	}
	if a.Sim.Tick(float64(rl.GetFrameTime())*1000) > 0 {
		a.Snap = a.Sim.Snapshot()
		if !a.Snap.IsValid() {
			a.Err = dynamo.SimError{Step: a.Snap.Steps, Time: a.Snap.Time, Message: "non-finite particle position"}
			a.Running = false
		}
		a.Telemetry = append(a.Telemetry, float64(a.Snap.Constraints))
		if len(a.Telemetry) > maxHistory {
			a.Telemetry = a.Telemetry[1:]
		}
	}
	return true
}

func (a *App) reset() {
	if err := a.Sim.Reset(); err != nil {
		a.Err = err
		return
	}
	a.Err = nil
	a.Pointer.Up()
	a.Telemetry = a.Telemetry[:0]
	a.Snap = a.Sim.Snapshot()
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)
	a.drawLattice()
	a.DrawHUD()
	rl.EndDrawing()
}

func (a *App) DrawHUD() {
	a.drawText("tearsim", 30, 20, 24, ColSelect)

	st := a.Snap.Stats
	a.drawText(fmt.Sprintf("t %.2fs   links %d/%d   torn %d   pulses %d   peak %.3f",
		st.Time, st.Constraints, a.Snap.Initial, st.Broken, st.Pulses, st.PeakStrain), 160, 26, 16, ColText)

	status, col := "RUNNING", ColSelect
	if !a.Running {
		status, col = "PAUSED", ColTextDim
	}
	a.drawText(status, 1150, 20, 16, col)
	if !a.Pulses {
		a.drawText("TEAR ONLY", 1040, 20, 16, ColAccent)
	}
	if a.Err != nil {
		a.drawText(a.Err.Error(), 30, 620, 16, rl.Red)
	}

	a.DrawTelemetry()
	a.drawText("[DRAG] TEAR  [SPACE] PAUSE  [R] RESET  [P] PULSES  [T] THEME  [Q] QUIT", 640, 690, 14, ColTextDim)
	a.drawText(fmt.Sprintf("%d FPS", int32(rl.GetFPS())), 30, 690, 14, ColTextDim)
}

func (a *App) drawText(text string, x, y int, size int, color rl.Color) {
	rl.DrawTextEx(a.Font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, color)
}

func (a *App) DrawTelemetry() {
	if len(a.Telemetry) < 2 {
		return
	}

	rectX, rectY := 30, 640
	width, height := 400, 40

	minVal, maxVal := a.Telemetry[0], a.Telemetry[0]
	for _, v := range a.Telemetry {
		minVal = min(minVal, v)
		maxVal = max(maxVal, v)
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	points := make([]rl.Vector2, len(a.Telemetry))
	for i, val := range a.Telemetry {
		px := float32(rectX) + (float32(i)/float32(len(a.Telemetry)))*float32(width)
		norm := (val - minVal) / (maxVal - minVal)
		py := float32(rectY+height) - float32(norm)*float32(height)
		points[i] = rl.NewVector2(px, py)
	}

	rl.DrawLineStrip(points, ColAccent)
	a.drawText(fmt.Sprintf("links %d", int(a.Telemetry[len(a.Telemetry)-1])), rectX+width+10, rectY+height-10, 14, ColText)
}
