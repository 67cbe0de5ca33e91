package control

import "github.com/san-kum/tearsim/internal/dynamo"

// Target receives the requests a pointer produces.
type Target interface {
	InjectPulse(x, y, strength float64)
	WeakenNear(x, y float64, aggressive bool)
}

// Pointer tracks a single press-drag-release gesture.
type Pointer struct {
	Strength     float64
	DragStrength float64 // fraction of Strength used while dragging
	pressed      bool
	x, y         float64
}

func NewPointer(p dynamo.Params) *Pointer {
	return &Pointer{Strength: p.PulseStrength, DragStrength: p.DragStrength}
}

// Down presses at (x, y): a full strength pulse and an aggressive weaken.
func (p *Pointer) Down(t Target, x, y float64) {
	p.pressed = true
	p.x, p.y = x, y
	t.InjectPulse(x, y, p.Strength)
	t.WeakenNear(x, y, true)
}

// Move drags to (x, y). It does nothing unless the pointer is pressed.
func (p *Pointer) Move(t Target, x, y float64) {
	if !p.pressed {
		return
	}
	p.x, p.y = x, y
	t.InjectPulse(x, y, p.Strength*p.DragStrength)
	t.WeakenNear(x, y, false)
}

func (p *Pointer) Up() { p.pressed = false }

func (p *Pointer) Pressed() bool { return p.pressed }

// Position is the last pressed or dragged location.
func (p *Pointer) Position() (float64, float64) { return p.x, p.y }

// Scale maps normalized [0,1] coordinates onto a width x height domain.
func Scale(nx, ny, width, height float64) (float64, float64) {
	return nx * width, ny * height
}
