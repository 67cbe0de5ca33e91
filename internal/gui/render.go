package gui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// viewport maps the simulation domain onto a screen rectangle, preserving
// aspect ratio.
type viewport struct {
	scale  float32
	ox, oy float32
}

func fit(w, h float64, screenW, screenH, margin int) viewport {
	sx := float32(screenW-2*margin) / float32(w)
	sy := float32(screenH-2*margin) / float32(h)
	s := min(sx, sy)
	return viewport{
		scale: s,
		ox:    (float32(screenW) - s*float32(w)) / 2,
		oy:    (float32(screenH) - s*float32(h)) / 2,
	}
}

func (v viewport) toScreen(x, y float64) rl.Vector2 {
	return rl.NewVector2(v.ox+float32(x)*v.scale, v.oy+float32(y)*v.scale)
}

func (v viewport) toDomain(sx, sy float32) (float64, float64) {
	return float64((sx - v.ox) / v.scale), float64((sy - v.oy) / v.scale)
}

// palettes are (relaxed, strained) colour pairs cycled with T.
var palettes = [][2]rl.Color{
	{rl.NewColor(40, 160, 255, 255), rl.NewColor(255, 40, 40, 255)},
	{rl.NewColor(0, 255, 255, 255), rl.NewColor(255, 0, 255, 255)},
	{rl.NewColor(0, 85, 0, 255), rl.NewColor(136, 255, 136, 255)},
	{rl.NewColor(120, 120, 120, 255), rl.NewColor(255, 255, 255, 255)},
}

// strainColor blends from relaxed to strained as strain goes from 1 to limit.
func strainColor(strain, limit float64, relaxed, strained rl.Color) rl.Color {
	t := float32(0)
	if limit > 1 {
		t = float32((strain - 1) / (limit - 1))
	}
	t = max(0, min(1, t))
	lerp := func(a, b uint8) uint8 { return uint8(float32(a) + t*(float32(b)-float32(a))) }
	return rl.NewColor(lerp(relaxed.R, strained.R), lerp(relaxed.G, strained.G), lerp(relaxed.B, strained.B), 255)
}

func (a *App) drawLattice() {
	s := a.Snap
	limit := a.Sim.Params().BreakThreshold
	for _, l := range s.Links {
		p0 := a.view.toScreen(s.Positions[l.A].X, s.Positions[l.A].Y)
		p1 := a.view.toScreen(s.Positions[l.B].X, s.Positions[l.B].Y)
		pal := palettes[a.Palette%len(palettes)]
		col := strainColor(l.Strain, limit, pal[0], pal[1])
		if l.Shear {
			col.A = 110
		}
		rl.DrawLineV(p0, p1, col)
	}
	for i, p := range s.Positions {
		if s.Pinned[i] {
			rl.DrawCircleV(a.view.toScreen(p.X, p.Y), 1.5, ColPinned)
		}
	}

	if a.Pointer.Pressed() {
		x, y := a.Pointer.Position()
		r := float32(a.Sim.Params().WeakenRadius) * a.view.scale
		c := a.view.toScreen(x, y)
		rl.DrawCircleLines(int32(c.X), int32(c.Y), r, rl.NewColor(255, 255, 255, 80))
	}
}
