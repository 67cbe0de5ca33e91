package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/tearsim/internal/dynamo"
)

type SVGOptions struct {
	Scale      float64 // output pixels per domain unit
	MaxStrain  float64 // strain drawn in the hot colour
	Background string
	ShowPinned bool
}

func DefaultSVGOptions() SVGOptions {
	return SVGOptions{Scale: 1, MaxStrain: 1.8, Background: "#0a0a0a", ShowPinned: true}
}

// SnapshotToSVG draws every live link of a snapshot, coloured from cool at
// rest length to hot at MaxStrain.
func SnapshotToSVG(s *dynamo.Snapshot, opts SVGOptions) string {
	if s == nil {
		return ""
	}
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	if opts.MaxStrain <= 1 {
		opts.MaxStrain = 1.8
	}

	width := s.Width * opts.Scale
	height := s.Height * opts.Scale

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
<g stroke-width="%.2f" stroke-linecap="round">
`, width, height, width, height, opts.Background, math.Max(opts.Scale, 0.5)))

	for _, l := range s.Links {
		if l.A >= len(s.Positions) || l.B >= len(s.Positions) {
			continue
		}
		a, b := s.Positions[l.A], s.Positions[l.B]
		opacity := 1.0
		if l.Shear {
			opacity = 0.35
		}
		sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-opacity="%.2f"/>
`, a.X*opts.Scale, a.Y*opts.Scale, b.X*opts.Scale, b.Y*opts.Scale, StrainColor(l.Strain, opts.MaxStrain), opacity))
	}
	sb.WriteString("</g>\n")

	if opts.ShowPinned {
		sb.WriteString(`<g fill="#888888">` + "\n")
		for i, p := range s.Positions {
			if i < len(s.Pinned) && s.Pinned[i] {
				sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f"/>
`, p.X*opts.Scale, p.Y*opts.Scale, 1.5*opts.Scale))
			}
		}
		sb.WriteString("</g>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// StrainColor maps a strain in [1, maxStrain] onto a blue to red hex colour.
func StrainColor(strain, maxStrain float64) string {
	t := 0.0
	if maxStrain > 1 {
		t = (strain - 1) / (maxStrain - 1)
	}
	t = math.Min(math.Max(t, 0), 1)
	r := uint8(40 + t*215)
	g := uint8(160 - t*120)
	b := uint8(255 - t*215)
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// SeriesToSVG plots a single stats column as a polyline.
func SeriesToSVG(values []float64, width, height int, strokeColor string) string {
	if len(values) < 2 {
		return ""
	}

	minY, maxY := values[0], values[0]
	for _, v := range values {
		minY = math.Min(minY, v)
		maxY = math.Max(maxY, v)
	}

	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY
	stepX := float64(width) / float64(len(values)-1)

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i, v := range values {
		x := float64(i) * stepX
		y := float64(height) - (v-minY)/rangeY*float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
