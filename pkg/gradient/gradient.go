// Package gradient provides RGBA colors and piecewise-linear color gradients
// sampled from AVFX color curves.
package gradient

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strings"
)

// Color represents an RGBA color with float32 components (0.0-1.0).
// Curve colors may exceed 1.0 for HDR effects; output formats clamp.
type Color struct {
	R, G, B, A float32
}

// ColorFromBytes reads a Color from 16 bytes (4 float32s in little-endian).
func ColorFromBytes(data []byte) Color {
	if len(data) < 16 {
		return Color{}
	}
	return Color{
		R: math.Float32frombits(binary.LittleEndian.Uint32(data[0:4])),
		G: math.Float32frombits(binary.LittleEndian.Uint32(data[4:8])),
		B: math.Float32frombits(binary.LittleEndian.Uint32(data[8:12])),
		A: math.Float32frombits(binary.LittleEndian.Uint32(data[12:16])),
	}
}

// ToBytes writes a Color to 16 bytes (4 float32s in little-endian).
func (c Color) ToBytes() []byte {
	data := make([]byte, 16)
	binary.LittleEndian.PutUint32(data[0:4], math.Float32bits(c.R))
	binary.LittleEndian.PutUint32(data[4:8], math.Float32bits(c.G))
	binary.LittleEndian.PutUint32(data[8:12], math.Float32bits(c.B))
	binary.LittleEndian.PutUint32(data[12:16], math.Float32bits(c.A))
	return data
}

func (c Color) String() string {
	return fmt.Sprintf("RGBA(%.3f, %.3f, %.3f, %.3f)", c.R, c.G, c.B, c.A)
}

// Hex returns the color as a hex string (#RRGGBBAA).
func (c Color) Hex() string {
	r := uint8(clamp(c.R, 0, 1) * 255)
	g := uint8(clamp(c.G, 0, 1) * 255)
	b := uint8(clamp(c.B, 0, 1) * 255)
	a := uint8(clamp(c.A, 0, 1) * 255)
	return fmt.Sprintf("#%02X%02X%02X%02X", r, g, b, a)
}

// CSS returns the color as a CSS rgba() string.
func (c Color) CSS() string {
	r := uint8(clamp(c.R, 0, 1) * 255)
	g := uint8(clamp(c.G, 0, 1) * 255)
	b := uint8(clamp(c.B, 0, 1) * 255)
	a := clamp(c.A, 0, 1)
	return fmt.Sprintf("rgba(%d, %d, %d, %.3f)", r, g, b, a)
}

// Lerp interpolates componentwise between c and d.
func (c Color) Lerp(d Color, t float32) Color {
	return Color{
		R: c.R + (d.R-c.R)*t,
		G: c.G + (d.G-c.G)*t,
		B: c.B + (d.B-c.B)*t,
		A: c.A + (d.A-c.A)*t,
	}
}

func clamp(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Stop is a color at a position along the gradient.
type Stop struct {
	Pos   float64
	Color Color
}

// Gradient is a piecewise-linear sequence of stops.
type Gradient struct {
	Stops []Stop
}

// New builds a gradient from stops, sorted by position.
func New(stops ...Stop) *Gradient {
	s := append([]Stop(nil), stops...)
	sort.SliceStable(s, func(i, j int) bool { return s[i].Pos < s[j].Pos })
	return &Gradient{Stops: s}
}

// Sample returns the color at pos. Positions outside the stop range take the
// nearest end color; an empty gradient is transparent black.
func (g *Gradient) Sample(pos float64) Color {
	n := len(g.Stops)
	if n == 0 {
		return Color{}
	}
	if pos <= g.Stops[0].Pos {
		return g.Stops[0].Color
	}
	if pos >= g.Stops[n-1].Pos {
		return g.Stops[n-1].Color
	}
	i := sort.Search(n, func(i int) bool { return g.Stops[i].Pos > pos })
	a, b := g.Stops[i-1], g.Stops[i]
	if b.Pos == a.Pos {
		return b.Color
	}
	return a.Color.Lerp(b.Color, float32((pos-a.Pos)/(b.Pos-a.Pos)))
}

// CSS renders the gradient as a CSS linear-gradient() with stop positions
// normalized to percentages of the stop range.
func (g *Gradient) CSS() string {
	n := len(g.Stops)
	switch n {
	case 0:
		return "none"
	case 1:
		c := g.Stops[0].Color.CSS()
		return fmt.Sprintf("linear-gradient(to right, %s, %s)", c, c)
	}

	first, span := g.Stops[0].Pos, g.Stops[n-1].Pos-g.Stops[0].Pos
	parts := make([]string, n)
	for i, s := range g.Stops {
		pct := 0.0
		if span > 0 {
			pct = (s.Pos - first) / span * 100
		}
		parts[i] = fmt.Sprintf("%s %.1f%%", s.Color.CSS(), pct)
	}
	return "linear-gradient(to right, " + strings.Join(parts, ", ") + ")"
}

// ToCSS generates CSS custom properties, one per stop, prefixed with name.
func (g *Gradient) ToCSS(name string) string {
	cssName := strings.ToLower(strings.ReplaceAll(name, "_", "-"))

	var sb strings.Builder
	sb.WriteString(":root {\n")
	for i, s := range g.Stops {
		varName := fmt.Sprintf("--curve-%s-%d", cssName, i)
		sb.WriteString(fmt.Sprintf("  %-40s %s;\n", varName+":", s.Color.CSS()))
	}
	sb.WriteString(fmt.Sprintf("  %-40s %s;\n", fmt.Sprintf("--curve-%s:", cssName), g.CSS()))
	sb.WriteString("}\n")
	return sb.String()
}
