package gradient

import (
	"strings"
	"testing"
)

func TestColorFromBytes(t *testing.T) {
	// 1.0 in IEEE 754 = 0x3F800000
	data := make([]byte, 16)
	for i := 0; i < 16; i += 4 {
		data[i+2], data[i+3] = 0x80, 0x3F
	}

	color := ColorFromBytes(data)

	if color.R != 1.0 || color.G != 1.0 || color.B != 1.0 || color.A != 1.0 {
		t.Errorf("Expected RGBA(1.0, 1.0, 1.0, 1.0), got %v", color)
	}
}

func TestColorToBytes(t *testing.T) {
	color := Color{R: 1.0, G: 0.5, B: 0.0, A: 1.0}
	data := color.ToBytes()

	if len(data) != 16 {
		t.Errorf("Expected 16 bytes, got %d", len(data))
	}

	parsed := ColorFromBytes(data)
	if parsed != color {
		t.Errorf("Round-trip failed: original=%v, parsed=%v", color, parsed)
	}
}

func TestColorHex(t *testing.T) {
	tests := []struct {
		color    Color
		expected string
	}{
		{Color{1.0, 1.0, 1.0, 1.0}, "#FFFFFFFF"},
		{Color{0.0, 0.0, 0.0, 1.0}, "#000000FF"},
		{Color{2.0, 0.0, -1.0, 1.0}, "#FF0000FF"},
		{Color{0.5, 0.5, 0.5, 0.5}, "#7F7F7F7F"},
	}

	for _, tt := range tests {
		hex := tt.color.Hex()
		if hex != tt.expected {
			t.Errorf("Color %v: expected %s, got %s", tt.color, tt.expected, hex)
		}
	}
}

func TestColorCSS(t *testing.T) {
	color := Color{R: 1.0, G: 0.5, B: 0.25, A: 0.8}
	css := color.CSS()

	expected := "rgba(255, 127, 63, 0.800)"
	if css != expected {
		t.Errorf("Expected %s, got %s", expected, css)
	}
}

func TestSample(t *testing.T) {
	g := New(
		Stop{Pos: 10, Color: Color{0, 0, 1, 1}},
		Stop{Pos: 0, Color: Color{1, 0, 0, 1}},
	)

	tests := []struct {
		pos  float64
		want Color
	}{
		{-5, Color{1, 0, 0, 1}},
		{0, Color{1, 0, 0, 1}},
		{5, Color{0.5, 0, 0.5, 1}},
		{10, Color{0, 0, 1, 1}},
		{50, Color{0, 0, 1, 1}},
	}
	for _, tt := range tests {
		if got := g.Sample(tt.pos); got != tt.want {
			t.Errorf("Sample(%v) = %v, want %v", tt.pos, got, tt.want)
		}
	}

	if got := (&Gradient{}).Sample(3); got != (Color{}) {
		t.Errorf("empty gradient sampled %v", got)
	}
}

func TestGradientCSS(t *testing.T) {
	g := New(
		Stop{Pos: 0, Color: Color{1, 0, 0, 1}},
		Stop{Pos: 30, Color: Color{0, 0, 1, 1}},
	)

	want := "linear-gradient(to right, rgba(255, 0, 0, 1.000) 0.0%, rgba(0, 0, 255, 1.000) 100.0%)"
	if css := g.CSS(); css != want {
		t.Errorf("Expected %s, got %s", want, css)
	}

	vars := g.ToCSS("Ptcl_Col")
	if !strings.Contains(vars, "--curve-ptcl-col-1:") {
		t.Errorf("missing stop variable in %q", vars)
	}
	if !strings.HasPrefix(vars, ":root {\n") || !strings.HasSuffix(vars, "}\n") {
		t.Errorf("unexpected block framing: %q", vars)
	}
}
