// Package curveplot draws effect curves as SVG and traces SVG paths back
// into curve keys.
package curveplot

import (
	"bufio"
	"io"
	"math"
	"strconv"

	"github.com/adnsv/svg"
	xg "github.com/adnsv/xmlgo"

	"github.com/goopsie/vfxFileTools/pkg/avfx"
)

// ColorSamples is the number of swatches drawn for a colour curve.
const ColorSamples = 64

// Series is one named curve in a plot.
type Series struct {
	Name  string
	Curve *avfx.Curve
}

// Frame maps curve space to SVG user space. Time runs left to right and
// values bottom to top.
type Frame struct {
	Width, Height      float64 // plot area
	Margin             float64
	MinTime, MaxTime   float64
	MinValue, MaxValue float64
}

// Vertex returns the SVG position of p.
func (f Frame) Vertex(p avfx.Point) svg.Vertex {
	return svg.Vertex{
		X: f.Margin + (p.Time-f.MinTime)/(f.MaxTime-f.MinTime)*f.Width,
		Y: f.Margin + (1-(p.Value-f.MinValue)/(f.MaxValue-f.MinValue))*f.Height,
	}
}

// Point returns the curve position of v.
func (f Frame) Point(v svg.Vertex) avfx.Point {
	return avfx.Point{
		Time:  f.MinTime + (v.X-f.Margin)/f.Width*(f.MaxTime-f.MinTime),
		Value: f.MinValue + (1-(v.Y-f.Margin)/f.Height)*(f.MaxValue-f.MinValue),
	}
}

type config struct {
	width, height, margin float64
	stroke                []string
}

// Option configures Render.
type Option func(*config)

// WithSize sets the plot area size in user units.
func WithSize(width, height float64) Option {
	return func(c *config) {
		c.width, c.height = width, height
	}
}

// WithMargin sets the space around the plot area.
func WithMargin(margin float64) Option {
	return func(c *config) {
		c.margin = margin
	}
}

// WithStrokes sets the stroke colours cycled through for scalar curves.
func WithStrokes(colors ...string) Option {
	return func(c *config) {
		c.stroke = colors
	}
}

// NewFrame fits a frame around every curve in series.
func NewFrame(series []Series, opts ...Option) Frame {
	cfg := newConfig(opts)
	f := Frame{
		Width: cfg.width, Height: cfg.height, Margin: cfg.margin,
		MinTime: math.Inf(1), MaxTime: math.Inf(-1),
		MinValue: math.Inf(1), MaxValue: math.Inf(-1),
	}
	for _, s := range series {
		if s.Curve.IsColor() {
			for _, k := range s.Curve.Keys.Keys {
				f.MinTime = min(f.MinTime, float64(k.Time))
				f.MaxTime = max(f.MaxTime, float64(k.Time))
			}
			continue
		}
		for _, p := range s.Curve.Tessellate() {
			f.MinTime = min(f.MinTime, p.Time)
			f.MaxTime = max(f.MaxTime, p.Time)
			f.MinValue = min(f.MinValue, p.Value)
			f.MaxValue = max(f.MaxValue, p.Value)
		}
	}

	if math.IsInf(f.MinTime, 1) {
		f.MinTime, f.MaxTime = 0, 1
	}
	if math.IsInf(f.MinValue, 1) {
		f.MinValue, f.MaxValue = 0, 1
	}
	if f.MaxTime == f.MinTime {
		f.MaxTime = f.MinTime + 1
	}
	if f.MaxValue == f.MinValue {
		f.MinValue, f.MaxValue = f.MinValue-0.5, f.MaxValue+0.5
	}
	return f
}

func newConfig(opts []Option) config {
	cfg := config{
		width:  600,
		height: 200,
		margin: 10,
		stroke: []string{"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd"},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Render writes an SVG plot of series to w and returns the frame used.
// Scalar curves are drawn as paths named after their series; colour curves
// as a strip of swatches across the plot area.
func Render(w io.Writer, series []Series, opts ...Option) (Frame, error) {
	cfg := newConfig(opts)
	f := NewFrame(series, opts...)
	bw := bufio.NewWriter(w)
	xw := xg.NewWriter(bw)

	totalW, totalH := f.Width+2*f.Margin, f.Height+2*f.Margin
	xw.OTag("svg")
	xw.StringAttr("xmlns", "http://www.w3.org/2000/svg")
	xw.StringAttr("width", num(totalW))
	xw.StringAttr("height", num(totalH))
	xw.StringAttr("viewBox", "0 0 "+num(totalW)+" "+num(totalH))
	xw.String("\n")
	rect(xw, f.Margin, f.Margin, f.Width, f.Height)
	xw.StringAttr("fill", "none")
	xw.StringAttr("stroke", "#cccccc")
	xw.CTag()
	xw.String("\n")

	stroke := 0
	for _, s := range series {
		if s.Curve.IsColor() {
			writeSwatches(xw, s, f)
			continue
		}
		pd := PathData(s.Curve.Tessellate(), f)
		if len(pd.Vertices) == 0 {
			continue
		}
		xw.OTag("path")
		xw.OptStringAttr("id", s.Name)
		xw.StringAttr("fill", "none")
		xw.StringAttr("stroke", cfg.stroke[stroke%len(cfg.stroke)])
		xw.StringAttr("stroke-width", "1.5")
		xw.StringAttr("d", pd.String())
		xw.CTag()
		xw.String("\n")
		stroke++
	}

	xw.CTag()
	xw.String("\n")
	return f, bw.Flush()
}

// PathData converts curve points to an open polyline in the SVG space of f.
func PathData(pts []avfx.Point, f Frame) *svg.PathData {
	pd := &svg.PathData{}
	for i, p := range pts {
		if i == 0 {
			pd.MoveTo(f.Vertex(p))
			continue
		}
		pd.LineTo(f.Vertex(p))
	}
	return pd
}

func writeSwatches(xw *xg.Writer, s Series, f Frame) {
	keys := s.Curve.Keys.Keys
	if len(keys) == 0 {
		return
	}
	g := s.Curve.Gradient()
	step := f.Width / ColorSamples
	xw.OTag("g")
	xw.OptStringAttr("id", s.Name)
	xw.String("\n")
	for i := 0; i < ColorSamples; i++ {
		x := f.Margin + float64(i)*step
		t := f.Point(svg.Vertex{X: x + step/2, Y: f.Margin}).Time
		rect(xw, x, f.Margin+f.Height-step, step, step)
		xw.StringAttr("fill", g.Sample(t).Hex()[:7])
		xw.CTag()
		xw.String("\n")
	}
	xw.CTag()
	xw.String("\n")
}

// rect opens a rect element; the caller adds paint attributes and closes it.
func rect(xw *xg.Writer, x, y, width, height float64) {
	xw.OTag("rect")
	xw.StringAttr("x", num(x))
	xw.StringAttr("y", num(y))
	xw.StringAttr("width", num(width))
	xw.StringAttr("height", num(height))
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
