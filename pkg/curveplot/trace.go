package curveplot

import (
	"errors"
	"fmt"
	"math"

	"github.com/adnsv/svg"

	"github.com/goopsie/vfxFileTools/pkg/avfx"
)

// Line is a traced polyline in SVG user space.
type Line struct {
	ID       string
	Vertices []svg.Vertex
}

// Trace reads every path and polygon of an SVG document as polylines.
// Element and group transforms are applied; curve segments contribute their
// end point.
func Trace(data []byte) ([]Line, error) {
	sg, err := svg.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse svg: %w", err)
	}
	// svg.Parse drops transform attributes, so they are read separately.
	xforms, err := readTransforms(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse svg: %w", err)
	}
	var lines []Line
	if err := traceGroup(&sg.Group, svg.UnitTransform(), xforms, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

func traceGroup(g *svg.Group, xform *svg.Transform, node transformNode, out *[]Line) error {
	xform = node.apply(xform)
	for i, it := range g.Items {
		kid := node.kid(i)
		switch v := it.(type) {
		case *svg.Group:
			if err := traceGroup(v, xform, kid, out); err != nil {
				return err
			}
		case *svg.Path:
			if err := tracePath(v, kid.apply(xform), out); err != nil {
				return err
			}
		case *svg.Polygon:
			pp, err := svg.ParsePoints(v.Points)
			if err != nil {
				return err
			}
			if len(pp) < 2 {
				continue
			}
			pxform := kid.apply(xform)
			line := Line{ID: v.ID()}
			for _, p := range append(pp, pp[0]) {
				line.Vertices = append(line.Vertices, abs(pxform, p))
			}
			*out = append(*out, line)
		}
	}
	return nil
}

func tracePath(p *svg.Path, xform *svg.Transform, out *[]Line) error {
	pp, err := svg.ParsePath(p.D)
	if err != nil {
		return err
	}

	var line *Line
	flush := func() {
		if line != nil && len(line.Vertices) > 0 {
			*out = append(*out, *line)
		}
		line = nil
	}

	vv := pp.Vertices
	for _, cmd := range pp.Commands {
		switch cmd {
		case svg.PathMoveTo:
			if len(vv) < 1 {
				return errors.New("invalid # of vertices in path")
			}
			flush()
			line = &Line{ID: p.ID(), Vertices: []svg.Vertex{abs(xform, vv[0])}}
			vv = vv[1:]

		case svg.PathLineTo:
			if len(vv) < 1 || line == nil {
				return errors.New("invalid # of vertices in path")
			}
			line.Vertices = append(line.Vertices, abs(xform, vv[0]))
			vv = vv[1:]

		case svg.PathCurveTo:
			if len(vv) < 3 || line == nil {
				return errors.New("invalid # of vertices in path")
			}
			line.Vertices = append(line.Vertices, abs(xform, vv[2]))
			vv = vv[3:]

		case svg.PathClose:
			if line != nil {
				line.Vertices = append(line.Vertices, line.Vertices[0])
			}

		default:
			return errors.New("unsupported path command")
		}
	}
	flush()
	return nil
}

func abs(xform *svg.Transform, v svg.Vertex) svg.Vertex {
	x, y := xform.CalcAbs(v.X, v.Y)
	return svg.Vertex{X: x, Y: y}
}

// Keys converts a traced line to linear keys in the curve space of f.
// Times are rounded to whole frames; vertices that do not move forward in
// time are dropped.
func Keys(line Line, f Frame) []avfx.Key {
	var keys []avfx.Key
	for _, v := range line.Vertices {
		p := f.Point(v)
		t := int(math.Round(p.Time))
		if len(keys) > 0 && t <= keys[len(keys)-1].Time {
			continue
		}
		keys = append(keys, avfx.Key{Time: t, Type: avfx.KeyLinear, X: 1, Y: 1, Z: float32(p.Value)})
	}
	return keys
}
