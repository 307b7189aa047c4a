package curveplot

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/adnsv/svg"
	xg "github.com/adnsv/xmlgo"
)

// elementTags are the elements svg.Parse keeps, in the order it keeps them.
var elementTags = map[string]bool{
	"g": true, "line": true, "rect": true, "circle": true, "ellipse": true,
	"polyline": true, "polygon": true, "path": true,
}

// transformNode mirrors the item tree built by svg.Parse and holds the
// transform attribute of each element.
type transformNode struct {
	xform *svg.Transform
	kids  []transformNode
}

func (n transformNode) kid(i int) transformNode {
	if i < len(n.kids) {
		return n.kids[i]
	}
	return transformNode{}
}

func (n transformNode) apply(xform *svg.Transform) *svg.Transform {
	if n.xform == nil {
		return xform
	}
	return svg.Concatenate(xform, n.xform)
}

func readTransforms(in string) (transformNode, error) {
	var root transformNode
	content := xg.Open(in)
	if !content.NextTag() {
		err := content.Err()
		if err == nil {
			err = errors.New("invalid file content")
		}
		return root, err
	}
	content.HandleTag(func(aa xg.AttributeList, cc *xg.Content) error {
		return root.read(aa, cc, true)
	})
	return root, content.Err()
}

func (n *transformNode) read(aa xg.AttributeList, cc *xg.Content, group bool) error {
	if v, ok := aa.Attr("transform"); ok {
		t, err := ParseTransform(v)
		if err != nil {
			return fmt.Errorf("invalid transform: %w", err)
		}
		n.xform = t
	}
	if !group || cc == nil {
		return nil
	}
	for cc.NextTag() {
		tag := string(cc.Name())
		cc.HandleTag(func(aa xg.AttributeList, c *xg.Content) error {
			if !elementTags[tag] {
				return nil
			}
			var kid transformNode
			if err := kid.read(aa, c, tag == "g"); err != nil {
				return err
			}
			n.kids = append(n.kids, kid)
			return nil
		})
		if cc.Err() != nil {
			return cc.Err()
		}
	}
	return nil
}

// ParseTransform reads an SVG transform list such as
// "translate(5,5) rotate(90)". Angles are in degrees.
func ParseTransform(s string) (*svg.Transform, error) {
	t := svg.UnitTransform()
	rest := s
	for {
		rest = strings.TrimLeftFunc(rest, func(r rune) bool { return r == ',' || unicode.IsSpace(r) })
		if rest == "" {
			return t, nil
		}
		name, args, ok := strings.Cut(rest, "(")
		if !ok {
			return nil, fmt.Errorf("missing opening parenthesis in %q", s)
		}
		args, rest, ok = strings.Cut(args, ")")
		if !ok {
			return nil, fmt.Errorf("missing closing parenthesis in %q", s)
		}
		vals, err := parseNumbers(args)
		if err != nil {
			return nil, err
		}
		step, err := transformStep(strings.TrimSpace(name), vals)
		if err != nil {
			return nil, err
		}
		t = svg.Concatenate(t, step)
	}
}

func parseNumbers(s string) ([]float64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || unicode.IsSpace(r) })
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func transformStep(name string, a []float64) (*svg.Transform, error) {
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }
	switch {
	case name == "translate" && len(a) == 1:
		return svg.Translation(a[0], 0), nil
	case name == "translate" && len(a) == 2:
		return svg.Translation(a[0], a[1]), nil
	case name == "scale" && len(a) == 1:
		return svg.Scaling(a[0], a[0]), nil
	case name == "scale" && len(a) == 2:
		return svg.Scaling(a[0], a[1]), nil
	case name == "rotate" && len(a) == 1:
		return svg.Rotation(rad(a[0])), nil
	case name == "rotate" && len(a) == 3:
		return svg.Concatenate(svg.Translation(a[1], a[2]),
			svg.Concatenate(svg.Rotation(rad(a[0])), svg.Translation(-a[1], -a[2]))), nil
	case name == "skewX" && len(a) == 1:
		return svg.SkewX(rad(a[0])), nil
	case name == "skewY" && len(a) == 1:
		return svg.SkewY(rad(a[0])), nil
	case name == "matrix" && len(a) == 6:
		return &svg.Transform{A: a[0], B: a[1], C: a[2], D: a[3], E: a[4], F: a[5]}, nil
	}
	return nil, fmt.Errorf("unsupported transform %s with %d arguments", name, len(a))
}
