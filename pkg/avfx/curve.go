package avfx

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/goopsie/vfxFileTools/pkg/chunk"
	"github.com/goopsie/vfxFileTools/pkg/gradient"
)

// KeySize is the size of one encoded curve key.
const KeySize = 16

// SplineSegments is the number of points per spline segment produced by
// Tessellate.
const SplineSegments = 100

// Key is a curve keyframe. For scalar curves Z is the value and X, Y scale
// the outgoing and incoming spline handles; colour curves store RGB in X, Y, Z.
type Key struct {
	Time int
	Type KeyType
	X    float32
	Y    float32
	Z    float32
}

// Point is a sampled curve position.
type Point struct {
	Time  float64
	Value float64
}

// CurveKeys is the packed key array of a curve.
type CurveKeys struct {
	leaf
	Keys []Key
}

func newCurveKeys() *CurveKeys {
	return &CurveKeys{leaf: leaf{tag: "Keys"}}
}

func (k *CurveKeys) ToDefault() { k.Keys = nil; k.assigned = true }
func (k *CurveKeys) reset()     { k.Keys = nil; k.assigned = false }

func (k *CurveKeys) readContents(_ *decoder, data []byte) error {
	if len(data)%KeySize != 0 {
		return chunk.Formatf(0, k.tag, "payload of %d bytes is not a multiple of %d", len(data), KeySize)
	}
	k.Keys = make([]Key, len(data)/KeySize)
	for i := range k.Keys {
		b := data[i*KeySize:]
		k.Keys[i] = Key{
			Time: int(int16(binary.LittleEndian.Uint16(b[0:]))),
			Type: KeyType(int16(binary.LittleEndian.Uint16(b[2:]))),
			X:    math.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
			Y:    math.Float32frombits(binary.LittleEndian.Uint32(b[8:])),
			Z:    math.Float32frombits(binary.LittleEndian.Uint32(b[12:])),
		}
	}
	return nil
}

func (k *CurveKeys) writeContents(_ *encoder, w *chunk.Writer) error {
	buf := make([]byte, 0, len(k.Keys)*KeySize)
	for i, key := range k.Keys {
		if key.Time < math.MinInt16 || key.Time > math.MaxInt16 {
			return chunk.Encodingf("key %d: time %d does not fit in int16", i, key.Time)
		}
		if key.Type < math.MinInt16 || key.Type > math.MaxInt16 {
			return chunk.Encodingf("key %d: type %d does not fit in int16", i, key.Type)
		}
		buf = binary.LittleEndian.AppendUint16(buf, uint16(key.Time))
		buf = binary.LittleEndian.AppendUint16(buf, uint16(key.Type))
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(key.X))
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(key.Y))
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(key.Z))
	}
	_, err := w.Write(buf)
	return err
}

func (k *CurveKeys) check(d *decoder) {
	for _, msg := range keyOrderProblems(k.Keys) {
		d.warnf("%s", msg)
	}
}

func keyOrderProblems(keys []Key) []string {
	var out []string
	for i := 1; i < len(keys); i++ {
		if keys[i].Time < keys[i-1].Time {
			out = append(out, fmt.Sprintf("key %d at time %d precedes key %d at time %d",
				i, keys[i].Time, i-1, keys[i-1].Time))
		}
	}
	return out
}

func (k *CurveKeys) Bits() []byte {
	var buf []byte
	for _, key := range k.Keys {
		buf = binary.LittleEndian.AppendUint64(buf, uint64(key.Time))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(key.Type))
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(key.X))
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(key.Y))
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(key.Z))
	}
	return buf
}

func (k *CurveKeys) String() string { return fmt.Sprintf("%d keys", len(k.Keys)) }

// Curve is a keyframed value over time.
type Curve struct {
	Block
	KeyCount     *Count
	PreBehavior  *Enum[CurveBehavior]
	PostBehavior *Enum[CurveBehavior]
	Random       *Enum[RandomType]
	Keys         *CurveKeys

	color bool
}

// NewCurve creates a scalar curve.
func NewCurve(tag string) *Curve {
	return newCurve(tag, false)
}

// NewColorCurve creates a curve whose keys hold RGB values.
func NewColorCurve(tag string) *Curve {
	return newCurve(tag, true)
}

func newCurve(tag string, color bool) *Curve {
	c := &Curve{Block: newBlock(tag), color: color}
	c.Keys = newCurveKeys()
	c.KeyCount = newCount("KeyC", func() int { return len(c.Keys.Keys) })
	c.PreBehavior = NewEnum("BvPr", BehaviorConst)
	c.PostBehavior = NewEnum("BvPo", BehaviorConst)
	c.Random = NewEnum("RanT", RandomFirstPlus)
	c.add(c.KeyCount, c.PreBehavior, c.PostBehavior, c.Random, c.Keys)
	return c
}

// IsColor reports whether the keys hold RGB values.
func (c *Curve) IsColor() bool { return c.color }

func (c *Curve) readContents(d *decoder, data []byte) error {
	if err := c.Block.readContents(d, data); err != nil {
		return err
	}
	if !c.KeyCount.IsAssigned() || !c.Keys.IsAssigned() {
		return nil
	}
	for _, it := range c.layout {
		switch it {
		case c.KeyCount:
			return nil
		case c.Keys:
			return chunk.Formatf(0, c.tag, "unexpected tag ordering: Keys before KeyC")
		}
	}
	return nil
}

// AddKey appends a key and marks the curve assigned.
func (c *Curve) AddKey(k Key) {
	c.assigned = true
	c.KeyCount.SetAssigned(true)
	c.Keys.SetAssigned(true)
	c.Keys.Keys = append(c.Keys.Keys, k)
}

// Validate reports keys that are out of chronological order. The keys are
// left as they are.
func (c *Curve) Validate() []Warning {
	var out []Warning
	for _, msg := range keyOrderProblems(c.Keys.Keys) {
		out = append(out, Warning{Path: c.tag, Msg: msg})
	}
	return out
}

// Evaluate returns the scalar value of the curve at time t.
func (c *Curve) Evaluate(t float64) float32 {
	keys := c.Keys.Keys
	switch len(keys) {
	case 0:
		return 0
	case 1:
		return keys[0].Z
	}
	a, b, ok := c.segment(t)
	if !ok {
		return a.Z
	}
	return float32(segmentValue(a, b, c.extend(t)))
}

// EvaluateColor returns the colour of the curve at time t. Colour keys are
// always interpolated linearly.
func (c *Curve) EvaluateColor(t float64) gradient.Color {
	keys := c.Keys.Keys
	switch len(keys) {
	case 0:
		return gradient.Color{A: 1}
	case 1:
		return keyColor(keys[0])
	}
	a, b, ok := c.segment(t)
	if !ok {
		return keyColor(a)
	}
	t = c.extend(t)
	f := float32(0)
	if b.Time != a.Time {
		f = float32((t - float64(a.Time)) / float64(b.Time-a.Time))
	}
	return keyColor(a).Lerp(keyColor(b), f)
}

// Gradient builds a colour gradient with one stop per key.
func (c *Curve) Gradient() *gradient.Gradient {
	stops := make([]gradient.Stop, len(c.Keys.Keys))
	for i, k := range c.Keys.Keys {
		stops[i] = gradient.Stop{Pos: float64(k.Time), Color: keyColor(k)}
	}
	return gradient.New(stops...)
}

func keyColor(k Key) gradient.Color {
	return gradient.Color{R: k.X, G: k.Y, B: k.Z, A: 1}
}

// extend maps t into the key range according to the curve behaviours.
func (c *Curve) extend(t float64) float64 {
	keys := c.Keys.Keys
	first, last := float64(keys[0].Time), float64(keys[len(keys)-1].Time)
	span := last - first
	if span <= 0 {
		return t
	}

	var behavior CurveBehavior
	switch {
	case t < first:
		behavior = c.PreBehavior.Value()
	case t > last:
		behavior = c.PostBehavior.Value()
	default:
		return t
	}

	switch behavior {
	case BehaviorRepeat:
		m := math.Mod(t-first, span)
		if m < 0 {
			m += span
		}
		return first + m
	case BehaviorMirror:
		m := math.Mod(t-first, 2*span)
		if m < 0 {
			m += 2 * span
		}
		if m > span {
			m = 2*span - m
		}
		return first + m
	}
	return math.Max(first, math.Min(t, last))
}

// segment returns the keys surrounding t after extension. ok is false when
// t lands on or outside an end key, in which case a is that key.
func (c *Curve) segment(t float64) (a, b Key, ok bool) {
	keys := c.Keys.Keys
	t = c.extend(t)
	if t <= float64(keys[0].Time) {
		return keys[0], Key{}, false
	}
	last := keys[len(keys)-1]
	if t >= float64(last.Time) {
		return last, Key{}, false
	}
	for i := 0; i+1 < len(keys); i++ {
		if float64(keys[i].Time) <= t && t < float64(keys[i+1].Time) {
			return keys[i], keys[i+1], true
		}
	}
	return last, Key{}, false
}

func segmentValue(a, b Key, t float64) float64 {
	if b.Time == a.Time {
		return float64(b.Z)
	}
	switch a.Type {
	case KeyStep:
		return float64(a.Z)
	case KeySpline:
		return splineValue(a, b, t)
	}
	f := (t - float64(a.Time)) / float64(b.Time-a.Time)
	return float64(a.Z) + (float64(b.Z)-float64(a.Z))*f
}

func bezier(p0, p1, p2, p3, s float64) float64 {
	u := 1 - s
	return u*u*u*p0 + 3*u*u*s*p1 + 3*u*s*s*p2 + s*s*s*p3
}

func splineHandles(a, b Key) (h1, h2 float64) {
	third := float64(b.Time-a.Time) / 3
	return float64(a.Time) + float64(a.X)*third, float64(b.Time) - float64(a.Y)*third
}

// splineValue solves x(s) = t on the Bezier by bisection, then evaluates y(s).
func splineValue(a, b Key, t float64) float64 {
	h1, h2 := splineHandles(a, b)
	ta, tb := float64(a.Time), float64(b.Time)
	lo, hi := 0.0, 1.0
	for i := 0; i < 48; i++ {
		mid := (lo + hi) / 2
		if bezier(ta, h1, h2, tb, mid) < t {
			lo = mid
		} else {
			hi = mid
		}
	}
	s := (lo + hi) / 2
	return bezier(float64(a.Z), float64(a.Z), float64(b.Z), float64(b.Z), s)
}

// Tessellate returns display points for a scalar curve: key positions for
// linear segments, a corner for step segments and SplineSegments samples
// for spline segments.
func (c *Curve) Tessellate() []Point {
	keys := c.Keys.Keys
	if len(keys) == 0 {
		return nil
	}
	pts := []Point{{Time: float64(keys[0].Time), Value: float64(keys[0].Z)}}
	for i := 0; i+1 < len(keys); i++ {
		a, b := keys[i], keys[i+1]
		switch {
		case a.Type == KeyStep:
			pts = append(pts, Point{Time: float64(b.Time), Value: float64(a.Z)})
		case a.Type == KeySpline && b.Time != a.Time:
			h1, h2 := splineHandles(a, b)
			for j := 1; j < SplineSegments; j++ {
				s := float64(j) / SplineSegments
				pts = append(pts, Point{
					Time:  bezier(float64(a.Time), h1, h2, float64(b.Time), s),
					Value: bezier(float64(a.Z), float64(a.Z), float64(b.Z), float64(b.Z), s),
				})
			}
		}
		pts = append(pts, Point{Time: float64(b.Time), Value: float64(b.Z)})
	}
	return pts
}
