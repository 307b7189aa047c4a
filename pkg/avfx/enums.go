package avfx

import "fmt"

func enumName(names []string, v int32, typ string) string {
	if v >= 0 && int(v) < len(names) && names[v] != "" {
		return names[v]
	}
	return fmt.Sprintf("%s(%d)", typ, v)
}

// KeyType selects the interpolation between a key and the next one.
type KeyType int32

const (
	KeyLinear KeyType = iota
	KeySpline
	KeyStep
)

func (k KeyType) String() string {
	return enumName([]string{"Linear", "Spline", "Step"}, int32(k), "KeyType")
}

// CurveBehavior selects how a curve is extended outside its key range.
type CurveBehavior int32

const (
	BehaviorConst CurveBehavior = iota
	BehaviorStop
	BehaviorRepeat
	BehaviorMirror
)

func (b CurveBehavior) String() string {
	return enumName([]string{"Const", "Stop", "Repeat", "Mirror"}, int32(b), "CurveBehavior")
}

// RandomType selects how the random companion curve is applied.
type RandomType int32

const (
	RandomFirstPlus RandomType = iota
	RandomFirstMinus
	RandomFirstPlusMinus
	RandomAllPlus
	RandomAllMinus
	RandomAllPlusMinus
)

func (r RandomType) String() string {
	return enumName([]string{
		"FirstPlus", "FirstMinus", "FirstPlusMinus", "AllPlus", "AllMinus", "AllPlusMinus",
	}, int32(r), "RandomType")
}

// ParticleType selects the particle variant and the layout of its Data block.
type ParticleType int32

const (
	ParticleParameter ParticleType = iota
	ParticlePowder
	ParticleWindmill
	ParticleLine
	ParticleReserve4
	ParticleModel
	ParticlePolyline
	ParticleReserve7
	ParticleQuad
	ParticlePolygon
	ParticleDecal
	ParticleDecalRing
	ParticleDisc
	ParticleLightModel
	ParticleLaser
	ParticleModelSkin
	ParticleDissolve
)

var particleTypeNames = []string{
	"Parameter", "Powder", "Windmill", "Line", "Reserve4", "Model", "Polyline", "Reserve7",
	"Quad", "Polygon", "Decal", "DecalRing", "Disc", "LightModel", "Laser", "ModelSkin", "Dissolve",
}

func (t ParticleType) String() string {
	return enumName(particleTypeNames, int32(t), "ParticleType")
}

type EmitterType int32

const (
	EmitterPoint EmitterType = iota
	EmitterCone
	EmitterConeModel
	EmitterSphereModel
	EmitterCylinderModel
	EmitterModel
)

func (t EmitterType) String() string {
	return enumName([]string{
		"Point", "Cone", "ConeModel", "SphereModel", "CylinderModel", "Model",
	}, int32(t), "EmitterType")
}

type EffectorType int32

const (
	EffectorPointLight EffectorType = iota
	EffectorDirectionalLight
	EffectorRadialBlur
	EffectorBlackHole
	EffectorCameraQuake
)

func (t EffectorType) String() string {
	return enumName([]string{
		"PointLight", "DirectionalLight", "RadialBlur", "BlackHole", "CameraQuake",
	}, int32(t), "EffectorType")
}

type BinderType int32

const (
	BinderPoint BinderType = iota
	BinderLinear
	BinderSpline
	BinderCamera
)

func (t BinderType) String() string {
	return enumName([]string{"Point", "Linear", "Spline", "Camera"}, int32(t), "BinderType")
}

type RotationOrder int32

const (
	RotationXYZ RotationOrder = iota
	RotationXZY
	RotationYXZ
	RotationYZX
	RotationZXY
	RotationZYX
)

func (o RotationOrder) String() string {
	return enumName([]string{"XYZ", "XZY", "YXZ", "YZX", "ZXY", "ZYX"}, int32(o), "RotationOrder")
}

type TextureFilter int32

const (
	FilterLinear TextureFilter = iota
	FilterPoint
	FilterLinear2
)

func (f TextureFilter) String() string {
	return enumName([]string{"Linear", "Point", "Linear2"}, int32(f), "TextureFilter")
}

type TextureBorder int32

const (
	BorderWrap TextureBorder = iota
	BorderClamp
	BorderRepeat
	BorderMirror
)

func (b TextureBorder) String() string {
	return enumName([]string{"Wrap", "Clamp", "Repeat", "Mirror"}, int32(b), "TextureBorder")
}

type TextureCalculate int32

const (
	CalculateMultiply TextureCalculate = iota
	CalculateAdd
	CalculateSubtract
	CalculateOverride
	CalculateMax
	CalculateMin
)

func (c TextureCalculate) String() string {
	return enumName([]string{
		"Multiply", "Add", "Subtract", "Override", "Max", "Min",
	}, int32(c), "TextureCalculate")
}

type DrawLayer int32

const (
	DrawLayerScreen DrawLayer = iota
	DrawLayerBaseUpper
	DrawLayerBase
	DrawLayerBaseLower
	DrawLayerInWater
	DrawLayerBeforeCloud
)

func (l DrawLayer) String() string {
	return enumName([]string{
		"Screen", "BaseUpper", "Base", "BaseLower", "InWater", "BeforeCloud",
	}, int32(l), "DrawLayer")
}

type DrawOrder int32

const (
	DrawOrderDefault DrawOrder = iota
	DrawOrderReverse
	DrawOrderDepth
)

func (o DrawOrder) String() string {
	return enumName([]string{"Default", "Reverse", "Depth"}, int32(o), "DrawOrder")
}
