package shader

import (
	"golang.org/x/image/math/f32"

	"github.com/gogpu/px"
)

type coloredVertex struct {
	Position f32.Vec3
	Color    f32.Vec3
}

func (coloredVertex) List() []Variable {
	return []Variable{
		Vector3f("position", Index(0)),
		Vector3f("color", Index(1)),
	}
}

type coloredFragment struct{}

func (coloredFragment) List() []Variable {
	return []Variable{
		Vector4f("clip_position", BuiltInAt(BuiltInPosition)),
		Vector3f("color", Index(0)),
	}
}

var coloredBodies = Bodies{
	Vertex: `
output.clip_position = view * vec4<f32>(input.position, 1.0);
output.color = input.color;
`,
	Fragment: "return vec4<f32>(input.color, 1.0);",
}

// gapVertex skips location 0.
type gapVertex struct {
	Position f32.Vec3
}

func (gapVertex) List() []Variable {
	return []Variable{Vector3f("position", Index(1))}
}

// swappedVertex lists its attributes out of order.
type swappedVertex struct {
	Position f32.Vec3
	Color    f32.Vec3
}

func (swappedVertex) List() []Variable {
	return []Variable{
		Vector3f("color", Index(1)),
		Vector3f("position", Index(0)),
	}
}

// paddedVertex has a field the list does not describe.
type paddedVertex struct {
	Position f32.Vec3
	Extra    float32
}

func (paddedVertex) List() []Variable {
	return []Variable{Vector3f("position", Index(0))}
}

// shortVertex lists more than the struct holds.
type shortVertex struct {
	UV f32.Vec2
}

func (shortVertex) List() []Variable {
	return []Variable{Vector4f("uv", Index(0))}
}

type matrixVertex struct {
	Transform f32.Mat4
}

func (matrixVertex) List() []Variable {
	return []Variable{Matrix4f("transform", Index(0))}
}

type uvVertex struct {
	Position f32.Vec2
	UV       f32.Vec2
}

func (uvVertex) List() []Variable {
	return []Variable{
		Vector2f("position", Index(0)),
		Vector2f("uv", Index(1)),
	}
}

type boundVertex struct {
	Position f32.Vec3
}

func (boundVertex) List() []Variable {
	return []Variable{Vector3f("position", GroupBinding(0, 1))}
}

type emptyVars struct{}

func (emptyVars) List() []Variable { return nil }

func (emptyVars) Value(string) (Value, bool) { return Value{}, false }

type tintGlobals struct {
	View f32.Mat4
	Tint f32.Vec4
}

func (tintGlobals) List() []Variable {
	return []Variable{
		Matrix4f("view", GroupBinding(0, 0)),
		Vector4f("tint", GroupBinding(0, 1)),
	}
}

func (g tintGlobals) Value(name string) (Value, bool) {
	return UniformStruct{
		Name:   "Globals",
		Values: []Value{Mat4Value("view", g.View), Vec4Value("tint", g.Tint)},
	}.Lookup(name)
}

type indexedGlobals struct{}

func (indexedGlobals) List() []Variable {
	return []Variable{Vector4f("tint", Index(0))}
}

func (indexedGlobals) Value(name string) (Value, bool) {
	return Vec4Value("tint", f32.Vec4{}), name == "tint"
}

type duplicateGlobals struct{}

func (duplicateGlobals) List() []Variable {
	return []Variable{
		Vector4f("a", GroupBinding(0, 0)),
		Vector4f("b", GroupBinding(0, 0)),
	}
}

func (duplicateGlobals) Value(name string) (Value, bool) {
	return Vec4Value(name, f32.Vec4{}), true
}

type silentGlobals struct{}

func (silentGlobals) List() []Variable {
	return []Variable{Vector4f("tint", GroupBinding(0, 0))}
}

func (silentGlobals) Value(string) (Value, bool) { return Value{}, false }

type mistypedGlobals struct{}

func (mistypedGlobals) List() []Variable {
	return []Variable{Matrix4f("view", GroupBinding(0, 0))}
}

func (mistypedGlobals) Value(name string) (Value, bool) {
	return Vec4Value(name, f32.Vec4{}), true
}

type texturedGlobals struct {
	DefaultGlobals
	Pixels *px.Pixels
}

func (g texturedGlobals) Texture() TextureBinding {
	return TextureBinding{
		Name:           "image",
		Group:          1,
		Binding:        0,
		SamplerName:    "image_sampler",
		SamplerGroup:   1,
		SamplerBinding: 1,
		Pixels:         g.Pixels,
		Sampler:        px.SamplerInterpolate,
	}
}

// clashingTexture puts its texture on the view matrix slot.
type clashingTexture struct {
	DefaultGlobals
}

func (clashingTexture) Texture() TextureBinding {
	return TextureBinding{Name: "image", SamplerName: "image_sampler", SamplerBinding: 1}
}
