package shader

import "golang.org/x/image/math/f32"

// DefaultVertex is a vertex with only a position.
type DefaultVertex struct {
	Position f32.Vec3
}

// List implements Variables.
func (DefaultVertex) List() []Variable {
	return []Variable{Vector3f("position", Index(0))}
}

// DefaultFragment carries only the clip-space position computed by the
// vertex stage. It is never written on the host.
type DefaultFragment struct{}

// List implements Variables.
func (DefaultFragment) List() []Variable {
	return []Variable{Vector4f("clip_position", BuiltInAt(BuiltInPosition))}
}

// DefaultGlobals holds a view matrix at group 0, binding 0.
type DefaultGlobals struct {
	View f32.Mat4
}

// NewDefaultGlobals returns globals with an identity view matrix.
func NewDefaultGlobals() DefaultGlobals {
	return DefaultGlobals{View: Identity4()}
}

// List implements Variables.
func (DefaultGlobals) List() []Variable {
	return []Variable{Matrix4f("view", GroupBinding(0, 0))}
}

// Uniforms returns the values grouped as the "Globals" uniform struct.
func (g DefaultGlobals) Uniforms() UniformStruct {
	return UniformStruct{
		Name:   "Globals",
		Values: []Value{Mat4Value("view", g.View)},
	}
}

// Value implements Globals.
func (g DefaultGlobals) Value(name string) (Value, bool) {
	return g.Uniforms().Lookup(name)
}
