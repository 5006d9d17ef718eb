package shader

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// Kind is the type of a shader variable.
type Kind uint8

const (
	// KindVector2f is vec2<f32>.
	KindVector2f Kind = iota

	// KindVector3f is vec3<f32>.
	KindVector3f

	// KindVector4f is vec4<f32>.
	KindVector4f

	// KindMatrix4f is mat4x4<f32>.
	KindMatrix4f
)

// ByteSize returns the packed host size of a value of this kind.
func (k Kind) ByteSize() int {
	switch k {
	case KindVector2f:
		return 8
	case KindVector3f:
		return 12
	case KindVector4f:
		return 16
	case KindMatrix4f:
		return 64
	}
	return 0
}

// Components returns the number of float32 components.
func (k Kind) Components() int {
	return k.ByteSize() / 4
}

// WGSLType returns the WGSL type tag.
func (k Kind) WGSLType() string {
	switch k {
	case KindVector2f:
		return "vec2<f32>"
	case KindVector3f:
		return "vec3<f32>"
	case KindVector4f:
		return "vec4<f32>"
	case KindMatrix4f:
		return "mat4x4<f32>"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// VertexFormat returns the vertex attribute format. A matrix spans four
// attribute slots and has no single format, so ok is false.
func (k Kind) VertexFormat() (gputypes.VertexFormat, bool) {
	switch k {
	case KindVector2f:
		return gputypes.VertexFormatFloat32x2, true
	case KindVector3f:
		return gputypes.VertexFormatFloat32x3, true
	case KindVector4f:
		return gputypes.VertexFormatFloat32x4, true
	}
	return 0, false
}

func (k Kind) String() string { return k.WGSLType() }

// BuiltIn is a reserved shader-stage value.
type BuiltIn uint8

const (
	// BuiltInPosition is the clip-space position, a vec4<f32>.
	BuiltInPosition BuiltIn = iota
)

// WGSLName returns the name used inside @builtin(...).
func (b BuiltIn) WGSLName() string {
	switch b {
	case BuiltInPosition:
		return "position"
	}
	return fmt.Sprintf("builtin%d", uint8(b))
}

// LocationKind tells which variant a Location holds.
type LocationKind uint8

const (
	// LocationIndex is an explicit vertex attribute or inter-stage slot.
	LocationIndex LocationKind = iota

	// LocationBuiltIn is a reserved shader-stage value.
	LocationBuiltIn

	// LocationGroupBinding is a uniform or resource binding pair.
	LocationGroupBinding
)

// Location is where a variable is visible to the shader.
type Location struct {
	kind    LocationKind
	index   uint16
	builtIn BuiltIn
	group   uint16
	binding uint16
}

// Index returns a slot location.
func Index(i uint16) Location {
	return Location{kind: LocationIndex, index: i}
}

// BuiltInAt returns a built-in location.
func BuiltInAt(b BuiltIn) Location {
	return Location{kind: LocationBuiltIn, builtIn: b}
}

// GroupBinding returns a binding location.
func GroupBinding(group, binding uint16) Location {
	return Location{kind: LocationGroupBinding, group: group, binding: binding}
}

// Kind returns the location variant.
func (l Location) Kind() LocationKind { return l.kind }

// Index returns the slot, if l is an index location.
func (l Location) Index() (uint16, bool) {
	return l.index, l.kind == LocationIndex
}

// BuiltIn returns the built-in, if l is a built-in location.
func (l Location) BuiltIn() (BuiltIn, bool) {
	return l.builtIn, l.kind == LocationBuiltIn
}

// GroupBinding returns the pair, if l is a binding location.
func (l Location) GroupBinding() (group, binding uint16, ok bool) {
	return l.group, l.binding, l.kind == LocationGroupBinding
}

// Attribute returns the WGSL attribute text for the location.
func (l Location) Attribute() string {
	switch l.kind {
	case LocationBuiltIn:
		return "@builtin(" + l.builtIn.WGSLName() + ")"
	case LocationGroupBinding:
		return fmt.Sprintf("@group(%d) @binding(%d)", l.group, l.binding)
	default:
		return fmt.Sprintf("@location(%d)", l.index)
	}
}

func (l Location) String() string { return l.Attribute() }

// Metadata names a variable and places it.
type Metadata struct {
	Name     string
	Location Location
}

// Variable describes one named, typed field.
type Variable struct {
	kind Kind
	meta Metadata
}

// NewVariable returns a variable of any kind.
func NewVariable(kind Kind, name string, loc Location) Variable {
	return Variable{kind: kind, meta: Metadata{Name: name, Location: loc}}
}

// Vector2f returns a vec2<f32> variable.
func Vector2f(name string, loc Location) Variable { return NewVariable(KindVector2f, name, loc) }

// Vector3f returns a vec3<f32> variable.
func Vector3f(name string, loc Location) Variable { return NewVariable(KindVector3f, name, loc) }

// Vector4f returns a vec4<f32> variable.
func Vector4f(name string, loc Location) Variable { return NewVariable(KindVector4f, name, loc) }

// Matrix4f returns a mat4x4<f32> variable.
func Matrix4f(name string, loc Location) Variable { return NewVariable(KindMatrix4f, name, loc) }

// Kind returns the variable type.
func (v Variable) Kind() Kind { return v.kind }

// Metadata returns the variable name and location.
func (v Variable) Metadata() Metadata { return v.meta }

// Name returns the variable name.
func (v Variable) Name() string { return v.meta.Name }

// Location returns where the variable is visible.
func (v Variable) Location() Location { return v.meta.Location }

// Index returns the slot, if the variable is located by index.
func (v Variable) Index() (uint16, bool) { return v.meta.Location.Index() }

// ByteSize returns the packed host size.
func (v Variable) ByteSize() int { return v.kind.ByteSize() }

// VertexFormat returns the vertex attribute format.
func (v Variable) VertexFormat() (gputypes.VertexFormat, bool) { return v.kind.VertexFormat() }

func (v Variable) String() string {
	return fmt.Sprintf("%s %s: %s", v.meta.Location.Attribute(), v.meta.Name, v.kind.WGSLType())
}
