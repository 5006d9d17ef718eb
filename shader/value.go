package shader

import (
	"encoding/binary"
	"math"

	"golang.org/x/image/math/f32"
)

// Value is a named global value ready for upload.
type Value struct {
	name string
	kind Kind
	data [16]float32
}

// Vec2Value returns a vec2<f32> value.
func Vec2Value(name string, v f32.Vec2) Value {
	out := Value{name: name, kind: KindVector2f}
	copy(out.data[:], v[:])
	return out
}

// Vec3Value returns a vec3<f32> value.
func Vec3Value(name string, v f32.Vec3) Value {
	out := Value{name: name, kind: KindVector3f}
	copy(out.data[:], v[:])
	return out
}

// Vec4Value returns a vec4<f32> value.
func Vec4Value(name string, v f32.Vec4) Value {
	out := Value{name: name, kind: KindVector4f}
	copy(out.data[:], v[:])
	return out
}

// Mat4Value returns a mat4x4<f32> value. m is row-major, as f32.Mat4
// documents; Bytes emits it column-major for WGSL.
func Mat4Value(name string, m f32.Mat4) Value {
	out := Value{name: name, kind: KindMatrix4f}
	for row := range 4 {
		for col := range 4 {
			out.data[col*4+row] = m[row*4+col]
		}
	}
	return out
}

// Name returns the value name.
func (v Value) Name() string { return v.name }

// Kind returns the value type.
func (v Value) Kind() Kind { return v.kind }

// Floats returns the components in upload order.
func (v Value) Floats() []float32 {
	return append([]float32(nil), v.data[:v.kind.Components()]...)
}

// Bytes returns the little-endian float32 encoding in upload order.
func (v Value) Bytes() []byte {
	n := v.kind.Components()
	out := make([]byte, n*4)
	for i := range n {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v.data[i]))
	}
	return out
}

// UniformStruct groups named values.
type UniformStruct struct {
	Name   string
	Values []Value
}

// Lookup returns the value with the given name.
func (u UniformStruct) Lookup(name string) (Value, bool) {
	for _, v := range u.Values {
		if v.name == name {
			return v, true
		}
	}
	return Value{}, false
}

// Identity4 returns the 4x4 identity matrix.
func Identity4() f32.Mat4 {
	return f32.Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}
