// Package shader describes shader variables as typed lists and generates
// WGSL source and vertex buffer layouts from them.
//
// A vertex, fragment or globals type implements [Variables] by listing its
// fields in declaration order:
//
//	type ColoredVertex struct {
//	    Position f32.Vec3
//	    Color    f32.Vec3
//	}
//
//	func (ColoredVertex) List() []shader.Variable {
//	    return []shader.Variable{
//	        shader.Vector3f("position", shader.Index(0)),
//	        shader.Vector3f("color", shader.Index(1)),
//	    }
//	}
//
// [VertexLayout] checks the list against the struct's real memory layout:
// attribute slots must be numbered 0, 1, 2... in list order and the summed
// field sizes must equal the struct size. A mismatch would make the GPU
// read attributes at the wrong offsets, so it is reported as an error
// before anything is uploaded.
//
// [Shader] combines the three lists with caller-supplied entry point bodies
// into one WGSL program, compiled lazily once per shader instance.
package shader
