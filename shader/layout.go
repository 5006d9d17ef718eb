package shader

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/gogpu/gputypes"
)

var (
	// ErrAttributeOrder is returned when index locations are not numbered
	// 0, 1, 2... in list order.
	ErrAttributeOrder = errors.New("shader: vertex attributes must be numbered from 0 in list order")

	// ErrNoVertexFormat is returned for an index-located kind that has no
	// single vertex format.
	ErrNoVertexFormat = errors.New("shader: variable kind cannot be a vertex attribute")

	// ErrStrideMismatch is returned when the summed attribute sizes differ
	// from the vertex struct size.
	ErrStrideMismatch = errors.New("shader: vertex attribute sizes do not match the struct size")
)

// VertexLayout computes the vertex buffer layout of V from its variable
// list. Only index-located variables become attributes; their offsets
// accumulate in list order and must add up to exactly unsafe.Sizeof(V).
func VertexLayout[V Variables]() (gputypes.VertexBufferLayout, error) {
	var zero V
	return layoutOf(zero.List(), uint64(unsafe.Sizeof(zero)))
}

// MustVertexLayout is like VertexLayout but panics on error.
func MustVertexLayout[V Variables]() gputypes.VertexBufferLayout {
	l, err := VertexLayout[V]()
	if err != nil {
		panic(err)
	}
	return l
}

func layoutOf(vars []Variable, size uint64) (gputypes.VertexBufferLayout, error) {
	var (
		offset uint64
		next   uint16
		attrs  []gputypes.VertexAttribute
	)
	for _, v := range vars {
		idx, ok := v.Index()
		if !ok {
			continue
		}
		if idx != next {
			return gputypes.VertexBufferLayout{}, fmt.Errorf("%w: %s is at location %d, expected %d",
				ErrAttributeOrder, v.Name(), idx, next)
		}
		format, ok := v.VertexFormat()
		if !ok {
			return gputypes.VertexBufferLayout{}, fmt.Errorf("%w: %s is %s", ErrNoVertexFormat, v.Name(), v.Kind())
		}
		attrs = append(attrs, gputypes.VertexAttribute{
			Format:         format,
			Offset:         offset,
			ShaderLocation: uint32(idx),
		})
		offset += uint64(v.ByteSize())
		next++
	}
	if offset != size {
		return gputypes.VertexBufferLayout{}, fmt.Errorf("%w: attributes cover %d bytes, struct is %d bytes",
			ErrStrideMismatch, offset, size)
	}
	return gputypes.VertexBufferLayout{
		ArrayStride: offset,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes:  attrs,
	}, nil
}
