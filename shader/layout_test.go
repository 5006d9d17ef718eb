package shader

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
)

func TestVertexLayoutColored(t *testing.T) {
	layout, err := VertexLayout[coloredVertex]()
	if err != nil {
		t.Fatalf("VertexLayout() = %v", err)
	}
	if layout.ArrayStride != 24 {
		t.Errorf("ArrayStride = %d, want 24", layout.ArrayStride)
	}
	if layout.StepMode != gputypes.VertexStepModeVertex {
		t.Errorf("StepMode = %v, want vertex", layout.StepMode)
	}
	want := []gputypes.VertexAttribute{
		{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
		{Format: gputypes.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
	}
	if len(layout.Attributes) != len(want) {
		t.Fatalf("len(Attributes) = %d, want %d", len(layout.Attributes), len(want))
	}
	for i, a := range layout.Attributes {
		if a.Format != want[i].Format || a.Offset != want[i].Offset || a.ShaderLocation != want[i].ShaderLocation {
			t.Errorf("Attributes[%d] = %+v, want %+v", i, a, want[i])
		}
	}
}

func TestVertexLayout(t *testing.T) {
	tests := []struct {
		name   string
		layout func() (gputypes.VertexBufferLayout, error)
		stride uint64
		want   error
	}{
		{"default", VertexLayout[DefaultVertex], 12, nil},
		{"two vec2", VertexLayout[uvVertex], 16, nil},
		{"gap", VertexLayout[gapVertex], 0, ErrAttributeOrder},
		{"swapped", VertexLayout[swappedVertex], 0, ErrAttributeOrder},
		{"untracked padding", VertexLayout[paddedVertex], 0, ErrStrideMismatch},
		{"struct too small", VertexLayout[shortVertex], 0, ErrStrideMismatch},
		{"matrix attribute", VertexLayout[matrixVertex], 0, ErrNoVertexFormat},
		{"no attributes", VertexLayout[boundVertex], 0, ErrStrideMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layout, err := tt.layout()
			if tt.want != nil {
				if !errors.Is(err, tt.want) {
					t.Errorf("error = %v, want %v", err, tt.want)
				}
				return
			}
			if err != nil {
				t.Fatalf("VertexLayout() = %v", err)
			}
			if layout.ArrayStride != tt.stride {
				t.Errorf("ArrayStride = %d, want %d", layout.ArrayStride, tt.stride)
			}
		})
	}
}

func TestMustVertexLayoutPanics(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrStrideMismatch) {
			t.Errorf("recovered %v, want ErrStrideMismatch", r)
		}
	}()
	MustVertexLayout[paddedVertex]()
}
