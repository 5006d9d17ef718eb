// Package synced tracks which side of a CPU/GPU mirrored resource holds
// the authoritative copy.
package synced

import "fmt"

// State describes where the data of a mirrored resource lives and which
// copy is current.
type State uint8

const (
	// CPUOnly means the data lives only in CPU memory.
	CPUOnly State = iota

	// GPUOnly means the data lives only in GPU memory.
	GPUOnly

	// CPUAhead means both copies exist and the CPU copy is newer.
	CPUAhead

	// GPUAhead means both copies exist and the GPU copy is newer.
	GPUAhead

	// CPUPreferred means both copies are identical and writes should go
	// to the CPU copy.
	CPUPreferred

	// GPUPreferred means both copies are identical and writes should go
	// to the GPU copy.
	GPUPreferred
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case CPUOnly:
		return "CPUOnly"
	case GPUOnly:
		return "GPUOnly"
	case CPUAhead:
		return "CPUAhead"
	case GPUAhead:
		return "GPUAhead"
	case CPUPreferred:
		return "CPUPreferred"
	case GPUPreferred:
		return "GPUPreferred"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// OnCPU reports whether a CPU copy exists.
func (s State) OnCPU() bool { return s != GPUOnly }

// OnGPU reports whether a GPU copy exists.
func (s State) OnGPU() bool { return s != CPUOnly }

// NeedsGPUUpdate reports whether the GPU copy is missing or stale.
func (s State) NeedsGPUUpdate() bool { return s == CPUOnly || s == CPUAhead }

// NeedsCPUUpdate reports whether the CPU copy is missing or stale.
func (s State) NeedsCPUUpdate() bool { return s == GPUOnly || s == GPUAhead }

// PrefersWritingToCPU reports whether the next write should target the CPU.
// A side that is already ahead keeps receiving writes.
func (s State) PrefersWritingToCPU() bool {
	return s == CPUOnly || s == CPUAhead || s == CPUPreferred
}

// PrefersWritingToGPU reports whether the next write should target the GPU.
func (s State) PrefersWritingToGPU() bool {
	return s == GPUOnly || s == GPUAhead || s == GPUPreferred
}

// TransitionError is the panic value raised when a side is written or
// synchronized while the state does not allow it.
type TransitionError struct {
	From State
	Op   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("synced: %s from %s: %s", e.Op, e.From, e.reason())
}

func (e *TransitionError) reason() string {
	switch e.Op {
	case "CPUWasUpdated":
		return "expected a CPU update, but the state was GPU focused"
	case "GPUWasUpdated":
		return "expected a GPU update, but the state was CPU focused"
	default:
		return "the other side holds newer data"
	}
}

// CPUWasUpdated records a write to the CPU copy.
// It panics with a *TransitionError if the GPU copy is ahead or the only copy.
func (s *State) CPUWasUpdated() {
	switch *s {
	case CPUOnly, CPUAhead:
	case GPUOnly, GPUAhead:
		panic(&TransitionError{From: *s, Op: "CPUWasUpdated"})
	case CPUPreferred, GPUPreferred:
		*s = CPUAhead
	}
}

// GPUWasUpdated records a write to the GPU copy.
// It panics with a *TransitionError if the CPU copy is ahead or the only copy.
func (s *State) GPUWasUpdated() {
	switch *s {
	case GPUOnly, GPUAhead:
	case CPUOnly, CPUAhead:
		panic(&TransitionError{From: *s, Op: "GPUWasUpdated"})
	case CPUPreferred, GPUPreferred:
		*s = GPUAhead
	}
}

// CPUSynced records that the CPU copy was pushed to the GPU.
// Both copies are identical afterwards and CPU writes stay preferred.
func (s *State) CPUSynced() {
	if s.NeedsCPUUpdate() {
		panic(&TransitionError{From: *s, Op: "CPUSynced"})
	}
	*s = CPUPreferred
}

// GPUSynced records that the GPU copy was read back into CPU memory.
func (s *State) GPUSynced() {
	if s.NeedsGPUUpdate() {
		panic(&TransitionError{From: *s, Op: "GPUSynced"})
	}
	*s = GPUPreferred
}
