package shader

import (
	"errors"
	"fmt"

	"github.com/gogpu/px"
)

// Variables is implemented by types that enumerate their fields.
//
// List must return the same variables, in field declaration order, for
// every value of the type; the generators call it on the zero value.
type Variables interface {
	List() []Variable
}

// Globals are variables whose values can be retrieved by name for upload.
// Every listed variable must be located by GroupBinding.
type Globals interface {
	Variables
	Value(name string) (Value, bool)
}

// TextureBinding places one texture and its sampler.
type TextureBinding struct {
	Name           string
	Group, Binding uint16

	SamplerName                  string
	SamplerGroup, SamplerBinding uint16

	// Pixels and Sampler are only read when drawing.
	Pixels  *px.Pixels
	Sampler px.Sampler
}

// TexturedGlobals are globals that also bind one texture and sampler.
// Names, groups and bindings must not depend on the value.
type TexturedGlobals interface {
	Globals
	Texture() TextureBinding
}

var (
	// ErrGlobalLocation is returned for a global not located by GroupBinding.
	ErrGlobalLocation = errors.New("shader: global variable must use a group/binding location")

	// ErrMissingValue is returned when a listed global has no value.
	ErrMissingValue = errors.New("shader: global variable has no value")

	// ErrValueKind is returned when a value's kind differs from its variable.
	ErrValueKind = errors.New("shader: global value kind mismatch")

	// ErrDuplicateBinding is returned when two globals share a group/binding pair.
	ErrDuplicateBinding = errors.New("shader: duplicate group/binding")
)

type slot struct{ group, binding uint16 }

// ValidateGlobals checks that every listed global is bound to a unique
// group/binding pair and retrievable by name with a matching kind.
func ValidateGlobals(g Globals) error {
	if err := validateSlots(g); err != nil {
		return err
	}
	for _, v := range g.List() {
		val, ok := g.Value(v.Name())
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingValue, v.Name())
		}
		if val.Kind() != v.Kind() {
			return fmt.Errorf("%w: %s is %s, value is %s", ErrValueKind, v.Name(), v.Kind(), val.Kind())
		}
	}
	return nil
}

// validateSlots checks the parts of g that do not depend on its value:
// every global is located by GroupBinding and no slot is claimed twice,
// including the texture and sampler slots of TexturedGlobals.
func validateSlots(g Variables) error {
	seen := make(map[slot]string)
	claim := func(name string, s slot) error {
		if other, ok := seen[s]; ok {
			return fmt.Errorf("%w: %s and %s at @group(%d) @binding(%d)",
				ErrDuplicateBinding, other, name, s.group, s.binding)
		}
		seen[s] = name
		return nil
	}

	for _, v := range g.List() {
		group, binding, ok := v.Location().GroupBinding()
		if !ok {
			return fmt.Errorf("%w: %s", ErrGlobalLocation, v)
		}
		if err := claim(v.Name(), slot{group, binding}); err != nil {
			return err
		}
	}

	if tg, ok := g.(TexturedGlobals); ok {
		tb := tg.Texture()
		if err := claim(tb.Name, slot{tb.Group, tb.Binding}); err != nil {
			return err
		}
		if err := claim(tb.SamplerName, slot{tb.SamplerGroup, tb.SamplerBinding}); err != nil {
			return err
		}
	}
	return nil
}
