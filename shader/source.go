package shader

import (
	"errors"
	"fmt"
	"strings"
)

// Entry point and struct names used in generated source.
const (
	VertexEntryPoint   = "vs_main"
	FragmentEntryPoint = "fs_main"

	VertexStructName   = "Vertex"
	FragmentStructName = "Fragment"
)

var (
	// ErrBindingInStruct is returned when a struct field uses a
	// group/binding location.
	ErrBindingInStruct = errors.New("shader: struct field cannot use a group/binding location")

	// ErrEmptyStruct is returned for a struct with no fields.
	ErrEmptyStruct = errors.New("shader: struct has no fields")
)

// Bodies holds the caller-written parts of a shader program.
//
// Vertex is the body of vs_main, which receives `input: Vertex` and fills
// the pre-declared `output: Fragment`. Fragment is the body of fs_main,
// which receives `input: Fragment` and must return a vec4<f32> color.
// Extra is inserted before the entry points, e.g. for helper functions.
type Bodies struct {
	Vertex   string
	Fragment string
	Extra    string
}

// StructSource renders a WGSL struct declaration with one field per
// variable, in list order.
func StructSource(name string, vars []Variable) (string, error) {
	if len(vars) == 0 {
		return "", fmt.Errorf("%w: %s", ErrEmptyStruct, name)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "struct %s {\n", name)
	for _, v := range vars {
		if v.Location().Kind() == LocationGroupBinding {
			return "", fmt.Errorf("%w: %s.%s", ErrBindingInStruct, name, v.Name())
		}
		fmt.Fprintf(&b, "    %s %s: %s,\n", v.Location().Attribute(), v.Name(), v.Kind().WGSLType())
	}
	b.WriteString("}\n")
	return b.String(), nil
}

// GlobalsSource renders one uniform declaration per variable, followed by
// the texture and sampler declarations when tex is not nil.
func GlobalsSource(vars []Variable, tex *TextureBinding) (string, error) {
	var b strings.Builder
	for _, v := range vars {
		if v.Location().Kind() != LocationGroupBinding {
			return "", fmt.Errorf("%w: %s", ErrGlobalLocation, v)
		}
		fmt.Fprintf(&b, "%s var<uniform> %s: %s;\n", v.Location().Attribute(), v.Name(), v.Kind().WGSLType())
	}
	if tex != nil {
		fmt.Fprintf(&b, "%s var %s: texture_2d<f32>;\n", GroupBinding(tex.Group, tex.Binding).Attribute(), tex.Name)
		fmt.Fprintf(&b, "%s var %s: sampler;\n", GroupBinding(tex.SamplerGroup, tex.SamplerBinding).Attribute(), tex.SamplerName)
	}
	return b.String(), nil
}

// Source generates the WGSL program for vertex type V, fragment type F and
// globals type G. The output depends only on the variable lists and bodies.
func Source[V, F, G Variables](bodies Bodies) (string, error) {
	var (
		v V
		f F
		g G
	)
	var tex *TextureBinding
	if tg, ok := any(g).(TexturedGlobals); ok {
		tb := tg.Texture()
		tex = &tb
	}
	return generate(v.List(), f.List(), g.List(), tex, bodies)
}

func generate(vertex, fragment, globals []Variable, tex *TextureBinding, bodies Bodies) (string, error) {
	vs, err := StructSource(VertexStructName, vertex)
	if err != nil {
		return "", err
	}
	fs, err := StructSource(FragmentStructName, fragment)
	if err != nil {
		return "", err
	}
	gs, err := GlobalsSource(globals, tex)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(vs)
	b.WriteString("\n")
	b.WriteString(fs)
	if gs != "" {
		b.WriteString("\n")
		b.WriteString(gs)
	}
	if extra := strings.TrimSpace(bodies.Extra); extra != "" {
		b.WriteString("\n")
		b.WriteString(extra)
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\n@vertex\nfn %s(input: %s) -> %s {\n", VertexEntryPoint, VertexStructName, FragmentStructName)
	fmt.Fprintf(&b, "    var output: %s;\n", FragmentStructName)
	writeBody(&b, bodies.Vertex)
	b.WriteString("    return output;\n}\n")

	fmt.Fprintf(&b, "\n@fragment\nfn %s(input: %s) -> @location(0) vec4<f32> {\n", FragmentEntryPoint, FragmentStructName)
	writeBody(&b, bodies.Fragment)
	b.WriteString("}\n")
	return b.String(), nil
}

// writeBody indents each line of body by one level.
func writeBody(b *strings.Builder, body string) {
	body = strings.Trim(body, "\n")
	if strings.TrimSpace(body) == "" {
		return
	}
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			b.WriteString("\n")
			continue
		}
		b.WriteString("    ")
		b.WriteString(line)
		b.WriteString("\n")
	}
}
