// Command pxdemo draws a test pattern into a pixel buffer, renders a
// colored triangle over it through an accelerator and saves the result.
//
// Usage:
//
//	pxdemo [-config demo.toml] [-width 256] [-height 256] [-output out.png] [-gpu] [-wgsl] [-v]
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/px"
	"github.com/gogpu/px/backend"
	"github.com/gogpu/px/scene"
	"github.com/gogpu/px/shader"

	// Register the wgpu backends for -gpu.
	_ "github.com/gogpu/px/backend/wgpu"
)

func main() {
	cfg, err := parseConfig(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "pxdemo:", err)
		os.Exit(2)
	}
	if err := run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, "pxdemo:", err)
		os.Exit(1)
	}
}

func run(cfg config) error {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	px.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	triangle := newTriangleShader()
	if cfg.PrintWGSL {
		src, err := triangle.Source()
		if err != nil {
			return err
		}
		fmt.Println(src)
	}

	acc, err := openBackend(cfg.GPU)
	if err != nil {
		return err
	}
	defer acc.Close()
	px.Logger().Info("pxdemo: backend", "name", acc.Name())

	pixels := px.New(px.Sz(cfg.Width, cfg.Height), px.WithLabel("pxdemo"))
	if err := drawPattern(pixels); err != nil {
		return err
	}

	s := scene.New(px.Hex(cfg.Background))
	s.Add(triangle.Shading(triangleVertices, shader.NewDefaultGlobals()))
	if err := s.Render(acc, pixels); err != nil {
		return err
	}
	if err := pixels.EnsureUpToDateOnCPU(acc); err != nil {
		return err
	}
	if err := pixels.SavePNG(cfg.Output); err != nil {
		return err
	}
	px.Logger().Info("pxdemo: saved", "path", cfg.Output, "width", cfg.Width, "height", cfg.Height)
	return nil
}

func openBackend(gpu bool) (backend.Backend, error) {
	if gpu {
		return backend.Default()
	}
	return backend.Open(backend.BackendMemory)
}

// drawPattern fills p with a red/green gradient and a blue diagonal.
func drawPattern(p *px.Pixels) error {
	w, h := p.Width(), p.Height()
	for y := range h {
		for x := range w {
			c := px.RGB(uint8(x*255/max(w-1, 1)), uint8(y*255/max(h-1, 1)), 64) //nolint:gosec // values are in [0, 255]
			if x == y {
				c = px.RGB(0, 0, 255)
			}
			if err := p.WritePixel(nil, px.Pt(x, y), c); err != nil {
				return err
			}
		}
	}
	return nil
}

// vertex is a position with a per-vertex color.
type vertex struct {
	Position f32.Vec3
	Color    f32.Vec3
}

func (vertex) List() []shader.Variable {
	return []shader.Variable{
		shader.Vector3f("position", shader.Index(0)),
		shader.Vector3f("color", shader.Index(1)),
	}
}

type fragment struct{}

func (fragment) List() []shader.Variable {
	return []shader.Variable{
		shader.Vector4f("clip_position", shader.BuiltInAt(shader.BuiltInPosition)),
		shader.Vector3f("color", shader.Index(0)),
	}
}

var triangleVertices = []vertex{
	{Position: f32.Vec3{0, 0.8, 0}, Color: f32.Vec3{1, 0, 0}},
	{Position: f32.Vec3{-0.8, -0.8, 0}, Color: f32.Vec3{0, 1, 0}},
	{Position: f32.Vec3{0.8, -0.8, 0}, Color: f32.Vec3{0, 0, 1}},
}

func newTriangleShader() *shader.Shader[vertex, fragment, shader.DefaultGlobals] {
	return shader.New[vertex, fragment, shader.DefaultGlobals](shader.Bodies{
		Vertex: "output.clip_position = view * vec4<f32>(input.position, 1.0);\n" +
			"output.color = input.color;",
		Fragment: "return vec4<f32>(input.color, 1.0);",
	}, shader.WithLabel("pxdemo_triangle"))
}
