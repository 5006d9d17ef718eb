package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "demo.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := parseConfig(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg != defaultConfig() {
		t.Errorf("parseConfig(nil) = %+v, want %+v", cfg, defaultConfig())
	}
}

func TestParseConfigFileUnderFlags(t *testing.T) {
	path := writeConfig(t, `
width = 64
height = 32
output = "file.png"
print_wgsl = true
`)
	cfg, err := parseConfig([]string{"-config", path, "-height", "16", "-v"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 64 || cfg.Height != 16 {
		t.Errorf("size = %dx%d, want 64x16", cfg.Width, cfg.Height)
	}
	if cfg.Output != "file.png" || !cfg.PrintWGSL || !cfg.Verbose {
		t.Errorf("parseConfig() = %+v", cfg)
	}
	if cfg.GPU {
		t.Error("GPU enabled without -gpu")
	}
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		args func(t *testing.T) []string
		want string
	}{
		{"unknown key", func(t *testing.T) []string {
			return []string{"-config", writeConfig(t, "colour = \"red\"\n")}
		}, "unknown keys colour"},
		{"bad toml", func(t *testing.T) []string {
			return []string{"-config", writeConfig(t, "width = \n")}
		}, "read config"},
		{"missing file", func(t *testing.T) []string {
			return []string{"-config", filepath.Join(t.TempDir(), "none.toml")}
		}, "read config"},
		{"bad size", func(*testing.T) []string {
			return []string{"-width", "0"}
		}, "invalid size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseConfig(tt.args(t))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("parseConfig() error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestDemoRunsOnMemoryBackend(t *testing.T) {
	cfg := defaultConfig()
	cfg.Width, cfg.Height = 8, 4
	cfg.Output = filepath.Join(t.TempDir(), "out.png")
	if err := run(cfg); err != nil {
		t.Fatalf("run() = %v", err)
	}
	if _, err := os.Stat(cfg.Output); err != nil {
		t.Errorf("output not written: %v", err)
	}
}

func TestTriangleShaderSource(t *testing.T) {
	src, err := newTriangleShader().Source()
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"struct Vertex", "@location(1) color: vec3<f32>", "fn vs_main", "fn fs_main"} {
		if !strings.Contains(src, want) {
			t.Errorf("source missing %q", want)
		}
	}
}
