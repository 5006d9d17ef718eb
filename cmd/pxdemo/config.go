package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// config holds the demo settings. Values from the TOML file are
// overridden by flags given on the command line.
type config struct {
	Width      int
	Height     int
	Output     string
	Background string
	GPU        bool
	PrintWGSL  bool `toml:"print_wgsl"`
	Verbose    bool
}

func defaultConfig() config {
	return config{
		Width:      256,
		Height:     256,
		Output:     "pxdemo.png",
		Background: "#00000000",
	}
}

// loadConfig decodes path on top of cfg. Unknown keys are an error.
func loadConfig(path string, cfg *config) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// flagValues are the raw flag destinations before merging.
type flagValues struct {
	configPath string
	width      int
	height     int
	output     string
	background string
	gpu        bool
	wgsl       bool
	verbose    bool
}

func newFlagSet(v *flagValues) *flag.FlagSet {
	def := defaultConfig()
	fs := flag.NewFlagSet("pxdemo", flag.ContinueOnError)
	fs.StringVar(&v.configPath, "config", "", "TOML config file")
	fs.IntVar(&v.width, "width", def.Width, "image width")
	fs.IntVar(&v.height, "height", def.Height, "image height")
	fs.StringVar(&v.output, "output", def.Output, "output PNG file")
	fs.StringVar(&v.background, "background", def.Background, "scene background as hex")
	fs.BoolVar(&v.gpu, "gpu", false, "draw on the default GPU backend")
	fs.BoolVar(&v.wgsl, "wgsl", false, "print the generated WGSL")
	fs.BoolVar(&v.verbose, "v", false, "debug logging")
	return fs
}

// parseConfig parses args, loads the config file if one is named and then
// applies every flag that was set explicitly.
func parseConfig(args []string) (config, error) {
	var v flagValues
	fs := newFlagSet(&v)
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}

	cfg := defaultConfig()
	if v.configPath != "" {
		if err := loadConfig(v.configPath, &cfg); err != nil {
			return config{}, err
		}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "width":
			cfg.Width = v.width
		case "height":
			cfg.Height = v.height
		case "output":
			cfg.Output = v.output
		case "background":
			cfg.Background = v.background
		case "gpu":
			cfg.GPU = v.gpu
		case "wgsl":
			cfg.PrintWGSL = v.wgsl
		case "v":
			cfg.Verbose = v.verbose
		}
	})

	if cfg.Width <= 0 || cfg.Height <= 0 {
		return config{}, fmt.Errorf("invalid size %dx%d", cfg.Width, cfg.Height)
	}
	return cfg, nil
}
