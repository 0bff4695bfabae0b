// Package config loads wmlc's project configuration: where the source
// tree lives, what the preprocessor should assume (predefined symbols,
// the starting textdomain, which files to feed it), and where a binary
// schema should be persisted between runs.
package config

import (
	"os"
	"runtime"
)

// Config is the fully resolved configuration for one wmlc invocation.
type Config struct {
	Version    int
	Project    Project
	Preprocess Preprocess
	Binary     Binary
}

// Project locates the source tree on disk.
type Project struct {
	Root string
	Name string
}

// Preprocess controls the macro preprocessor's starting state and which
// files it considers part of the project.
type Preprocess struct {
	Defines           map[string]string
	InitialTextdomain string
	DepthLimit        int
	Include           []string
	Exclude           []string
}

// Binary controls the binary codec's schema persistence.
type Binary struct {
	SchemaPath string
}

// Load resolves configuration for the project rooted at path: a
// .wmlc.kdl in the project directory overrides the defaults below.
func Load(path string) (*Config, error) {
	cfg, err := LoadKDL(path)
	if err != nil {
		return nil, err
	}
	if cfg != nil {
		return cfg, nil
	}
	return defaultConfig(path), nil
}

func defaultConfig(root string) *Config {
	if root == "" {
		if cwd, err := os.Getwd(); err == nil {
			root = cwd
		} else {
			root = "."
		}
	}

	return &Config{
		Version: 1,
		Project: Project{Root: root},
		Preprocess: Preprocess{
			Defines:           map[string]string{},
			InitialTextdomain: "wesnoth",
			DepthLimit:        40,
			Include:           []string{"**/*.cfg"},
			Exclude: []string{
				"**/.git/**",
				"**/*.swp",
				"**/*~",
			},
		},
		Binary: Binary{
			SchemaPath: "",
		},
	}
}

// DefaultGoroutines is the cores-minus-one convention for any parallel
// batch operation that needs a worker count and has no explicit
// override.
func DefaultGoroutines() int {
	return max(1, runtime.NumCPU()-1)
}
