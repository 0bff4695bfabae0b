package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/battle-for-wesnoth/wmlc/internal/config"
	"github.com/battle-for-wesnoth/wmlc/internal/debug"
	"github.com/battle-for-wesnoth/wmlc/internal/version"
)

var Version = version.Version

// loadConfigWithOverrides loads the project config and layers CLI flag
// overrides (--root, --textdomain, --schema, --define) onto it before
// any command runs.
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	configPath := c.String("config")
	if rootFlag := c.String("root"); rootFlag != "" && configPath == ".wmlc.kdl" {
		configPath = filepath.Join(rootFlag, ".wmlc.kdl")
	}

	cfg, err := config.Load(filepath.Dir(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
	}

	if rootFlag := c.String("root"); rootFlag != "" {
		absRoot, err := filepath.Abs(rootFlag)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve root path %q: %w", rootFlag, err)
		}
		cfg.Project.Root = absRoot
	}
	if domain := c.String("textdomain"); domain != "" {
		cfg.Preprocess.InitialTextdomain = domain
	}
	if schema := c.String("schema"); schema != "" {
		cfg.Binary.SchemaPath = schema
	}
	for _, kv := range c.StringSlice("define") {
		name, body, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --define %q, expected name=body", kv)
		}
		if cfg.Preprocess.Defines == nil {
			cfg.Preprocess.Defines = make(map[string]string)
		}
		cfg.Preprocess.Defines[name] = body
	}

	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openOutput(c *cli.Context) (*os.File, error) {
	out := c.String("out")
	if out == "" || out == "-" {
		return os.Stdout, nil
	}
	return os.Create(out)
}

func main() {
	app := &cli.App{
		Name:                   "wmlc",
		Usage:                  "Battle for Wesnoth WML preprocessor, parser, and codec toolchain",
		Version:                Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path (only its directory is used: the file read is .wmlc.kdl in that directory)",
				Value:   ".wmlc.kdl",
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Project root directory (overrides config)",
			},
			&cli.StringFlag{
				Name:  "textdomain",
				Usage: "Initial textdomain (overrides config)",
			},
			&cli.StringFlag{
				Name:  "schema",
				Usage: "Binary codec schema TOML path (overrides config)",
			},
			&cli.StringSliceFlag{
				Name:  "define",
				Usage: "Predefine a zero-argument macro as name=body (repeatable)",
			},
		},
		Commands: []*cli.Command{
			preprocessCommand,
			parseCommand,
			diffCommand,
			patchCommand,
			textCommand,
			binaryCommand,
			watchCommand,
			mcpCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "wmlc: %v\n", err)
		os.Exit(1)
	}
}

// signalContext returns a context canceled on SIGINT/SIGTERM, so the
// mcp and watch commands can shut down cleanly instead of leaving
// goroutines stranded.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
