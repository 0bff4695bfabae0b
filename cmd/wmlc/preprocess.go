package main

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/battle-for-wesnoth/wmlc/internal/config"
	"github.com/battle-for-wesnoth/wmlc/internal/debug"
	"github.com/battle-for-wesnoth/wmlc/internal/types"
	"github.com/battle-for-wesnoth/wmlc/internal/wml/preprocess"
	"github.com/battle-for-wesnoth/wmlc/pkg/pathutil"
)

var preprocessCommand = &cli.Command{
	Name:      "preprocess",
	Aliases:   []string{"pp"},
	Usage:     "Expand #define macros and #ifdef blocks into flat WML text",
	ArgsUsage: "<path> [path...]",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "out",
			Usage: "Output file (default: stdout; ignored when more than one path is given)",
		},
		&cli.BoolFlag{
			Name:  "verify-deterministic",
			Usage: "Preprocess each path twice and fail if the outputs hash differently",
		},
	},
	Action: preprocessAction,
}

func runPreprocessPath(cfg *preprocessConfig, path string) ([]byte, error) {
	fp := &preprocess.OSFileProvider{
		Root:    path,
		Include: cfg.include,
		Exclude: cfg.exclude,
	}
	result, err := preprocess.Run(path, fp, cfg.macros, cfg.domain, cfg.depthLimit)
	if err != nil {
		return nil, err
	}
	return result.Output, nil
}

// preprocessConfig is the subset of config.Config runPreprocessPath needs,
// trimmed so tests and the batch errgroup fan-out below don't have to carry
// the whole project config through.
type preprocessConfig struct {
	macros     preprocess.MacroTable
	domain     types.TextDomain
	include    []string
	exclude    []string
	depthLimit int
	root       string
}

func preprocessAction(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	macros := make(preprocess.MacroTable, len(cfg.Preprocess.Defines))
	for name, body := range cfg.Preprocess.Defines {
		macros[name] = &preprocess.MacroDefinition{Name: name, Body: body}
	}
	ppCfg := &preprocessConfig{
		macros:     macros,
		domain:     types.TextDomain(cfg.Preprocess.InitialTextdomain),
		include:    cfg.Preprocess.Include,
		exclude:    cfg.Preprocess.Exclude,
		depthLimit: cfg.Preprocess.DepthLimit,
		root:       cfg.Project.Root,
	}

	paths := c.Args().Slice()
	if len(paths) == 0 {
		return cli.Exit("preprocess requires at least one path", 1)
	}

	outputs := make([][]byte, len(paths))
	group, _ := errgroup.WithContext(c.Context)
	group.SetLimit(config.DefaultGoroutines())
	for i, path := range paths {
		i, path := i, path
		group.Go(func() error {
			out, err := runPreprocessPath(ppCfg, path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			if c.Bool("verify-deterministic") {
				verify, err := runPreprocessPath(ppCfg, path)
				if err != nil {
					return fmt.Errorf("%s: second pass: %w", path, err)
				}
				if xxhash.Sum64(out) != xxhash.Sum64(verify) {
					return fmt.Errorf("%s: preprocessing is not deterministic across repeated runs", path)
				}
			}
			outputs[i] = out
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	if len(paths) == 1 {
		f, err := openOutput(c)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = f.Write(outputs[0])
		return err
	}

	for i, path := range paths {
		display := pathutil.ToRelative(path, ppCfg.root)
		debug.LogPreprocess("wrote %d bytes for %s", len(outputs[i]), display)
		fmt.Printf("--- %s ---\n%s\n", display, outputs[i])
	}
	return nil
}
