package main

import (
	"github.com/urfave/cli/v2"

	"github.com/battle-for-wesnoth/wmlc/internal/types"
	"github.com/battle-for-wesnoth/wmlc/internal/wml/parse"
	"github.com/battle-for-wesnoth/wmlc/internal/wml/preprocess"
	"github.com/battle-for-wesnoth/wmlc/internal/wml/tree"
)

var parseCommand = &cli.Command{
	Name:      "parse",
	Usage:     "Preprocess and parse a WML source into a config tree",
	ArgsUsage: "<path>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "out",
			Usage: "Output file for the YAML tree dump (default: stdout)",
		},
	},
	Action: parseAction,
}

// preprocessAndParse runs the full directory-aware preprocessor over path
// and parses its flattened output directly - it must not be routed back
// through textcodec.Read, which re-preprocesses raw single-file WML and
// would try to re-expand text the engine has already flattened.
func preprocessAndParse(cfg *preprocessConfig, path string) (*tree.Node, error) {
	fp := &preprocess.OSFileProvider{
		Root:    path,
		Include: cfg.include,
		Exclude: cfg.exclude,
	}
	result, err := preprocess.Run(path, fp, cfg.macros, cfg.domain, cfg.depthLimit)
	if err != nil {
		return nil, err
	}
	return parse.Parse(result.Output, path, cfg.domain, result.Map)
}

func preprocessConfigFrom(c *cli.Context) (*preprocessConfig, error) {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return nil, err
	}
	macros := make(preprocess.MacroTable, len(cfg.Preprocess.Defines))
	for name, body := range cfg.Preprocess.Defines {
		macros[name] = &preprocess.MacroDefinition{Name: name, Body: body}
	}
	return &preprocessConfig{
		macros:     macros,
		domain:     types.TextDomain(cfg.Preprocess.InitialTextdomain),
		include:    cfg.Preprocess.Include,
		exclude:    cfg.Preprocess.Exclude,
		depthLimit: cfg.Preprocess.DepthLimit,
		root:       cfg.Project.Root,
	}, nil
}

func parseAction(c *cli.Context) error {
	ppCfg, err := preprocessConfigFrom(c)
	if err != nil {
		return err
	}
	path := c.Args().First()
	if path == "" {
		return cli.Exit("parse requires a path argument", 1)
	}

	node, err := preprocessAndParse(ppCfg, path)
	if err != nil {
		return err
	}

	f, err := openOutput(c)
	if err != nil {
		return err
	}
	defer f.Close()
	return node.DumpYAML(f)
}
