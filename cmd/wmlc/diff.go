package main

import (
	"github.com/urfave/cli/v2"

	"github.com/battle-for-wesnoth/wmlc/internal/wml/textcodec"
	"github.com/battle-for-wesnoth/wmlc/internal/wml/tree"
)

var diffCommand = &cli.Command{
	Name:      "diff",
	Usage:     "Preprocess and parse two WML sources and write their diff tree as WML text",
	ArgsUsage: "<base> <other>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "out",
			Usage: "Output file for the diff (default: stdout)",
		},
	},
	Action: diffAction,
}

func diffAction(c *cli.Context) error {
	ppCfg, err := preprocessConfigFrom(c)
	if err != nil {
		return err
	}
	if c.Args().Len() < 2 {
		return cli.Exit("diff requires a base and other path", 1)
	}
	basePath, otherPath := c.Args().Get(0), c.Args().Get(1)

	base, err := preprocessAndParse(ppCfg, basePath)
	if err != nil {
		return err
	}
	other, err := preprocessAndParse(ppCfg, otherPath)
	if err != nil {
		return err
	}

	patch := tree.Diff(base, other)

	f, err := openOutput(c)
	if err != nil {
		return err
	}
	defer f.Close()
	return textcodec.Write(f, patch, ppCfg.domain)
}
