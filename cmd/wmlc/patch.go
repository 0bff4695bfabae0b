package main

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/battle-for-wesnoth/wmlc/internal/wml/textcodec"
)

var patchCommand = &cli.Command{
	Name:      "patch",
	Usage:     "Apply a diff tree (from 'diff') onto a base WML source",
	ArgsUsage: "<base> <patch>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "out",
			Usage: "Output file for the patched WML text (default: stdout)",
		},
	},
	Action: patchAction,
}

func patchAction(c *cli.Context) error {
	ppCfg, err := preprocessConfigFrom(c)
	if err != nil {
		return err
	}
	if c.Args().Len() < 2 {
		return cli.Exit("patch requires a base and patch path", 1)
	}
	basePath, patchPath := c.Args().Get(0), c.Args().Get(1)

	baseSrc, err := os.ReadFile(basePath)
	if err != nil {
		return err
	}
	patchSrc, err := os.ReadFile(patchPath)
	if err != nil {
		return err
	}

	base, _, err := textcodec.Read(baseSrc, basePath, ppCfg.domain)
	if err != nil {
		return err
	}
	patch, _, err := textcodec.Read(patchSrc, patchPath, ppCfg.domain)
	if err != nil {
		return err
	}

	if err := base.ApplyDiff(patch); err != nil {
		return err
	}

	f, err := openOutput(c)
	if err != nil {
		return err
	}
	defer f.Close()
	return textcodec.Write(f, base, ppCfg.domain)
}
