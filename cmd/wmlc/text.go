package main

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/battle-for-wesnoth/wmlc/internal/wml/textcodec"
)

var textCommand = &cli.Command{
	Name:  "text",
	Usage: "Canonical WML text codec",
	Subcommands: []*cli.Command{
		{
			Name:      "encode",
			Usage:     "Preprocess, parse, and re-emit a source as canonical WML text",
			ArgsUsage: "<path>",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "out", Usage: "Output file (default: stdout)"},
			},
			Action: textEncodeAction,
		},
		{
			Name:      "decode",
			Usage:     "Parse a single already-preprocessed WML file and dump its tree as YAML",
			ArgsUsage: "<path>",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "out", Usage: "Output file (default: stdout)"},
			},
			Action: textDecodeAction,
		},
	},
}

func textEncodeAction(c *cli.Context) error {
	ppCfg, err := preprocessConfigFrom(c)
	if err != nil {
		return err
	}
	path := c.Args().First()
	if path == "" {
		return cli.Exit("text encode requires a path argument", 1)
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
	return textcodec.Write(f, node, ppCfg.domain)
}

func textDecodeAction(c *cli.Context) error {
	ppCfg, err := preprocessConfigFrom(c)
	if err != nil {
		return err
	}
	path := c.Args().First()
	if path == "" {
		return cli.Exit("text decode requires a path argument", 1)
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	node, _, err := textcodec.Read(src, path, ppCfg.domain)
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
