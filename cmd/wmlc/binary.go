package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/battle-for-wesnoth/wmlc/internal/types"
	"github.com/battle-for-wesnoth/wmlc/internal/wml/binarycodec"
	"github.com/battle-for-wesnoth/wmlc/internal/wml/textcodec"
)

var binaryCommand = &cli.Command{
	Name:  "binary",
	Usage: "Binary WML wire-format codec",
	Subcommands: []*cli.Command{
		{
			Name:      "encode",
			Usage:     "Preprocess, parse, and encode a source to the binary wire format",
			ArgsUsage: "<path>",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "out", Usage: "Output file (default: stdout)"},
			},
			Action: binaryEncodeAction,
		},
		{
			Name:      "decode",
			Usage:     "Decode a binary WML file back into canonical WML text",
			ArgsUsage: "<path>",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "out", Usage: "Output file (default: stdout)"},
			},
			Action: binaryDecodeAction,
		},
	},
}

func loadOrNewSchema(path string) (*binarycodec.Schema, error) {
	if path == "" {
		return binarycodec.NewSchema(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return binarycodec.NewSchema(), nil
	}
	return binarycodec.LoadSchemaTOML(path)
}

func binaryEncodeAction(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	ppCfg, err := preprocessConfigFrom(c)
	if err != nil {
		return err
	}
	path := c.Args().First()
	if path == "" {
		return cli.Exit("binary encode requires a path argument", 1)
	}

	node, err := preprocessAndParse(ppCfg, path)
	if err != nil {
		return err
	}

	schema, err := loadOrNewSchema(cfg.Binary.SchemaPath)
	if err != nil {
		return err
	}

	data, warnings, err := binarycodec.Encode(node, schema)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		fmt.Fprintln(os.Stderr, w.Error())
	}

	if cfg.Binary.SchemaPath != "" {
		if err := schema.SaveTOML(cfg.Binary.SchemaPath); err != nil {
			return fmt.Errorf("saving schema: %w", err)
		}
	}

	f, err := openOutput(c)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(data)
	return err
}

func binaryDecodeAction(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	path := c.Args().First()
	if path == "" {
		return cli.Exit("binary decode requires a path argument", 1)
	}
	if cfg.Binary.SchemaPath == "" {
		return cli.Exit("binary decode requires a --schema path matching the one used to encode", 1)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	schema, err := binarycodec.LoadSchemaTOML(cfg.Binary.SchemaPath)
	if err != nil {
		return fmt.Errorf("loading schema: %w", err)
	}

	node, err := binarycodec.Decode(data, schema)
	if err != nil {
		return err
	}

	f, err := openOutput(c)
	if err != nil {
		return err
	}
	defer f.Close()
	return textcodec.Write(f, node, types.TextDomain(cfg.Preprocess.InitialTextdomain))
}
