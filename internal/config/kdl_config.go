package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// kdlFileName is the project configuration file wmlc looks for at the
// project root.
const kdlFileName = ".wmlc.kdl"

// LoadKDL attempts to load configuration from projectRoot/.wmlc.kdl. A
// nil, nil return means no file was found and the caller should fall
// back to defaults.
func LoadKDL(projectRoot string) (*Config, error) {
	kdlPath := filepath.Join(projectRoot, kdlFileName)

	if _, err := os.Stat(kdlPath); os.IsNotExist(err) {
		return nil, nil
	}

	content, err := os.ReadFile(kdlPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", kdlFileName, err)
	}

	cfg, err := parseKDL(string(content))
	if err != nil {
		return nil, err
	}

	if cfg.Project.Root == "" {
		absRoot, err := filepath.Abs(projectRoot)
		if err == nil {
			cfg.Project.Root = absRoot
		} else {
			cfg.Project.Root = projectRoot
		}
	} else if !filepath.IsAbs(cfg.Project.Root) {
		cfg.Project.Root = filepath.Clean(filepath.Join(projectRoot, cfg.Project.Root))
	}

	return cfg, nil
}

// parseKDL parses one .wmlc.kdl document on top of the default config,
// so a file that only overrides a handful of fields still leaves every
// other field at its sensible default.
func parseKDL(content string) (*Config, error) {
	cfg := defaultConfig("")

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", kdlFileName, err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children {
				assignSimpleString(cn, "root", func(v string) { cfg.Project.Root = v })
				assignSimpleString(cn, "name", func(v string) { cfg.Project.Name = v })
			}
		case "preprocess":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "textdomain":
					if s, ok := firstStringArg(cn); ok {
						cfg.Preprocess.InitialTextdomain = s
					}
				case "depth_limit":
					if v, ok := firstIntArg(cn); ok {
						cfg.Preprocess.DepthLimit = v
					}
				case "define":
					// define "NAME" "VALUE" — a preprocessor symbol predefined
					// before the first file is read, as if by #define/#enddef
					// wrapping a single literal.
					if len(cn.Arguments) >= 2 {
						name, okName := cn.Arguments[0].Value.(string)
						value, okValue := cn.Arguments[1].Value.(string)
						if okName && okValue {
							cfg.Preprocess.Defines[name] = value
						}
					}
				case "include":
					cfg.Preprocess.Include = collectStringArgs(cn)
				case "exclude":
					cfg.Preprocess.Exclude = collectStringArgs(cn)
				}
			}
		case "binary":
			for _, cn := range n.Children {
				if nodeName(cn) == "schema_path" {
					if s, ok := firstStringArg(cn); ok {
						cfg.Binary.SchemaPath = s
					}
				}
			}
		}
	}

	return cfg, nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

// collectStringArgs reads either the inline form (`include "a" "b"`) or
// the block form (`include { "a"; "b" }`) kdl-go produces for a node's
// string children.
func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}
