package tree

import (
	"io"

	"gopkg.in/yaml.v3"
)

// yamlNode is the plain-data shadow of Node that gopkg.in/yaml.v3 knows
// how to marshal; Node itself keeps its fields unexported so this
// conversion is one-directional and carries no translation metadata.
type yamlNode struct {
	Attrs    map[string]string `yaml:"attrs,omitempty"`
	Children []yamlChild       `yaml:"children,omitempty"`
}

type yamlChild struct {
	Tag  string   `yaml:"tag"`
	Node yamlNode `yaml:"node"`
}

func (n *Node) toYAML() yamlNode {
	var y yamlNode
	if len(n.attrs) > 0 {
		y.Attrs = make(map[string]string, len(n.attrs))
		for k, v := range n.attrs {
			y.Attrs[k] = v.Raw()
		}
	}
	for _, c := range n.children {
		y.Children = append(y.Children, yamlChild{Tag: c.Tag, Node: c.Node.toYAML()})
	}
	return y
}

// DumpYAML renders the node (attributes and nested children) as YAML,
// for human inspection only. It is not a round-trip format: runs and
// textdomain bindings are flattened to their raw text. write_text and
// read_text remain the only codec pair with round-trip obligations.
func (n *Node) DumpYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(n.toYAML())
}
