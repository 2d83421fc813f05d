package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Load reads and parses a YAML file into a tree.
func Load(path string) (*Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return LoadBytes(data, path)
}

// LoadBytes parses YAML into a tree. origin names the source in
// errors. The yaml Node API is used directly so mapping keys keep
// their document order, which makes iteration deterministic.
func LoadBytes(data []byte, origin string) (*Node, error) {
	return loadBytesAt(data, origin, nil)
}

func loadBytesAt(data []byte, origin string, at []string) (*Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", origin, err)
	}

	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		// Empty document: an empty mapping root.
		return &Node{kind: KindMapping, children: map[string]*Node{}, path: at}, nil
	}

	root, err := fromYAML(doc.Content[0], at)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", origin, err)
	}
	return root, nil
}

func fromYAML(n *yaml.Node, path []string) (*Node, error) {
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}

	switch n.Kind {
	case yaml.ScalarNode:
		return &Node{
			kind:  KindScalar,
			value: n.Value,
			null:  n.Tag == "!!null",
			path:  path,
		}, nil

	case yaml.MappingNode:
		node := &Node{
			kind:     KindMapping,
			children: make(map[string]*Node, len(n.Content)/2),
			path:     path,
		}
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			if _, exists := node.children[key]; exists {
				return nil, fmt.Errorf("duplicate key %q at %s (line %d)", key, node.Path(), n.Content[i].Line)
			}
			childPath := childPath(path, key)
			child, err := fromYAML(n.Content[i+1], childPath)
			if err != nil {
				return nil, err
			}
			node.keys = append(node.keys, key)
			node.children[key] = child
		}
		return node, nil

	case yaml.SequenceNode:
		node := &Node{kind: KindSequence, path: path}
		for i, item := range n.Content {
			child, err := fromYAML(item, childPath(path, strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}
			node.items = append(node.items, child)
		}
		return node, nil

	default:
		return nil, fmt.Errorf("unsupported YAML node kind at %v (line %d)", path, n.Line)
	}
}

func childPath(parent []string, key string) []string {
	path := make([]string, 0, len(parent)+1)
	path = append(path, parent...)
	path = append(path, key)
	return path
}
