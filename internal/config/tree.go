// Package config loads the hierarchical workflow description into an
// immutable tree and offers typed views over it. The tree is built
// once per run; downstream packages only ever read it.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind discriminates the three node shapes a tree can hold.
type Kind int

const (
	// KindScalar is a leaf string value.
	KindScalar Kind = iota
	// KindMapping is a set of named children in document order.
	KindMapping
	// KindSequence is an ordered list of children.
	KindSequence
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindMapping:
		return "mapping"
	case KindSequence:
		return "sequence"
	default:
		return "unknown"
	}
}

// KeyError reports a lookup of a configuration path that does not
// exist. Lookups never fall back to defaults silently.
type KeyError struct {
	Path []string
}

// Error implements the error interface.
func (e *KeyError) Error() string {
	return "config key not found: " + strings.Join(e.Path, ".")
}

// TypeError reports a node accessed as the wrong kind or an
// unparseable scalar.
type TypeError struct {
	Path []string
	Want string
	Got  string
}

// Error implements the error interface.
func (e *TypeError) Error() string {
	return fmt.Sprintf("config key %s: want %s, got %s", strings.Join(e.Path, "."), e.Want, e.Got)
}

// Node is one vertex of the configuration tree. Nodes are immutable
// after loading; there is no exported mutation API.
type Node struct {
	kind     Kind
	value    string
	null     bool
	keys     []string
	children map[string]*Node
	items    []*Node
	path     []string
}

// Kind returns the node's shape.
func (n *Node) Kind() Kind {
	return n.kind
}

// Path returns the dotted path of the node from the document root.
func (n *Node) Path() string {
	if len(n.path) == 0 {
		return "(root)"
	}
	return strings.Join(n.path, ".")
}

// IsNull reports whether the node is an explicit YAML null. A null
// keyword block reads as an empty mapping through StringMap.
func (n *Node) IsNull() bool {
	return n.null
}

// Get descends the tree along path. Every segment must name an
// existing mapping child; a missing segment fails with *KeyError
// carrying the full path that was not found.
func (n *Node) Get(path ...string) (*Node, error) {
	current := n
	for i, segment := range path {
		if current.kind != KindMapping {
			return nil, &TypeError{Path: current.path, Want: "mapping", Got: current.kind.String()}
		}
		child, ok := current.children[segment]
		if !ok {
			missing := make([]string, 0, len(n.path)+i+1)
			missing = append(missing, n.path...)
			missing = append(missing, path[:i+1]...)
			return nil, &KeyError{Path: missing}
		}
		current = child
	}
	return current, nil
}

// Has reports whether the path exists.
func (n *Node) Has(path ...string) bool {
	_, err := n.Get(path...)
	return err == nil
}

// Child returns a direct mapping child.
func (n *Node) Child(key string) (*Node, bool) {
	if n.kind != KindMapping {
		return nil, false
	}
	child, ok := n.children[key]
	return child, ok
}

// Keys returns the mapping's child names in document order.
func (n *Node) Keys() []string {
	out := make([]string, len(n.keys))
	copy(out, n.keys)
	return out
}

// Items returns the sequence's children.
func (n *Node) Items() []*Node {
	out := make([]*Node, len(n.items))
	copy(out, n.items)
	return out
}

// String returns the scalar value.
func (n *Node) String() (string, error) {
	if n.kind != KindScalar {
		return "", &TypeError{Path: n.path, Want: "scalar", Got: n.kind.String()}
	}
	return n.value, nil
}

// Int returns the scalar parsed as an integer.
func (n *Node) Int() (int, error) {
	s, err := n.String()
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, &TypeError{Path: n.path, Want: "integer", Got: fmt.Sprintf("%q", s)}
	}
	return v, nil
}

// Bool returns the scalar parsed as a boolean.
func (n *Node) Bool() (bool, error) {
	s, err := n.String()
	if err != nil {
		return false, err
	}
	v, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, &TypeError{Path: n.path, Want: "boolean", Got: fmt.Sprintf("%q", s)}
	}
	return v, nil
}

// StringMap returns a mapping of scalar children. A null node reads as
// an empty map, which is how empty keyword blocks come through.
func (n *Node) StringMap() (map[string]string, error) {
	if n.null {
		return map[string]string{}, nil
	}
	if n.kind != KindMapping {
		return nil, &TypeError{Path: n.path, Want: "mapping", Got: n.kind.String()}
	}
	out := make(map[string]string, len(n.keys))
	for _, key := range n.keys {
		v, err := n.children[key].String()
		if err != nil {
			return nil, err
		}
		out[key] = v
	}
	return out, nil
}

// StringSlice returns a sequence of scalar children.
func (n *Node) StringSlice() ([]string, error) {
	if n.kind != KindSequence {
		return nil, &TypeError{Path: n.path, Want: "sequence", Got: n.kind.String()}
	}
	out := make([]string, 0, len(n.items))
	for _, item := range n.items {
		v, err := item.String()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// GetString is Get followed by String.
func (n *Node) GetString(path ...string) (string, error) {
	child, err := n.Get(path...)
	if err != nil {
		return "", err
	}
	return child.String()
}

// GetInt is Get followed by Int.
func (n *Node) GetInt(path ...string) (int, error) {
	child, err := n.Get(path...)
	if err != nil {
		return 0, err
	}
	return child.Int()
}

// GetBool is Get followed by Bool.
func (n *Node) GetBool(path ...string) (bool, error) {
	child, err := n.Get(path...)
	if err != nil {
		return false, err
	}
	return child.Bool()
}

// OptionalString returns the scalar at path, reporting absence
// without an error. Type mismatches still fail.
func (n *Node) OptionalString(path ...string) (string, bool, error) {
	child, err := n.Get(path...)
	if err != nil {
		if isKeyError(err) {
			return "", false, nil
		}
		return "", false, err
	}
	if child.IsNull() {
		return "", false, nil
	}
	s, err := child.String()
	if err != nil {
		return "", false, err
	}
	return s, true, nil
}

// OptionalInt returns the integer at path, reporting absence without
// an error.
func (n *Node) OptionalInt(path ...string) (int, bool, error) {
	child, err := n.Get(path...)
	if err != nil {
		if isKeyError(err) {
			return 0, false, nil
		}
		return 0, false, err
	}
	if child.IsNull() {
		return 0, false, nil
	}
	v, err := child.Int()
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

// OptionalBool returns the boolean at path, reporting absence without
// an error.
func (n *Node) OptionalBool(path ...string) (bool, bool, error) {
	child, err := n.Get(path...)
	if err != nil {
		if isKeyError(err) {
			return false, false, nil
		}
		return false, false, err
	}
	if child.IsNull() {
		return false, false, nil
	}
	v, err := child.Bool()
	if err != nil {
		return false, false, err
	}
	return v, true, nil
}

func isKeyError(err error) bool {
	var keyErr *KeyError
	return errors.As(err, &keyErr)
}

// addChild grafts a child onto a mapping node. Loader use only; the
// tree is sealed once LoadDocument returns.
func (n *Node) addChild(key string, child *Node) error {
	if n.kind != KindMapping {
		return &TypeError{Path: n.path, Want: "mapping", Got: n.kind.String()}
	}
	if _, exists := n.children[key]; exists {
		return fmt.Errorf("duplicate key %q at %s", key, n.Path())
	}
	n.keys = append(n.keys, key)
	n.children[key] = child
	return nil
}
