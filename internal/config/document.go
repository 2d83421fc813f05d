package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Document is a loaded workflow description with every referenced
// platform grafted in. It is the single configuration input to a
// generation run; nothing mutates it after LoadDocument returns.
type Document struct {
	root             *Node
	origin           string
	dir              string
	platformOverride string
}

// LoadOptions steer platform resolution while loading a document.
type LoadOptions struct {
	// PlatformName overrides the platform declared by each workflow.
	PlatformName string

	// PlatformFile is an explicit platform file, used for any platform
	// not defined inline in the document.
	PlatformFile string

	// PlatformDirs are extra directories searched for platform files,
	// after the standard user locations.
	PlatformDirs []string
}

// LoadDocument loads the workflow file at path and resolves every
// platform it references: platforms defined inline under "platforms"
// are used as-is, anything else is located via FindPlatformFile and
// grafted into the tree.
func LoadDocument(path string, opts LoadOptions) (*Document, error) {
	root, err := Load(path)
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	doc := &Document{
		root:             root,
		origin:           path,
		dir:              filepath.Dir(abs),
		platformOverride: opts.PlatformName,
	}

	workflows, err := root.Get("workflows")
	if err != nil {
		return nil, err
	}

	for _, wfName := range workflows.Keys() {
		platformName := opts.PlatformName
		if platformName == "" {
			platformName, err = root.GetString("workflows", wfName, "platform")
			if err != nil {
				return nil, fmt.Errorf("workflow %s: %w", wfName, err)
			}
		}
		if root.Has("platforms", platformName) {
			continue
		}

		file, err := FindPlatformFile(platformName, opts.PlatformFile, opts.PlatformDirs)
		if err != nil {
			return nil, fmt.Errorf("workflow %s: %w", wfName, err)
		}
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read platform file: %w", err)
		}
		platformNode, err := loadBytesAt(data, file, []string{"platforms", platformName})
		if err != nil {
			return nil, err
		}

		platforms, ok := root.Child("platforms")
		if !ok {
			platforms = &Node{kind: KindMapping, children: map[string]*Node{}, path: []string{"platforms"}}
			if err := root.addChild("platforms", platforms); err != nil {
				return nil, err
			}
		}
		if err := platforms.addChild(platformName, platformNode); err != nil {
			return nil, err
		}
	}

	return doc, nil
}

// Tree returns the document root.
func (d *Document) Tree() *Node {
	return d.root
}

// Origin returns the workflow file path as given.
func (d *Document) Origin() string {
	return d.origin
}

// Dir returns the absolute directory of the workflow file. Relative
// template and input paths resolve against it.
func (d *Document) Dir() string {
	return d.dir
}

// ResolvePath makes a configuration-sourced path absolute relative to
// the document's directory.
func (d *Document) ResolvePath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(d.dir, p)
}
