package template

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Output permission modes for generated artifacts.
const (
	// ModeScript marks shell scripts executable.
	ModeScript fs.FileMode = 0o755
	// ModeData is for submit files, DAG descriptions, and manifests.
	ModeData fs.FileMode = 0o644
)

// Lookup resolves a token name to its value. *keyword.Table satisfies
// this through its Lookup method.
type Lookup interface {
	Lookup(name string) (string, bool)
}

// Expand substitutes every token in s from the table. It fails with
// *UnresolvedTokenError on the first token that has no entry.
func Expand(s string, table Lookup) (string, error) {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '$' {
			b.WriteByte(c)
			continue
		}
		name, end := scanToken(s, i+1)
		if name == "" {
			b.WriteByte(c)
			continue
		}
		value, ok := table.Lookup(name)
		if !ok {
			return "", &UnresolvedTokenError{Token: name}
		}
		b.WriteString(value)
		i = end - 1
	}

	return b.String(), nil
}

// Render reads the template file and substitutes every token from the
// table. The rendered bytes are returned without touching the
// filesystem; identical inputs always yield identical output.
func Render(templatePath string, table Lookup) ([]byte, error) {
	data, err := os.ReadFile(templatePath)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}

	rendered, err := Expand(string(data), table)
	if err != nil {
		var unresolved *UnresolvedTokenError
		if errors.As(err, &unresolved) {
			unresolved.TemplatePath = templatePath
		}
		return nil, err
	}
	return []byte(rendered), nil
}

// RenderToFile renders the template and writes the result to
// outputPath with the given mode. The render happens fully in memory
// first; substitution failure therefore leaves no file behind, and the
// write itself publishes atomically.
func RenderToFile(templatePath, outputPath string, table Lookup, mode fs.FileMode) error {
	rendered, err := Render(templatePath, table)
	if err != nil {
		return err
	}
	return WriteFileAtomic(outputPath, rendered, mode)
}

// WriteFileAtomic writes data to a temporary file in path's directory
// and moves it into place with a single rename, so no reader ever
// observes a half-written artifact. Every generated artifact, rendered
// or engine-built, is published through this path. On failure the
// temporary file is removed and path is untouched.
func WriteFileAtomic(path string, data []byte, mode fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".staged-*")
	if err != nil {
		return fmt.Errorf("create temporary file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", path, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("publish %s: %w", path, err)
	}
	return nil
}
