package ident

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dagforge/dagforge/internal/template"
)

// SeqFile is a persistent counter backing auto-generated node-set
// names. Each Next call reads the current value, increments it, and
// rewrites the file with an atomic publish. Concurrent runs of the CLI
// by the same user may observe the same value; node-set names only
// need to be distinct across a user's sequential runs.
type SeqFile struct {
	path string
}

// NewSeqFile returns a SeqFile stored at path.
func NewSeqFile(path string) *SeqFile {
	return &SeqFile{path: path}
}

// DefaultSeqPath is the per-user location of the node-set counter.
func DefaultSeqPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".dagforge", "node-set.seq"), nil
}

// Next increments the counter and returns the new value. A missing
// file starts the sequence at 1.
func (s *SeqFile) Next() (int, error) {
	current := 0
	data, err := os.ReadFile(s.path)
	switch {
	case err == nil:
		current, err = strconv.Atoi(strings.TrimSpace(string(data)))
		if err != nil {
			return 0, fmt.Errorf("corrupt sequence file %s: %w", s.path, err)
		}
	case os.IsNotExist(err):
		// First use, start from zero.
	default:
		return 0, fmt.Errorf("read sequence file: %w", err)
	}

	next := current + 1
	content := []byte(strconv.Itoa(next) + "\n")
	if err := template.WriteFileAtomic(s.path, content, 0o644); err != nil {
		return 0, fmt.Errorf("update sequence file: %w", err)
	}
	return next, nil
}

// NodeSetName builds the auto-generated node-set identifier for a
// sequence value: <user>_<n>.
func NodeSetName(username string, n int) string {
	return fmt.Sprintf("%s_%d", username, n)
}
