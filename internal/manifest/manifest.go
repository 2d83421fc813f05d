// Package manifest records what a generation run produced for one
// task: every artifact with its blake3 digest, and the DAG's node
// membership. Verify detects drift between the record and the files
// on disk.
package manifest

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"

	"github.com/dagforge/dagforge/internal/template"
)

const (
	// Filename is the manifest's name inside a task output directory.
	Filename = "manifest.yaml"

	// Schema identifies the manifest document format.
	Schema = "dagforge/manifest/v1"
)

// Manifest is the per-task generation record.
type Manifest struct {
	Schema       string     `yaml:"schema"`
	GenerationID string     `yaml:"generationId"`
	RunID        string     `yaml:"runId"`
	Platform     string     `yaml:"platform"`
	Workflow     string     `yaml:"workflow"`
	Task         string     `yaml:"task"`
	Created      time.Time  `yaml:"created"`
	Artifacts    []Artifact `yaml:"artifacts"`
	Dag          DagInfo    `yaml:"dag"`
}

// Artifact is one generated file, with path relative to the manifest's
// directory.
type Artifact struct {
	Path   string `yaml:"path"`
	Phase  string `yaml:"phase"`
	Node   string `yaml:"node,omitempty"`
	Mode   string `yaml:"mode"`
	Size   int64  `yaml:"size"`
	Digest string `yaml:"blake3"`
}

// DagInfo records the DAG description file and its worker membership,
// cross-checked against the file's VARS lines during verification.
type DagInfo struct {
	File  string     `yaml:"file"`
	Nodes []NodeInfo `yaml:"nodes"`
}

// NodeInfo is one worker node's recorded unit list.
type NodeInfo struct {
	Name  string   `yaml:"name"`
	Units []string `yaml:"units"`
}

// HashFile returns the hex blake3 digest of the file and its size.
func HashFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := blake3.New()
	size, err := io.Copy(h, f)
	if err != nil {
		return "", 0, fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), size, nil
}

// NewArtifact stats and hashes dir/rel and returns its record.
func NewArtifact(dir, rel, phase, node string) (Artifact, error) {
	full := filepath.Join(dir, rel)
	info, err := os.Stat(full)
	if err != nil {
		return Artifact{}, fmt.Errorf("stat %s: %w", full, err)
	}
	digest, size, err := HashFile(full)
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{
		Path:   rel,
		Phase:  phase,
		Node:   node,
		Mode:   fmt.Sprintf("%04o", info.Mode().Perm()),
		Size:   size,
		Digest: digest,
	}, nil
}

// Write serializes the manifest to path with an atomic publish.
func (m *Manifest) Write(path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return template.WriteFileAtomic(path, data, template.ModeData)
}

// Load reads a manifest and checks its schema marker.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if m.Schema != Schema {
		return nil, fmt.Errorf("manifest %s: unsupported schema %q (want %q)", path, m.Schema, Schema)
	}
	return &m, nil
}
