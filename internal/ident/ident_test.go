package ident

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunID(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	assert.Equal(t, "alice_2026_0314_092653", NewRunID("alice", at))
}

func TestNewRunIDStableWithinSecond(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 26, 53, 999_000_000, time.UTC)
	assert.Equal(t, NewRunID("alice", at), NewRunID("alice", at.Truncate(time.Second)))
}

func TestSeqFileNext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node-set.seq")
	seq := NewSeqFile(path)

	for want := 1; want <= 3; want++ {
		got, err := seq.Next()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "3\n", string(data))
}

func TestSeqFileSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node-set.seq")

	first, err := NewSeqFile(path).Next()
	require.NoError(t, err)
	second, err := NewSeqFile(path).Next()
	require.NoError(t, err)

	assert.Equal(t, first+1, second)
}

func TestSeqFileCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node-set.seq")
	require.NoError(t, os.WriteFile(path, []byte("not a number\n"), 0o644))

	_, err := NewSeqFile(path).Next()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt")
}

func TestSeqFileCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".dagforge", "node-set.seq")

	n, err := NewSeqFile(path).Next()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNodeSetName(t *testing.T) {
	assert.Equal(t, "alice_7", NodeSetName("alice", 7))
}
