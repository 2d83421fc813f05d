package dag

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk(t *testing.T) {
	tests := []struct {
		name       string
		totalUnits int
		idsPerJob  int
		wantSizes  []int
	}{
		{"empty input", 0, 25, []int{}},
		{"single partial node", 10, 25, []int{10}},
		{"exact fit", 50, 25, []int{25, 25}},
		{"remainder in last node", 64, 25, []int{25, 25, 14}},
		{"one unit per job", 3, 1, []int{1, 1, 1}},
		{"single unit", 1, 100, []int{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes, err := Chunk(tt.totalUnits, tt.idsPerJob)
			require.NoError(t, err)
			require.Len(t, nodes, len(tt.wantSizes))

			next := 0
			for i, node := range nodes {
				assert.Equal(t, fmt.Sprintf("worker_%d", i+1), node.Name)
				assert.Equal(t, next, node.First, "ranges must be contiguous")
				assert.Equal(t, tt.wantSizes[i], node.Count())
				next = node.Last
			}
			assert.Equal(t, tt.totalUnits, next, "ranges must cover every unit")
		})
	}
}

func TestChunkPartitionsWithoutGaps(t *testing.T) {
	// Every unit index must land in exactly one node.
	for _, totalUnits := range []int{1, 7, 24, 25, 26, 99} {
		nodes, err := Chunk(totalUnits, 7)
		require.NoError(t, err)

		owner := make(map[int]string)
		for _, node := range nodes {
			for i := node.First; i < node.Last; i++ {
				_, dup := owner[i]
				require.False(t, dup, "unit %d assigned twice", i)
				owner[i] = node.Name
			}
		}
		assert.Len(t, owner, totalUnits)
	}
}

func TestChunkInvalidSize(t *testing.T) {
	for _, idsPerJob := range []int{0, -1, -25} {
		t.Run(fmt.Sprintf("idsPerJob=%d", idsPerJob), func(t *testing.T) {
			_, err := Chunk(10, idsPerJob)

			var invalid *InvalidChunkSizeError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, idsPerJob, invalid.Size)
		})
	}
}

func TestChunkNegativeTotal(t *testing.T) {
	_, err := Chunk(-1, 5)
	require.Error(t, err)

	var invalid *InvalidChunkSizeError
	assert.False(t, errors.As(err, &invalid), "negative totals are not a chunk-size error")
}

func TestChunkDeterministic(t *testing.T) {
	first, err := Chunk(64, 25)
	require.NoError(t, err)
	second, err := Chunk(64, 25)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAssign(t *testing.T) {
	nodes, err := Chunk(5, 2)
	require.NoError(t, err)

	ids := []string{"v100", "v101", "v102", "v103", "v104"}
	require.NoError(t, Assign(nodes, ids))

	assert.Equal(t, []string{"v100", "v101"}, nodes[0].Units)
	assert.Equal(t, []string{"v102", "v103"}, nodes[1].Units)
	assert.Equal(t, []string{"v104"}, nodes[2].Units)
}

func TestAssignCountMismatch(t *testing.T) {
	nodes, err := Chunk(5, 2)
	require.NoError(t, err)

	err = Assign(nodes, []string{"v100", "v101"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match")
}

func TestAssignRejectsUnquotableIDs(t *testing.T) {
	nodes, err := Chunk(1, 1)
	require.NoError(t, err)

	for _, id := range []string{"", "has space", "has\ttab", `has"quote`} {
		assert.Error(t, Assign(nodes, []string{id}), "id %q", id)
	}
}
