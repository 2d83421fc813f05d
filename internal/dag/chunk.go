// Package dag partitions a task's work-unit list into scheduler-sized
// batches and writes the DAG description that wires the resulting jobs
// into a pre -> workers -> post star topology.
package dag

import (
	"fmt"
	"strings"
)

// Node is one worker batch produced by Chunk. It covers the half-open
// unit index range [First, Last) and, once Assign has run, carries the
// actual unit identifiers for that range.
type Node struct {
	// Name is unique within the DAG, worker_1 .. worker_N.
	Name string

	// First and Last bound the node's unit index range [First, Last).
	First int
	Last  int

	// Units holds the resolved work-unit identifiers, filled by Assign.
	Units []string
}

// Count returns the number of units assigned to the node.
func (n Node) Count() int {
	return n.Last - n.First
}

// Chunk partitions totalUnits work units into ceil(totalUnits/idsPerJob)
// nodes. Unit i belongs to node i/idsPerJob; the last node holds the
// remainder. The result is deterministic in its inputs, so regenerating
// a task always reproduces the same node membership.
func Chunk(totalUnits, idsPerJob int) ([]Node, error) {
	if idsPerJob <= 0 {
		return nil, &InvalidChunkSizeError{Size: idsPerJob}
	}
	if totalUnits < 0 {
		return nil, fmt.Errorf("negative total units: %d", totalUnits)
	}
	if totalUnits == 0 {
		return []Node{}, nil
	}

	count := (totalUnits + idsPerJob - 1) / idsPerJob
	nodes := make([]Node, 0, count)
	for i := 0; i < count; i++ {
		first := i * idsPerJob
		last := first + idsPerJob
		if last > totalUnits {
			last = totalUnits
		}
		nodes = append(nodes, Node{
			Name:  fmt.Sprintf("worker_%d", i+1),
			First: first,
			Last:  last,
		})
	}
	return nodes, nil
}

// Assign attaches the real unit identifiers to each node's range. The
// identifier list must cover every unit index exactly. Identifiers
// become unquoted words inside the DAG's VARS lines, so whitespace and
// quotes are rejected.
func Assign(nodes []Node, unitIDs []string) error {
	total := 0
	for _, n := range nodes {
		if n.Last > total {
			total = n.Last
		}
	}
	if len(unitIDs) != total {
		return fmt.Errorf("unit id count %d does not match chunked total %d", len(unitIDs), total)
	}
	for _, id := range unitIDs {
		if id == "" || strings.ContainsAny(id, " \t\"") {
			return fmt.Errorf("invalid unit id %q: must be non-empty without whitespace or quotes", id)
		}
	}
	for i := range nodes {
		nodes[i].Units = unitIDs[nodes[i].First:nodes[i].Last]
	}
	return nil
}
