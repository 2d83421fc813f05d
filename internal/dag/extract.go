package dag

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

var varsLine = regexp.MustCompile(`^VARS\s+(\S+)\s+` + varKey + `="([^"]*)"\s*$`)

// ExtractNodeVars recovers a node's unit identifier list from a DAG
// description by reading its VARS line. Manifest verification uses it
// to cross-check the written DAG against the recorded node table.
func ExtractNodeVars(r io.Reader, node string) ([]string, error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		m := varsLine.FindStringSubmatch(scanner.Text())
		if m == nil || m[1] != node {
			continue
		}
		return strings.Fields(m[2]), nil
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read dag description: %w", err)
	}
	return nil, fmt.Errorf("no VARS entry for node %q", node)
}

// ExtractNodeVarsFile is ExtractNodeVars over a file on disk.
func ExtractNodeVarsFile(path, node string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dag description: %w", err)
	}
	defer f.Close()
	return ExtractNodeVars(f, node)
}
