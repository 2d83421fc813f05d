package dag

import "fmt"

// InvalidChunkSizeError reports a non-positive ids-per-job value. The
// task is aborted before any rendering happens.
type InvalidChunkSizeError struct {
	Size int
}

// Error implements the error interface.
func (e *InvalidChunkSizeError) Error() string {
	return fmt.Sprintf("invalid ids-per-job: %d (must be positive)", e.Size)
}

var _ error = (*InvalidChunkSizeError)(nil)
