package graph

import (
	"fmt"
)

// CycleError reports a cycle in the graph. Path starts and ends with the
// same node ID.
type CycleError struct {
	Path []any
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle of %d nodes", len(e.Path)-1)
}
