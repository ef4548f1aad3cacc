package store

import (
	"fmt"
	"strings"
)

// PreconditionError reports reference data that is missing or incomplete.
// Fatal and non-retryable: the caller must re-run dataset preparation
// before any search can execute.
type PreconditionError struct {
	// Missing names each absent table or file.
	Missing []string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("reference data not ready: missing %s; run dataset preparation first",
		strings.Join(e.Missing, ", "))
}
