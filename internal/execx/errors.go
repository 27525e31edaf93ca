package execx

import (
	"errors"
	"fmt"
)

// ErrCancelled is returned when a run was stopped by the cancellation
// signal. It is a terminal outcome, not a failure; callers must not log it
// as an error.
var ErrCancelled = errors.New("operation cancelled")

// ErrDecode is returned when captured stdout is not valid UTF-8. Captured
// output is authoritative data (e.g. probe JSON), so it is never silently
// repaired with replacement characters.
var ErrDecode = errors.New("cannot decode process output")

// ExitError reports a non-zero exit status from a captured-mode invocation.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("process exited with status %d", e.Code)
}

// IsCancelled reports whether err stems from cooperative cancellation.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}
