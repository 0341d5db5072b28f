package insight

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure kinds callers may branch on. Validation
// and busy conditions carry enough detail for the caller to adjust;
// backend-side failures are reported opaquely while full detail is logged.
var (
	// ErrBusy means no inference slot freed up within the queue timeout. The
	// caller may retry shortly.
	ErrBusy = errors.New("analysis service busy, try again shortly")
	// ErrBackendUnavailable means the inference backend refused the connection.
	ErrBackendUnavailable = errors.New("analysis unavailable")
	// ErrBackendTimeout means the inference backend did not answer within the
	// read timeout.
	ErrBackendTimeout = errors.New("analysis timed out")
	// ErrBackendStatus means the inference backend answered with a non-success
	// status.
	ErrBackendStatus = errors.New("analysis failed")
	// ErrGeneration wraps any other unexpected failure during generation. Full
	// detail is logged, not returned.
	ErrGeneration = errors.New("analysis unavailable")
)

// ValidationError reports a prompt rejected before any downstream call.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid prompt: %s", e.Reason)
}

// IsValidation reports whether err is a pre-flight prompt rejection.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
