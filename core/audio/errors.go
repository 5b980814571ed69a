package audio

import (
	"errors"
	"fmt"
)

// ErrPermissionDenied is returned by capture backends when the microphone
// device cannot be acquired. It is user-recoverable: the caller may retry
// after the user grants access.
var ErrPermissionDenied = errors.New("microphone permission denied")

// DecodeError reports a malformed audio payload. Playback paths treat it as
// non-fatal: the turn proceeds as if playback completed.
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("malformed audio payload: %s", e.Reason)
}
