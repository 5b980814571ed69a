package interviews

import "fmt"

// ConnectionError reports that the interview service was unreachable or
// returned a non-success status on an exchange with no structured failure
// body. It is fatal to the attempt; no automatic retry is performed.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("interview service %s failed: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ProcessingError reports that the service rejected a respond exchange. The
// detail message is server-supplied and safe to surface to the user. The turn
// machine returns to idle without mutating the transcript.
type ProcessingError struct {
	StatusCode int
	Detail     string
}

func (e *ProcessingError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("interview service rejected the response (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("interview service rejected the response: %s", e.Detail)
}
