package euronet

import (
	"errors"
	"fmt"
)

var (
	// ErrUpdateFailed is matched by every failed poll cycle.
	ErrUpdateFailed = errors.New("update failed")

	// ErrCycleTimeout means the whole poll cycle ran out of time.
	ErrCycleTimeout = errors.New("poll cycle timed out")

	// ErrUnauthorized means the panel rejected the credentials.
	ErrUnauthorized = errors.New("invalid username or password")
)

// TransportError is a failed request to the panel.
type TransportError struct {
	Command Command
	Err     error
}

func (e *TransportError) Error() string {
	if e.Command == "" {
		return fmt.Sprintf("request failed: %v", e.Err)
	}
	return fmt.Sprintf("request %q failed: %v", string(e.Command), e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
