package evolution

import "fmt"

// TransportError is a network/connection level failure talking to the
// Evolution API. The gateway was never reached or the request never
// completed.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("Evolution API %s request failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError is a non-success status or an unexpected response shape
// from the gateway. The raw status and body are kept verbatim for
// diagnostics; they must not be collapsed into a generic message.
type ProtocolError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("Evolution API %s error: status %d, body: %s", e.Op, e.StatusCode, e.Body)
}
