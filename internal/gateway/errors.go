package gateway

import "fmt"

// RemoteError is a transport fault or a server-reported failure. Message
// carries the server's own wording when it provided one.
type RemoteError struct {
	Status  int
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	if e.Status != 0 {
		return fmt.Sprintf("unexpected response from inventory service (status %d)", e.Status)
	}

	return "inventory service request failed"
}

func (e *RemoteError) Unwrap() error { return e.Err }

// VerifyError is a negative verification outcome: the service answered, the
// face just did not match. It is a valid result, not a fault.
type VerifyError struct {
	Reason string
}

func (e *VerifyError) Error() string {
	if e.Reason == "" {
		return "face not recognized"
	}

	return e.Reason
}
