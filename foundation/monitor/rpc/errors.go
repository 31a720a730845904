package rpc

import "fmt"

// NetworkError indicates the node could not be reached or did not answer
// within the client timeout. The node is skipped for the cycle.
type NetworkError struct {
	URL string
	Err error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("node %s unreachable: %s", e.URL, e.Err)
}

// Unwrap exposes the underlying transport error.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ProtocolError indicates the node answered with something that isn't a
// well-formed JSON-RPC result. The node is skipped for the cycle.
type ProtocolError struct {
	URL string
	Err error
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	return fmt.Sprintf("node %s returned a bad response: %s", e.URL, e.Err)
}

// Unwrap exposes the underlying decode error.
func (e *ProtocolError) Unwrap() error {
	return e.Err
}
