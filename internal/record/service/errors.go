package service

import "fmt"

// ValidationError reports a client-caused input problem (HTTP 400).
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// StorageError wraps any failure of a store call (HTTP 500). Err carries the
// underlying message that is reported to the caller verbatim.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("store %s: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() error { return e.Err }

// Detail is the underlying store message.
func (e *StorageError) Detail() string { return e.Err.Error() }

// MethodNotSupportedError reports a request shape the gateway does not serve (HTTP 405).
type MethodNotSupportedError struct {
	Method string
}

func (e *MethodNotSupportedError) Error() string {
	return fmt.Sprintf("method %s not supported", e.Method)
}
