package appointments

import "errors"

var (
	// ErrBackendStatus is returned when the scheduling backend answers with a non-2xx status.
	ErrBackendStatus = errors.New("appointments: backend returned non-success status")
	// ErrMalformedResponse is returned when a 2xx body cannot be used.
	ErrMalformedResponse = errors.New("appointments: malformed backend response")
	// ErrRecordNotFound is returned when an attempt record does not exist.
	ErrRecordNotFound = errors.New("appointments: record not found")
)
