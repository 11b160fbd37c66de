package scheduling

import "errors"

var (
	// ErrMissingDependency is returned when a required collaborator is nil.
	ErrMissingDependency = errors.New("scheduling: missing dependency")
	errNoConfirmation    = errors.New("scheduling: submitter returned no confirmation")
)
