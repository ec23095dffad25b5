package pipeline

import "errors"

var (
	// ErrUnknownHook is returned by RunHook for a hook without configuration.
	ErrUnknownHook = errors.New("unknown hook")

	// ErrUnknownCheck indicates a hook lists a check that does not exist.
	ErrUnknownCheck = errors.New("unknown check")
)
