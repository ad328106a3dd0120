// Package driven defines secondary port interfaces for external adapters.
package driven

import "errors"

// Sentinel errors returned by driven adapters. Adapters wrap them with context;
// callers test with errors.Is.
var (
	// ErrAuth indicates the instance rejected the group's credentials. A run
	// that hits it cannot continue and the group must be registered again.
	ErrAuth = errors.New("mastodon: credentials rejected")

	// ErrTransport indicates the instance could not be reached or answered with
	// an unexpected status.
	ErrTransport = errors.New("mastodon: transport failure")

	// ErrRejected indicates the instance refused one specific request (the
	// status is gone, the text is too long, the file type is unsupported).
	// Other requests of the same run may still succeed.
	ErrRejected = errors.New("mastodon: request rejected")

	// ErrGroupNotFound indicates the requested group is not registered.
	ErrGroupNotFound = errors.New("group not found")

	// ErrGroupAlreadyExists indicates a group with the same name is registered.
	ErrGroupAlreadyExists = errors.New("group already exists")
)
