package domain

import "errors"

var (
	// ErrInvalidCommand marks a malformed explicit moderation request. It is
	// surfaced to the command adapter and never reaches the enforcer.
	ErrInvalidCommand = errors.New("invalid moderation command")

	// ErrSequenceUnavailable means the event log could not obtain a fresh
	// sequence id. This breaks the ordering invariant and is the only error
	// in the core treated as fatal.
	ErrSequenceUnavailable = errors.New("event sequence unavailable")

	// ErrPermissionDenied is returned by the platform adapter when the bot
	// lacks permission for an action.
	ErrPermissionDenied = errors.New("platform permission denied")

	// ErrNotFound is returned by the platform adapter when the target
	// entity no longer exists, e.g. a message already deleted.
	ErrNotFound = errors.New("platform entity not found")
)
