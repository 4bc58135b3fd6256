package services

import "errors"

// Failure taxonomy for the voting flow. Handlers map these to user-facing
// responses; everything else bubbles up as an internal storage error.
var (
	// ErrInvalidCode means the submitted token doesn't resolve to an active code.
	ErrInvalidCode = errors.New("invalid voting code")
	// ErrCodeExhausted means the code exists but has no uses remaining.
	ErrCodeExhausted = errors.New("voting code exhausted")
	// ErrSessionCompleted means a mutation was attempted on a completed session.
	ErrSessionCompleted = errors.New("voting session already completed")
	// ErrMissingSelection means the voter tried to advance without picking a person.
	ErrMissingSelection = errors.New("no person selected")
	// ErrInvalidPerson means the submitted person ID doesn't exist.
	ErrInvalidPerson = errors.New("invalid person selection")
	// ErrIncompleteBallot means finalize was attempted before every category
	// in the session's snapshot had a staged selection.
	ErrIncompleteBallot = errors.New("not every category has a selection")
	// ErrFinalizationConflict means the finalize transaction hit a storage
	// constraint (typically a concurrent finalize of the same session) and
	// was rolled back; the session stays in progress and may be retried.
	ErrFinalizationConflict = errors.New("could not complete voting")
)
