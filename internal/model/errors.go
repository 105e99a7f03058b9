package model

import "errors"

var (
	// ErrNotFound marks a missing dictionary or history source.
	ErrNotFound = errors.New("resource not found")
	// ErrNoCandidates marks an empty candidate result. It is a normal outcome.
	ErrNoCandidates = errors.New("no candidate words matched")
	// ErrCorruptData marks an unparseable persisted history row.
	ErrCorruptData = errors.New("corrupt data")
	// ErrInvalidLetters marks unusable puzzle letters.
	ErrInvalidLetters = errors.New("invalid puzzle letters")
	// ErrStopped is returned by a submitter that wants the session to end.
	ErrStopped = errors.New("session stopped")
)
