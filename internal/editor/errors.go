package editor

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated = errors.New("user not authenticated")
	ErrBusy            = errors.New("submission already in progress")
)

// ValidationError is a local input problem; the draft stays editable.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}

// UploadError aborts a submission when a staged photo could not be stored.
type UploadError struct {
	File string
	Err  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("failed to upload photo %q: %v", e.File, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// PersistenceError wraps a failed insert or update, including an update that
// matched no row owned by the caller.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s trash: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
