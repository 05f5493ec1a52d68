package editor

import (
	"errors"
	"fmt"
)

var (
	ErrNoCamera            = errors.New("no camera selected")
	ErrNoSnapshot          = errors.New("snapshot not loaded")
	ErrSnapshotUnavailable = errors.New("snapshot unavailable")
	ErrSaveInProgress      = errors.New("save already in progress")
	ErrSuperseded          = errors.New("camera selection superseded")
)

const genericPersistDetail = "failed to save region of interest"

// PersistError is returned by Session.Save when the store refused or failed
// the write. Detail prefers the store's own message.
type PersistError struct {
	Detail string
	Err    error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist roi: %s", e.Detail)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

func newPersistError(err error) error {
	var rejected *RejectedError
	if errors.As(err, &rejected) {
		return rejected
	}

	detail := genericPersistDetail
	var d DetailedError
	if errors.As(err, &d) && d.Detail() != "" {
		detail = d.Detail()
	}
	return &PersistError{Detail: detail, Err: err}
}
