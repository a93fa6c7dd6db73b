package domain

import "fmt"

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}

// ErrRemoteMissing signals that the shared remote document does not
// exist yet. The caller is expected to seed it.
var ErrRemoteMissing = NotFoundError{Resource: "remote snapshot"}

// SyncError represents a failed remote store operation. Denied marks
// access-denied conditions, which are logged distinctly but handled the
// same as any other transport failure.
type SyncError struct {
	Cause  error
	Denied bool
}

func (e SyncError) Error() string {
	msg := "remote store unavailable"
	if e.Denied {
		msg = "remote store access denied"
	}
	if e.Cause == nil {
		return msg
	}
	return fmt.Sprintf("%s: %v", msg, e.Cause)
}

func (e SyncError) Unwrap() error {
	return e.Cause
}

// Is enables errors.Is matching on SyncError.
func (e SyncError) Is(target error) bool {
	_, ok := target.(SyncError)
	if ok {
		return true
	}
	_, ok = target.(*SyncError)
	return ok
}

// ErrSync is the sentinel error for remote store failures.
var ErrSync = SyncError{}
