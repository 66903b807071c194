package queue

import "errors"

// errItemNotFound marks a mutation aimed at an item that no longer exists.
// Status and detail updates race with concurrent removal by design, so the
// engine swallows this instead of surfacing it.
var errItemNotFound = errors.New("queue item not found")

// WriteError reports a failed queue mutation against the remote backend. It
// carries the best available message: the server's own, else a generic
// fallback. Read failures are never reported this way; reads degrade to an
// empty snapshot instead.
type WriteError struct {
	Op      string
	Message string
	Err     error
}

func (e *WriteError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "queue " + e.Op + " failed"
}

func (e *WriteError) Unwrap() error { return e.Err }

func writeErr(op, message string, err error) *WriteError {
	if message == "" {
		message = "queue " + op + " failed"
	}
	return &WriteError{Op: op, Message: message, Err: err}
}
