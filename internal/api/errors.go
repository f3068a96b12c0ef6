package api

import "errors"

// ErrSessionInvalidated is returned when a request came back 401. By the
// time a caller sees it the persisted token is gone and the
// session-invalidated handler has fired; the caller should send the user
// back to login rather than render it as an ordinary failure.
var ErrSessionInvalidated = errors.New("session invalidated")

// Error is a non-2xx server response carrying the backend's message.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}
