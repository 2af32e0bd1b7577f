package session

import "errors"

// ErrFillInProgress is returned when a new space is requested while the previous one is still filling.
var ErrFillInProgress = errors.New("session: fill in progress")
