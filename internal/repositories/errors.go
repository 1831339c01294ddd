package repositories

import "errors"

// ErrNotFound is returned when a record does not exist or is not visible
// to the requesting owner. Callers cannot tell the two cases apart.
var ErrNotFound = errors.New("record not found")

// ErrDuplicateEmail is returned when the unique email constraint rejects
// a user create. The constraint lives in the database so concurrent
// registrations cannot race past an application-level check.
var ErrDuplicateEmail = errors.New("email already registered")
