// Package apperr defines sentinel error values reused across the core
// services. Handlers match them with errors.Is and translate them into HTTP
// responses; the services themselves never map errors to status codes.
package apperr

import "errors"

// ErrPermissionDenied is returned when the acting user lacks the required
// ownership or edit level for an operation. Handlers translate it to 403.
var ErrPermissionDenied = errors.New("permission denied")

// ErrNotFound is returned when the target resource id does not exist.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned for malformed input such as a self-directed
// friend request or an invalid state transition argument.
var ErrValidation = errors.New("validation failed")

// ErrConflict is returned when an operation races with existing state, such
// as responding twice to the same friend request or re-requesting an
// already-pending friendship.
var ErrConflict = errors.New("conflict")

// ErrStorage wraps database or remote blob store failures. The triggering
// transaction is rolled back before it is surfaced.
var ErrStorage = errors.New("storage failure")
