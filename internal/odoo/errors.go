package odoo

import (
	"errors"
	"fmt"
)

// ErrNotAuthenticated is returned when a data operation is attempted
// before a successful Connect. No network I/O happens in that case.
var ErrNotAuthenticated = errors.New("not authenticated: call Connect first")

// AuthError indicates the server rejected the supplied credentials
// (the authenticate call returned a falsy user id).
type AuthError struct {
	Database string
	Username string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed for user %q on database %q", e.Username, e.Database)
}
