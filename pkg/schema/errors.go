package schema

import "errors"

// Availability sentinels. Each maps to a distinct user-visible message in the
// page error panel; all of them abort rendering before any form DOM is built.
var (
	ErrNotYetAvailable = errors.New("form not available yet")
	ErrExpired         = errors.New("form has expired")
	ErrInactive        = errors.New("form is not active")
)

// UserMessage translates an availability error into the member-facing copy
// shown in the error panel. Unknown errors get the generic load failure line.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrNotYetAvailable):
		return "This form is not available yet."
	case errors.Is(err, ErrExpired):
		return "This form has expired."
	case errors.Is(err, ErrInactive):
		return "This form is not currently active."
	default:
		return "Failed to load form. Please try again."
	}
}
