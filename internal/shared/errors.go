package shared

import "errors"

var (
	// ErrNotFound indicates a record id with no matching record.
	ErrNotFound = errors.New("not found")
	// ErrValidation wraps input that failed form validation.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken is returned when registering an address already in use.
	ErrEmailTaken = errors.New("email address is already in use")
	// ErrWrongPassword is returned when the current password does not match.
	ErrWrongPassword = errors.New("current password is incorrect")
	// ErrSessionMissing indicates a request without a loaded session.
	ErrSessionMissing = errors.New("session missing")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)

// UserSafeMessage maps an error to text suitable for a flash banner.
// Unknown errors collapse to a generic message so internals never leak.
func UserSafeMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "The requested resource was not found."
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid email or password."
	case errors.Is(err, ErrEmailTaken):
		return "Email address is already in use."
	case errors.Is(err, ErrWrongPassword):
		return "Current password is incorrect."
	case errors.Is(err, ErrValidation):
		return err.Error()
	default:
		return "Server error. Please try again later."
	}
}
