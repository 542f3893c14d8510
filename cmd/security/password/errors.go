package password

import "errors"

var (
	// ErrPasswordTooShort and ErrPasswordTooLong report a length policy violation.
	ErrPasswordTooShort = errors.New("password too short")
	ErrPasswordTooLong  = errors.New("password too long")
	// ErrWeakPassword is returned only when Policy.RejectVeryWeak is set.
	ErrWeakPassword = errors.New("weak password")
	// ErrInvalidHash means a stored hash could not be parsed or is out of bounds.
	ErrInvalidHash = errors.New("invalid password hash")
)
