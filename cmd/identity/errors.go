package identity

import (
	"errors"
	"strings"
)

// Error kinds. Handlers map them to status codes with errors.Is.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

// opMessage renders "op: kind[: detail]".
func opMessage(op string, kind error, detail string) string {
	var b strings.Builder
	b.WriteString(op)
	b.WriteString(": ")
	b.WriteString(kind.Error())
	if detail != "" {
		b.WriteString(": ")
		b.WriteString(detail)
	}
	return b.String()
}

// OpError carries an operation name and one of the error kinds. Msg never holds secrets.
type OpError struct {
	Op   string
	Kind error
	Msg  string
}

func (e OpError) Error() string { return opMessage(e.Op, e.Kind, e.Msg) }
func (e OpError) Unwrap() error { return e.Kind }

// ConflictError names the unique field that was already taken ("email" or "id").
type ConflictError struct {
	Op    string
	Field string
}

func (e ConflictError) Error() string { return opMessage(e.Op, ErrConflict, e.Field) }
func (e ConflictError) Unwrap() error { return ErrConflict }

// NotFoundError reports a missing account.
type NotFoundError struct {
	Op       string
	Resource string
}

func (e NotFoundError) Error() string { return opMessage(e.Op, ErrNotFound, e.Resource) }
func (e NotFoundError) Unwrap() error { return ErrNotFound }

func invalid(op, msg string) error {
	return OpError{Op: op, Kind: ErrInvalidInput, Msg: msg}
}

// IsConflict reports whether err is, or wraps, a ConflictError.
func IsConflict(err error) bool {
	var ce ConflictError
	return errors.As(err, &ce)
}

func IsNotFound(err error) bool     { return errors.Is(err, ErrNotFound) }
func IsInvalidInput(err error) bool { return errors.Is(err, ErrInvalidInput) }
