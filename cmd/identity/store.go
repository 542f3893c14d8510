package identity

import "context"

// Store is the account persistence boundary.
//
// CreateAccount must enforce email uniqueness atomically: of two concurrent
// creates for the same normalized email, exactly one succeeds and the other
// returns a ConflictError{Field: "email"}.
type Store interface {
	CreateAccount(ctx context.Context, a Account) error
	AccountByEmail(ctx context.Context, emailNorm string) (Account, error)
	AccountByID(ctx context.Context, id string) (Account, error)
}
