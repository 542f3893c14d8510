// Package access resolves the caller's identity from the session cookie and
// decides who may mutate catalog records.
package access

import (
	"context"

	"fakie/cmd/identity"
)

// Identity is the authenticated caller attached to a request context.
type Identity struct {
	AccountID string
	Role      identity.Role
}

type ctxKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// IdentityFrom returns the identity set by the gate, if any.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	if !ok || id.AccountID == "" {
		return Identity{}, false
	}
	return id, true
}
