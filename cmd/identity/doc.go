// Package identity implements FAKIE's credential store and verifier.
//
// It owns accounts (email, display name, password hash, role), registers new
// members, and verifies login credentials with the same hashing cost whether or
// not the account exists.
//
// Persistence goes through the Store interface, backed by PostgreSQL in
// production and by an in-memory map in development and tests.
package identity
