// Package token provides secret-key loading and digest primitives for FAKIE.
//
// It is the single source of truth for how process-wide secrets are read from the
// environment (session signing key) and how identifiers are fingerprinted before
// they reach logs or the audit trail.
//
// Environment:
// - FAKIE_SESSION_SECRET: HS256 signing key for session tokens (>= 32 bytes).
package token
