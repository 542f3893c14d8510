// Package password provides password hashing and verification for FAKIE accounts.
//
// It implements Argon2id hashing using a PHC-like encoded string format and includes:
// - Configurable Argon2id parameters (via environment variables)
// - Password policy validation (8..100 characters by default)
// - Strict hash decoding and verification with anti-DoS bounds
//
// Security notes:
// - Hash strings are treated as untrusted input during Verify and are validated accordingly.
// - Verify never applies the length policy, so a comparison against a fixed dummy hash
//   costs the same as a comparison against a real one.
package password
