// Package session issues and verifies FAKIE session tokens.
//
// A session token is an HS256 JWT carrying the account id (sub), the account
// role, issuer, issued-at, expiry and a random token id (jti). Tokens are not
// persisted: validity is signature plus expiry. An optional Denylist lets
// logout revoke a token id until it would have expired anyway.
//
// Transport concerns (cookies, headers) live in the auth API and access packages.
package session
