// Package auth issues and verifies the bearer tokens that authenticate API
// requests and hashes user passwords.
//
// Tokens are HS256-signed JWTs carrying the user id; every failure to verify
// a token maps to ErrInvalidToken or ErrExpiredToken so callers can answer
// all of them with 401.
package auth
