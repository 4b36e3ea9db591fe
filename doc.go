// Package auth provides the bearer token core of the widget API: HS256 token
// issuance and verification, token revocation, the request authenticator and
// the failure table used to answer rejected requests.
//
// Verification order:
//   - Decode checks the signature first, then the expiry, then the revocation
//     store. Only the last step does I/O, and an expired token is rejected no
//     matter what the store holds, so stores may prune entries once the token
//     has expired.
//
// Failures:
//   - Every auth outcome is one FailureKind. FailureFor maps a kind to its
//     status, challenge error code and description. Errors outside the
//     taxonomy, a revocation store outage for example, are internal errors.
//
// Revocation stores:
//   - MemoryRevocationStore for a single process, RedisRevocationStore for a
//     shared cache, and repository.TokenBlacklistRepository for a database
//     table. All of them are safe for concurrent use.
//
// The fiber guard lives in middleware/jwtware and the HTTP controllers in api.
package auth
