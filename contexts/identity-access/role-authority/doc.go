// Package roleauthority resolves an authenticated caller to exactly one role
// and derives the role-wide capabilities every other context checks.
//
// Layering:
// - domain: closed role enumeration, capability derivation, errors
// - application: actor resolution and the capability policy exposed to other contexts
// - ports: token verification boundary
// - adapters: HS256 JWT verifier/issuer
//
// Credential issuance and session storage are external; this module only
// consumes "current actor + role".
package roleauthority
