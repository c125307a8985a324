package auth

import "errors"

var (
	// ErrCredentialDecode indicates a malformed Authorization header: bad
	// base64 or a missing identifier/secret separator.
	ErrCredentialDecode = errors.New("malformed credential header")
	// ErrCredentialRejected indicates the identifier/secret pair did not verify.
	ErrCredentialRejected = errors.New("credentials rejected")
	// ErrInvalidSignature indicates a signed assertion whose signature does
	// not validate against the configured pre-shared secret.
	ErrInvalidSignature = errors.New("invalid assertion signature")
	// ErrIssuerMismatch indicates a validly signed assertion from the wrong issuer.
	ErrIssuerMismatch = errors.New("assertion issuer mismatch")
	// ErrMissingClaim indicates an assertion without a session key claim.
	ErrMissingClaim = errors.New("assertion missing session key claim")
	// ErrSessionExpired indicates the session exists but has exceeded the
	// idle timeout. The stale entry is left in the store.
	ErrSessionExpired = errors.New("session expired")
	// ErrSessionNotFound indicates the claimed session key is not in the
	// store: revoked, evicted by a later login, or never issued.
	ErrSessionNotFound = errors.New("session not found")
)
