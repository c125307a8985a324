package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// Issuer is the fixed issuer tag embedded in every signed assertion.
	Issuer = "VoxBoard"

	sessionKeyClaim = "sessionKey"
)

// Codec issues and verifies the signed assertions handed to clients. An
// assertion is an HS512-signed JWT carrying the issuer tag and a single
// sessionKey claim. No expiry claim is embedded: expiry is enforced by the
// session store's freshness check, so an assertion by itself only proves the
// session key was legitimately issued.
type Codec struct {
	secret []byte
}

// NewCodec creates a codec signing with the given pre-shared secret. The
// secret is process-wide; rotating it invalidates every outstanding
// assertion at once.
func NewCodec(secret []byte) *Codec {
	return &Codec{secret: secret}
}

// Issue builds and signs an assertion binding to the token's session key.
func (c *Codec) Issue(t *Token) (string, error) {
	assertion := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"iss":           Issuer,
		sessionKeyClaim: t.SessionKey(),
	})
	signed, err := assertion.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("signing assertion: %w", err)
	}
	return signed, nil
}

// Verify checks the assertion's signature and issuer and returns the claimed
// session key. The key is not resolved against the session store; the caller
// must still confirm the session is live.
func (c *Codec) Verify(assertionText string) (string, error) {
	parsed, err := jwt.Parse(assertionText, func(t *jwt.Token) (any, error) {
		// HMAC only; reject any algorithm-confusion attempt.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithStrictDecoding())
	if err != nil {
		// Malformed and badly-signed assertions are indistinguishable to the
		// caller; both mean the artifact was not issued by us.
		return "", fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrMissingClaim
	}
	issuer, err := claims.GetIssuer()
	if err != nil || issuer != Issuer {
		return "", ErrIssuerMismatch
	}
	sessionKey, ok := claims[sessionKeyClaim].(string)
	if !ok || sessionKey == "" {
		return "", ErrMissingClaim
	}
	return sessionKey, nil
}
