package auth

import (
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func TestCodecRoundTrip(t *testing.T) {
	codec := NewCodec([]byte("test-preshared-secret"))
	tok := NewToken("session-key-123", testUser("rt@example.com"), "")

	assertion, err := codec.Issue(tok)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	sessionKey, err := codec.Verify(assertion)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if sessionKey != "session-key-123" {
		t.Fatalf("got session key %q, want %q", sessionKey, "session-key-123")
	}
}

func TestCodecRejectsTampering(t *testing.T) {
	codec := NewCodec([]byte("test-preshared-secret"))
	tok := NewToken("session-key-tamper", testUser("tamper@example.com"), "")

	assertion, err := codec.Issue(tok)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// Flip one byte at every position; none may verify.
	for i := 0; i < len(assertion); i++ {
		mutated := []byte(assertion)
		if mutated[i] == 'A' {
			mutated[i] = 'B'
		} else {
			mutated[i] = 'A'
		}
		key, err := codec.Verify(string(mutated))
		if err == nil {
			t.Fatalf("tampered assertion at byte %d verified, returned key %q", i, key)
		}
	}
}

func TestCodecRejectsWrongSecret(t *testing.T) {
	issuing := NewCodec([]byte("secret-a"))
	verifying := NewCodec([]byte("secret-b"))
	tok := NewToken("session-key-ws", testUser("ws@example.com"), "")

	assertion, err := issuing.Issue(tok)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := verifying.Verify(assertion); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("got %v, want ErrInvalidSignature", err)
	}
}

func TestCodecRejectsWrongIssuer(t *testing.T) {
	secret := []byte("shared-secret")
	codec := NewCodec(secret)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"iss":        "SomeOtherService",
		"sessionKey": "session-key-wi",
	})
	signed, err := foreign.SignedString(secret)
	if err != nil {
		t.Fatalf("signing test assertion: %v", err)
	}

	if _, err := codec.Verify(signed); !errors.Is(err, ErrIssuerMismatch) {
		t.Fatalf("got %v, want ErrIssuerMismatch", err)
	}
}

func TestCodecRejectsMissingClaim(t *testing.T) {
	secret := []byte("shared-secret")
	codec := NewCodec(secret)

	for name, claims := range map[string]jwt.MapClaims{
		"NoSessionKey":    {"iss": Issuer},
		"EmptySessionKey": {"iss": Issuer, "sessionKey": ""},
		"WrongClaimType":  {"iss": Issuer, "sessionKey": 42},
	} {
		t.Run(name, func(t *testing.T) {
			bare := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
			signed, err := bare.SignedString(secret)
			if err != nil {
				t.Fatalf("signing test assertion: %v", err)
			}
			if _, err := codec.Verify(signed); !errors.Is(err, ErrMissingClaim) {
				t.Fatalf("got %v, want ErrMissingClaim", err)
			}
		})
	}
}

func TestCodecRejectsGarbage(t *testing.T) {
	codec := NewCodec([]byte("shared-secret"))
	for _, text := range []string{"", "not.a.jwt", "xxxx"} {
		if _, err := codec.Verify(text); err == nil {
			t.Fatalf("expected garbage assertion %q to fail verification", text)
		}
	}
}
