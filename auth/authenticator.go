// Package auth implements the session authentication core: the session
// token table, the signed-assertion codec, and the authenticator that runs
// in front of every request.
package auth

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/voxboard/voxboard/directory"
)

const (
	// SchemeTag is the credential scheme advertised in challenges and
	// expected at the front of the Authorization header.
	SchemeTag = "VoxBoard"

	// IncomingSessionHeader carries a previously issued signed assertion.
	IncomingSessionHeader = "X-Voxboard-Session"
	// OutgoingSessionHeader carries a freshly issued signed assertion back
	// to the client after login.
	OutgoingSessionHeader = "X-Voxboard-CSRF"
	// OutgoingUserHeader carries the authenticated user's ID for client
	// convenience.
	OutgoingUserHeader = "X-Voxboard-User"
)

// CredentialVerifier resolves an identifier/secret pair to a user. It is the
// external collaborator that owns credential checking; the authenticator
// places no timeout around it.
type CredentialVerifier interface {
	Verify(ctx context.Context, identifier, secret string) (*directory.User, error)
}

// Authenticator orchestrates login and request authorization against a
// shared session store. It is safe for concurrent use by any number of
// request handlers.
type Authenticator struct {
	store    *Store
	codec    *Codec
	verifier CredentialVerifier
	log      *slog.Logger
}

// NewAuthenticator wires an authenticator. A nil logger falls back to a JSON
// logger on stderr.
func NewAuthenticator(store *Store, codec *Codec, verifier CredentialVerifier, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	return &Authenticator{
		store:    store,
		codec:    codec,
		verifier: verifier,
		log:      logger.With("component", "auth"),
	}
}

// Store returns the session store the authenticator owns.
func (a *Authenticator) Store() *Store {
	return a.store
}

// Issue produces a signed assertion for the token, suitable for the
// outgoing session header.
func (a *Authenticator) Issue(t *Token) (string, error) {
	return a.codec.Issue(t)
}

// Revoke removes the session for the given key. Revoking an unknown key is
// a no-op.
func (a *Authenticator) Revoke(sessionKey string) {
	a.store.Remove(sessionKey)
}

// Authorize resolves the request to a session token. The returned token is
// never nil: requests without credentials, and every authentication failure,
// yield an anonymous token. The returned error is the typed reason the
// request ended up anonymous (nil on success and on the plain no-credential
// path); it exists for logging and never needs to abort the request.
func (a *Authenticator) Authorize(r *http.Request) (*Token, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		tok, err := a.login(r, header)
		if err != nil {
			a.log.Error("login failed", "error", err, "client", r.RemoteAddr)
			return NewAnonymousToken(), err
		}
		a.log.Info("login success", "user", tok.User().Email, "client", r.RemoteAddr)
		return tok, nil
	}

	if assertion := r.Header.Get(IncomingSessionHeader); assertion != "" {
		tok, err := a.resume(r, assertion)
		if err != nil {
			a.log.Error("resume failed", "error", err, "client", r.RemoteAddr)
			return NewAnonymousToken(), err
		}
		a.log.Info("session resumed", "user", tok.User().Email, "client", r.RemoteAddr)
		return tok, nil
	}

	a.log.Debug("no credential presented", "client", r.RemoteAddr)
	return NewAnonymousToken(), nil
}

// login handles the basic-credential path: scheme tag, base64 identifier
// and secret, external verification, and minting of a new session. Minting
// retries key generation until the key is unused, and storing the token
// evicts any prior session for the same user.
func (a *Authenticator) login(r *http.Request, header string) (*Token, error) {
	encoded, ok := strings.CutPrefix(header, SchemeTag+" ")
	if !ok {
		return nil, fmt.Errorf("%w: missing %q scheme", ErrCredentialDecode, SchemeTag)
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCredentialDecode, err)
	}
	identifier, secret, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return nil, fmt.Errorf("%w: missing separator", ErrCredentialDecode)
	}

	user, err := a.verifier.Verify(r.Context(), identifier, secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCredentialRejected, err)
	}

	sessionKey := uuid.NewString()
	for a.store.Contains(sessionKey) {
		sessionKey = uuid.NewString()
	}
	tok := NewToken(sessionKey, user, r.RemoteAddr)
	a.store.Put(tok)
	return tok, nil
}

// resume handles the signed-assertion path: verify the assertion, resolve
// the claimed session key, and check freshness. An expired session is left
// in the store; only its use is refused.
func (a *Authenticator) resume(r *http.Request, assertion string) (*Token, error) {
	sessionKey, err := a.codec.Verify(assertion)
	if err != nil {
		return nil, err
	}
	tok, ok := a.store.Get(sessionKey)
	if !ok {
		return nil, ErrSessionNotFound
	}
	if tok.Expired() {
		return nil, fmt.Errorf("%w: user %s", ErrSessionExpired, tok.User().Email)
	}
	tok.Bump()
	return tok, nil
}
