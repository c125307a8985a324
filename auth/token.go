package auth

import (
	"sync"
	"time"

	"github.com/voxboard/voxboard/directory"
)

// IdleTimeout is how long a session may go unused before it is considered
// expired. Expiry is evaluated lazily on access; any successful use resets
// the clock.
const IdleTimeout = 15 * time.Minute

// tokenState tracks the one-shot New -> Seen transition. A token is New
// exactly until the first MarkUsed call.
type tokenState int

const (
	tokenNew tokenState = iota
	tokenSeen
)

// Token is the server-side record of one authenticated session. The session
// key and user are fixed at mint time; the last-access timestamp and the
// New/Seen state mutate during authorization checks, guarded by a single
// mutex so concurrent resumes for the same key cannot race.
//
// The zero-argument constructor NewAnonymousToken yields a valid token with
// no user attached, so downstream code can query capabilities uniformly
// without nil checks.
type Token struct {
	sessionKey string
	user       *directory.User
	clientAddr string

	mu         sync.Mutex
	lastAccess time.Time
	state      tokenState
}

// NewToken mints a session token for an authenticated user. clientAddr is
// the originating network address, recorded for logging only.
func NewToken(sessionKey string, user *directory.User, clientAddr string) *Token {
	return &Token{
		sessionKey: sessionKey,
		user:       user,
		clientAddr: clientAddr,
		lastAccess: time.Now(),
	}
}

// NewAnonymousToken returns a token representing an unauthenticated request.
func NewAnonymousToken() *Token {
	return &Token{lastAccess: time.Now()}
}

// SessionKey returns the opaque session key, or "" for an anonymous token.
func (t *Token) SessionKey() string {
	return t.sessionKey
}

// User returns the user this session belongs to, or nil if anonymous.
func (t *Token) User() *directory.User {
	return t.user
}

// ClientAddr returns the network address captured when the token was minted.
func (t *Token) ClientAddr() string {
	return t.clientAddr
}

// Bump resets the idle-expiry clock. Called on every successful
// authorization.
func (t *Token) Bump() {
	t.mu.Lock()
	t.lastAccess = time.Now()
	t.mu.Unlock()
}

// Expired reports whether the session has gone unused for longer than
// IdleTimeout.
func (t *Token) Expired() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return time.Since(t.lastAccess) > IdleTimeout
}

// MarkUsed transitions the token from New to Seen and reports whether it was
// still New. It returns true exactly once per token; Bump does not reset it.
// Callers use this to distinguish a fresh login from a resumed session, e.g.
// to decide whether to hand the client a new signed assertion.
func (t *Token) MarkUsed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	wasNew := t.state == tokenNew
	t.state = tokenSeen
	return wasNew
}

// HasClientPerms reports whether a user is attached to this session.
func (t *Token) HasClientPerms() bool {
	return t.user != nil
}

// HasAdminPerms reports whether the session's user has admin permissions.
// There is no separate admin tier at this layer; it is the same check as
// HasClientPerms.
func (t *Token) HasAdminPerms() bool {
	return t.user != nil
}
