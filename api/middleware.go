package api

import (
	"context"
	"net/http"

	"github.com/voxboard/voxboard/auth"
)

type contextKey int

const sessionTokenKey contextKey = iota

// SessionMiddleware runs the authenticator over every inbound request and
// stores the resulting session token on the request context. The token is
// always present; anonymous requests carry an anonymous token.
//
// For authenticated sessions the user's ID goes out in the user header, and
// a token on its first use (a fresh login, or a session minted server-side)
// gets a newly signed assertion in the outgoing session header so the
// client can resume later.
func (a *API) SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok, denial := a.auth.Authorize(r)
		if denial != nil {
			a.audit.logDenial(r, denial)
		}

		if tok.HasClientPerms() {
			w.Header().Set(auth.OutgoingUserHeader, tok.User().ID.String())
			if tok.MarkUsed() {
				assertion, err := a.auth.Issue(tok)
				if err != nil {
					// Degrade to an unresumable session rather than failing
					// the request.
					a.audit.logFailure(AuditAssertionIssue, r, err.Error())
				} else {
					w.Header().Set(auth.OutgoingSessionHeader, assertion)
				}
			}
		}

		ctx := context.WithValue(r.Context(), sessionTokenKey, tok)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionFromContext returns the request's session token. Handlers outside
// the middleware chain get an anonymous token, never nil.
func sessionFromContext(ctx context.Context) *auth.Token {
	if tok, ok := ctx.Value(sessionTokenKey).(*auth.Token); ok {
		return tok
	}
	return auth.NewAnonymousToken()
}

// requireClient enforces the capability gate: if the session has no user
// attached it answers 401 with a challenge header and reports false.
func (a *API) requireClient(w http.ResponseWriter, r *http.Request) (*auth.Token, bool) {
	tok := sessionFromContext(r.Context())
	if !tok.HasClientPerms() {
		w.Header().Set("WWW-Authenticate", auth.SchemeTag+" realm=dashboard")
		a.audit.logFailure(AuditUnauthorized, r, "user is not logged in")
		writeError(w, http.StatusUnauthorized, "User is not logged in.")
		return nil, false
	}
	return tok, true
}
