package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/voxboard/voxboard/directory"
)

// CreateUser handles POST /v1/users. Registration is open; it does not
// require an authenticated session.
func (a *API) CreateUser(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[CreateUserRequest](w, r)
	if !ok {
		return
	}
	if req.Email == "" || req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Syntax error: email, username, and password are required.")
		return
	}

	if taken, err := a.emailTaken(req.Email, uuid.Nil); err != nil {
		mapError(w, err)
		return
	} else if taken {
		writeError(w, http.StatusConflict, "Email already exists.")
		return
	}
	if taken, err := a.usernameTaken(req.Username, uuid.Nil); err != nil {
		mapError(w, err)
		return
	} else if taken {
		writeError(w, http.StatusConflict, "Username already exists.")
		return
	}

	id := uuid.New()
	for {
		if _, err := a.dir.UserByID(id); errors.Is(err, directory.ErrUserNotFound) {
			break
		}
		id = uuid.New()
	}

	user := &directory.User{
		ID:       id,
		Email:    req.Email,
		Username: req.Username,
	}
	if err := user.SetPassword(req.Password); err != nil {
		mapError(w, err)
		return
	}
	if err := a.dir.SaveUser(user); err != nil {
		mapError(w, err)
		return
	}

	a.audit.logEvent(AuditUserCreated, r, id.String())
	writeOK(w, http.StatusCreated, "User created.")
}

// ModifyUser handles PATCH /v1/users/{userID}. A user may only modify their
// own profile.
func (a *API) ModifyUser(w http.ResponseWriter, r *http.Request) {
	tok, ok := a.requireClient(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found.")
		return
	}
	user, err := a.dir.UserByID(id)
	if err != nil {
		mapError(w, err)
		return
	}
	if tok.User().ID != id {
		writeError(w, http.StatusForbidden, "Access denied.")
		return
	}

	req, ok := decodeJSON[ModifyUserRequest](w, r)
	if !ok {
		return
	}

	email := user.Email
	if req.Email != nil {
		email = *req.Email
	}
	username := user.Username
	if req.Username != nil {
		username = *req.Username
	}

	if directory.NormalizeEmail(email) != directory.NormalizeEmail(user.Email) {
		if taken, err := a.emailTaken(email, id); err != nil {
			mapError(w, err)
			return
		} else if taken {
			writeError(w, http.StatusConflict, "Email already exists.")
			return
		}
	}
	if directory.NormalizeUsername(username) != directory.NormalizeUsername(user.Username) {
		if taken, err := a.usernameTaken(username, id); err != nil {
			mapError(w, err)
			return
		} else if taken {
			writeError(w, http.StatusConflict, "Username already exists.")
			return
		}
	}

	if req.Password != nil {
		if err := user.SetPassword(*req.Password); err != nil {
			mapError(w, err)
			return
		}
	}
	user.Email = email
	user.Username = username

	if err := a.dir.SaveUser(user); err != nil {
		mapError(w, err)
		return
	}

	a.audit.logEvent(AuditUserModified, r, id.String())
	writeOK(w, http.StatusAccepted, "User updated.")
}

// GetConfig handles GET /v1/config. The global section is public; the user
// section is included only for authenticated sessions.
func (a *API) GetConfig(w http.ResponseWriter, r *http.Request) {
	global, err := a.dir.GlobalConfig()
	if err != nil {
		mapError(w, err)
		return
	}
	resp := ConfigResponse{
		Status: "ok",
		Info:   "Configs retrieved.",
		Global: global,
	}

	if tok := sessionFromContext(r.Context()); tok.HasClientPerms() {
		userCfg, err := a.dir.UserConfig(tok.User().ID)
		if err != nil {
			mapError(w, err)
			return
		}
		resp.User = userCfg
	}

	writeJSON(w, http.StatusOK, resp)
}

// SetConfig handles PUT /v1/config. Requires login; accepts a global and/or
// user section.
func (a *API) SetConfig(w http.ResponseWriter, r *http.Request) {
	tok, ok := a.requireClient(w, r)
	if !ok {
		return
	}

	req, ok := decodeJSON[SetConfigRequest](w, r)
	if !ok {
		return
	}
	if req.Global != nil && !isJSONObject(req.Global) {
		writeError(w, http.StatusBadRequest, "Syntax error: global must be an object.")
		return
	}
	if req.User != nil && !isJSONObject(req.User) {
		writeError(w, http.StatusBadRequest, "Syntax error: user must be an object.")
		return
	}

	if req.Global != nil {
		if err := a.dir.SetGlobalConfig(req.Global); err != nil {
			mapError(w, err)
			return
		}
	}
	if req.User != nil {
		if err := a.dir.SetUserConfig(tok.User().ID, req.User); err != nil {
			mapError(w, err)
			return
		}
	}

	a.audit.logEvent(AuditConfigUpdated, r, tok.User().ID.String())
	writeOK(w, http.StatusAccepted, "Configuration updated.")
}

// Logout handles POST /v1/logout, revoking the presented session. Logging
// out an anonymous or already-revoked session is a no-op.
func (a *API) Logout(w http.ResponseWriter, r *http.Request) {
	tok := sessionFromContext(r.Context())
	var userID string
	if tok.HasClientPerms() {
		userID = tok.User().ID.String()
	}
	if key := tok.SessionKey(); key != "" {
		a.auth.Revoke(key)
	}
	a.audit.logEvent(AuditLogout, r, userID)
	writeOK(w, http.StatusOK, "Logged out.")
}

func (a *API) emailTaken(email string, selfID uuid.UUID) (bool, error) {
	existing, err := a.dir.UserByEmail(email)
	if errors.Is(err, directory.ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return existing.ID != selfID, nil
}

func (a *API) usernameTaken(username string, selfID uuid.UUID) (bool, error) {
	existing, err := a.dir.UserByUsername(username)
	if errors.Is(err, directory.ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return existing.ID != selfID, nil
}

func isJSONObject(raw json.RawMessage) bool {
	var m map[string]json.RawMessage
	return json.Unmarshal(raw, &m) == nil
}
