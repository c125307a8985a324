package api

import "encoding/json"

// StatusResponse is the common ok/error envelope.
type StatusResponse struct {
	Status string `json:"status"`
	Info   string `json:"info"`
}

// CreateUserRequest is the JSON body for POST /v1/users.
type CreateUserRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// ModifyUserRequest is the JSON body for PATCH /v1/users/{userID}. Absent
// fields are left unchanged.
type ModifyUserRequest struct {
	Email    *string `json:"email,omitempty"`
	Username *string `json:"username,omitempty"`
	Password *string `json:"password,omitempty"`
}

// ConfigResponse is returned from GET /v1/config. User is present only for
// authenticated sessions.
type ConfigResponse struct {
	Status string          `json:"status"`
	Info   string          `json:"info"`
	Global json.RawMessage `json:"global"`
	User   json.RawMessage `json:"user,omitempty"`
}

// SetConfigRequest is the JSON body for PUT /v1/config. Either section may
// be omitted.
type SetConfigRequest struct {
	Global json.RawMessage `json:"global,omitempty"`
	User   json.RawMessage `json:"user,omitempty"`
}
