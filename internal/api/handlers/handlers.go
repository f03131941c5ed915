package handlers

import (
	"encoding/json"
	"net/http"

	"clientflow/internal/auth"
	"clientflow/internal/repository/db"
)

// ErrorResponse is the standard JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error,omitempty"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func sendError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	errResp := ErrorResponse{
		Code:    status,
		Message: message,
	}
	if err != nil {
		errResp.Error = err.Error()
	}
	json.NewEncoder(w).Encode(errResp)
}

func sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// userFromContext resolves the authenticated username to its user record.
func userFromContext(r *http.Request, database db.Database) (*db.User, error) {
	username := r.Context().Value(auth.UserContextKey).(string)
	return database.GetUserByUsername(username)
}
