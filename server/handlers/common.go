package handlers

import (
	"net/http"

	"github.com/taskmanager-ai/backend/server/contextkey"
)

// userID extracts the authenticated user id placed in the request context
// by the auth guard. The empty string means the guard never ran, which is
// a routing bug rather than a client error.
func userID(r *http.Request) string {
	id, _ := r.Context().Value(contextkey.UserIDKey).(string)
	return id
}

// Health reports liveness. Kept deliberately dependency-free so load
// balancers get an answer even when storage is struggling.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
