package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/taskmanager-ai/backend/chat"
	storage "github.com/taskmanager-ai/backend/storage/persistent"
)

// Handler bundles the dependencies every route needs. The chat client may
// be nil when no provider is configured; the chat routes then answer with
// the canned fallback instead of failing at startup.
type Handler struct {
	Store      storage.StorageInterface
	ChatClient *chat.Client
}

// New returns a handler set backed by the given storage layer.
func New(store storage.StorageInterface, chatClient *chat.Client) *Handler {
	return &Handler{Store: store, ChatClient: chatClient}
}

// RespondJSON writes v as a JSON body with the given status code.
func RespondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			// Headers are already out; nothing left to do but note it.
			return
		}
	}
}

// RespondError writes the standard error envelope used across the API.
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, map[string]interface{}{
		"success": false,
		"message": message,
	})
}

func decodeBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
