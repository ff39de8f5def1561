package handlers

import (
	"net/http"
	"strings"

	"github.com/taskmanager-ai/backend/chat"
)

type chatRequest struct {
	Message string `json:"message"`
}

// relay forwards the message to the chat provider and returns the reply
// under the given response key. Provider failures and a missing client
// both degrade to the canned fallback so the UI always has something to
// show.
func (h *Handler) relay(w http.ResponseWriter, r *http.Request, key string) {
	var req chatRequest
	if err := decodeBody(r, &req); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		RespondJSON(w, http.StatusBadRequest, map[string]string{key: "Please provide a message."})
		return
	}

	if h.ChatClient == nil {
		RespondJSON(w, http.StatusOK, map[string]string{key: chat.FallbackReply})
		return
	}

	reply, err := h.ChatClient.Complete(r.Context(), req.Message)
	if err != nil {
		RespondJSON(w, http.StatusOK, map[string]string{key: chat.FallbackReply})
		return
	}

	RespondJSON(w, http.StatusOK, map[string]string{key: reply})
}

// Chat serves /api/chat and /api/ai-suggestion, answering under "response".
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	h.relay(w, r, "response")
}

// Chatbot serves /chatbot, answering under "reply".
func (h *Handler) Chatbot(w http.ResponseWriter, r *http.Request) {
	h.relay(w, r, "reply")
}
