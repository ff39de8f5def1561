package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/taskmanager-ai/backend/i18n"
)

// Translations serves the static UI dictionary for one locale. Unknown
// locales fall back to the default rather than erroring, so a stale client
// preference still renders a usable UI.
func (h *Handler) Translations(w http.ResponseWriter, r *http.Request) {
	lang := mux.Vars(r)["lang"]
	RespondJSON(w, http.StatusOK, i18n.Bundle(lang))
}
