package handlers

import (
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/taskmanager-ai/backend/analytics"
	"github.com/taskmanager-ai/backend/models"
)

// Dashboard returns the overview stats plus the caller's tasks split into
// today and upcoming, along with the current date the split was computed
// against.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerObjectID(w, r)
	if !ok {
		return
	}

	tasks, err := h.Store.FindTasks(r.Context(), bson.M{"user_id": owner})
	if err != nil {
		RespondError(w, http.StatusServiceUnavailable, "Storage unavailable")
		return
	}

	now := time.Now()
	todayTasks, upcoming := analytics.SplitByDay(tasks, now)

	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"stats":       analytics.Overview(tasks),
		"today":       todayTasks,
		"upcoming":    upcoming,
		"currentDate": now.Format(models.DateLayout),
	})
}

// Analytics returns the full aggregation over the caller's tasks.
func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerObjectID(w, r)
	if !ok {
		return
	}

	tasks, err := h.Store.FindTasks(r.Context(), bson.M{"user_id": owner})
	if err != nil {
		RespondError(w, http.StatusServiceUnavailable, "Storage unavailable")
		return
	}

	RespondJSON(w, http.StatusOK, analytics.Summarize(tasks, time.Now()))
}
