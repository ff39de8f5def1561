package handlers

import (
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/taskmanager-ai/backend/models"
)

type reminderRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate"`
}

// ListReminders returns the caller's reminders.
func (h *Handler) ListReminders(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerObjectID(w, r)
	if !ok {
		return
	}

	reminders, err := h.Store.FindReminders(r.Context(), bson.M{"user_id": owner})
	if err != nil {
		RespondError(w, http.StatusServiceUnavailable, "Storage unavailable")
		return
	}

	RespondJSON(w, http.StatusOK, reminders)
}

// AddReminder stores a new reminder. The notified flag always starts false
// so the dispatcher will pick it up once the due date passes.
func (h *Handler) AddReminder(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerObjectID(w, r)
	if !ok {
		return
	}

	var req reminderRequest
	if err := decodeBody(r, &req); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || req.DueDate == "" {
		RespondError(w, http.StatusBadRequest, "Title and due date are required")
		return
	}
	if _, err := time.Parse(models.DeadlineLayout, req.DueDate); err != nil {
		RespondError(w, http.StatusBadRequest, "Due date must use the format YYYY-MM-DDTHH:MM")
		return
	}

	reminder := &models.Reminder{
		UserID:      owner,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Notified:    false,
		CreatedAt:   time.Now().UTC(),
	}

	created, err := h.Store.AddReminder(r.Context(), reminder)
	if err != nil {
		RespondError(w, http.StatusServiceUnavailable, "Storage unavailable")
		return
	}

	RespondJSON(w, http.StatusCreated, created)
}

// DeleteReminder removes an owned reminder, 404 on a foreign or unknown id.
func (h *Handler) DeleteReminder(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerObjectID(w, r)
	if !ok {
		return
	}
	id, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}

	res, err := h.Store.DeleteReminder(r.Context(), bson.M{"_id": id, "user_id": owner})
	if err != nil {
		RespondError(w, http.StatusServiceUnavailable, "Storage unavailable")
		return
	}
	if res.DeletedCount == 0 {
		RespondError(w, http.StatusNotFound, "Reminder not found")
		return
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
