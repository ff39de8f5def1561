package handlers

import (
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/taskmanager-ai/backend/models"
)

type eventRequest struct {
	Title       string `json:"title"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Priority    string `json:"priority"`
	AllDay      *bool  `json:"allDay"`
}

func (req *eventRequest) validate() (start, end time.Time, msg string) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || req.Start == "" || req.End == "" {
		return start, end, "Title, start and end are required"
	}
	var err error
	start, err = time.Parse(models.DeadlineLayout, req.Start)
	if err != nil {
		return start, end, "Start must use the format YYYY-MM-DDTHH:MM"
	}
	end, err = time.Parse(models.DeadlineLayout, req.End)
	if err != nil {
		return start, end, "End must use the format YYYY-MM-DDTHH:MM"
	}
	if end.Before(start) {
		return start, end, "End must not be before start"
	}
	return start, end, ""
}

// ListEvents returns the caller's calendar events.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerObjectID(w, r)
	if !ok {
		return
	}

	events, err := h.Store.FindEvents(r.Context(), bson.M{"user_id": owner})
	if err != nil {
		RespondError(w, http.StatusServiceUnavailable, "Storage unavailable")
		return
	}

	RespondJSON(w, http.StatusOK, events)
}

// CreateEvent stores a new calendar event. Color, priority and the all-day
// flag fall back to yellow, medium and false when omitted.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerObjectID(w, r)
	if !ok {
		return
	}

	var req eventRequest
	if err := decodeBody(r, &req); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if _, _, msg := req.validate(); msg != "" {
		RespondError(w, http.StatusBadRequest, msg)
		return
	}

	if req.Color == "" {
		req.Color = "yellow"
	}
	if req.Priority == "" {
		req.Priority = "medium"
	}
	allDay := false
	if req.AllDay != nil {
		allDay = *req.AllDay
	}

	event := &models.Event{
		UserID:      owner,
		Title:       req.Title,
		Start:       req.Start,
		End:         req.End,
		Description: req.Description,
		Color:       req.Color,
		Priority:    req.Priority,
		AllDay:      allDay,
		CreatedAt:   time.Now().UTC(),
	}

	created, err := h.Store.AddEvent(r.Context(), event)
	if err != nil {
		RespondError(w, http.StatusServiceUnavailable, "Storage unavailable")
		return
	}

	RespondJSON(w, http.StatusCreated, created)
}

// UpdateEvent replaces every mutable field of an owned event with the
// submitted values. Omitted optional fields therefore reset to their
// defaults rather than keeping their old values.
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerObjectID(w, r)
	if !ok {
		return
	}
	id, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}

	var req eventRequest
	if err := decodeBody(r, &req); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if _, _, msg := req.validate(); msg != "" {
		RespondError(w, http.StatusBadRequest, msg)
		return
	}

	if req.Color == "" {
		req.Color = "yellow"
	}
	if req.Priority == "" {
		req.Priority = "medium"
	}
	allDay := false
	if req.AllDay != nil {
		allDay = *req.AllDay
	}

	res, err := h.Store.UpdateEvent(r.Context(),
		bson.M{"_id": id, "user_id": owner},
		bson.M{"$set": bson.M{
			"title":       req.Title,
			"start":       req.Start,
			"end":         req.End,
			"description": req.Description,
			"color":       req.Color,
			"priority":    req.Priority,
			"all_day":     allDay,
			"updated_at":  time.Now().UTC(),
		}})
	if err != nil {
		RespondError(w, http.StatusServiceUnavailable, "Storage unavailable")
		return
	}
	if res.MatchedCount == 0 {
		RespondError(w, http.StatusNotFound, "Event not found")
		return
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// DeleteEvent removes an owned event, 404 on a foreign or unknown id.
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerObjectID(w, r)
	if !ok {
		return
	}
	id, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}

	res, err := h.Store.DeleteEvent(r.Context(), bson.M{"_id": id, "user_id": owner})
	if err != nil {
		RespondError(w, http.StatusServiceUnavailable, "Storage unavailable")
		return
	}
	if res.DeletedCount == 0 {
		RespondError(w, http.StatusNotFound, "Event not found")
		return
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
