package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/taskmanager-ai/backend/models"
	storage "github.com/taskmanager-ai/backend/storage/persistent"
)

type taskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Deadline    string `json:"deadline"`
	Priority    string `json:"priority"`
	Category    string `json:"category"`
	Status      string `json:"status"`
	Tab         string `json:"tab"`
}

// ownerObjectID converts the authenticated user id into an ObjectID for
// filter construction. The guard already validated the token, so a bad id
// here means corrupted claims and is treated as unauthorized.
func ownerObjectID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(userID(r))
	if err != nil {
		RespondError(w, http.StatusUnauthorized, "Please log in to access this page.")
		return primitive.NilObjectID, false
	}
	return oid, true
}

// pathObjectID parses the {id} path variable.
func pathObjectID(w http.ResponseWriter, r *http.Request, name string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(mux.Vars(r)[name])
	if err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid id")
		return primitive.NilObjectID, false
	}
	return oid, true
}

// ListTasks returns every task owned by the caller.
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerObjectID(w, r)
	if !ok {
		return
	}

	tasks, err := h.Store.FindTasks(r.Context(), bson.M{"user_id": owner})
	if err != nil {
		RespondError(w, http.StatusServiceUnavailable, "Storage unavailable")
		return
	}

	RespondJSON(w, http.StatusOK, tasks)
}

// CreateTask validates and stores a new task. The record always starts
// out pending.
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerObjectID(w, r)
	if !ok {
		return
	}

	var req taskRequest
	if err := decodeBody(r, &req); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || req.Deadline == "" || req.Priority == "" || req.Category == "" {
		RespondError(w, http.StatusBadRequest, "Title, deadline, priority and category are required")
		return
	}
	if _, err := time.Parse(models.DeadlineLayout, req.Deadline); err != nil {
		RespondError(w, http.StatusBadRequest, "Deadline must use the format YYYY-MM-DDTHH:MM")
		return
	}

	task := &models.Task{
		UserID:      owner,
		Title:       req.Title,
		Description: req.Description,
		Deadline:    req.Deadline,
		Priority:    req.Priority,
		Category:    req.Category,
		Status:      models.StatusPending,
		Done:        false,
		Tab:         req.Tab,
		CreatedAt:   time.Now().UTC(),
	}

	created, err := h.Store.AddTask(r.Context(), task)
	if err != nil {
		RespondError(w, http.StatusServiceUnavailable, "Storage unavailable")
		return
	}

	RespondJSON(w, http.StatusCreated, created)
}

// UpdateTask applies a partial update to an owned task. When the status
// transitions to completed a completion timestamp is recorded so duration
// analytics have something to measure.
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerObjectID(w, r)
	if !ok {
		return
	}
	id, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}

	var fields map[string]interface{}
	if err := decodeBody(r, &fields); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	set := bson.M{}
	for _, key := range []string{"title", "description", "deadline", "priority", "category", "status", "done", "tab"} {
		if v, present := fields[key]; present {
			set[key] = v
		}
	}
	if len(set) == 0 {
		RespondError(w, http.StatusBadRequest, "Nothing to update")
		return
	}
	if deadline, present := set["deadline"]; present {
		s, isString := deadline.(string)
		if !isString {
			RespondError(w, http.StatusBadRequest, "Deadline must be a string")
			return
		}
		if _, err := time.Parse(models.DeadlineLayout, s); err != nil {
			RespondError(w, http.StatusBadRequest, "Deadline must use the format YYYY-MM-DDTHH:MM")
			return
		}
	}
	if status, present := set["status"]; present && status == models.StatusCompleted {
		set["completed_at"] = time.Now().UTC()
		set["done"] = true
	}

	res, err := h.Store.UpdateTask(r.Context(),
		bson.M{"_id": id, "user_id": owner},
		bson.M{"$set": set})
	if err != nil {
		RespondError(w, http.StatusServiceUnavailable, "Storage unavailable")
		return
	}
	if res.MatchedCount == 0 {
		RespondError(w, http.StatusNotFound, "Task not found")
		return
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// DeleteTask removes an owned task. A foreign or unknown id yields 404
// without touching anything.
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerObjectID(w, r)
	if !ok {
		return
	}
	id, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}

	res, err := h.Store.DeleteTask(r.Context(), bson.M{"_id": id, "user_id": owner})
	if err != nil {
		RespondError(w, http.StatusServiceUnavailable, "Storage unavailable")
		return
	}
	if res.DeletedCount == 0 {
		RespondError(w, http.StatusNotFound, "Task not found")
		return
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// ToggleTask flips the done flag of an owned task and returns the new
// value. Toggling twice lands back on the original state.
func (h *Handler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerObjectID(w, r)
	if !ok {
		return
	}
	id, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}

	task, err := h.Store.FindTask(r.Context(), bson.M{"_id": id, "user_id": owner})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			RespondError(w, http.StatusNotFound, "Task not found")
			return
		}
		RespondError(w, http.StatusServiceUnavailable, "Storage unavailable")
		return
	}

	done := !task.Done
	_, err = h.Store.UpdateTask(r.Context(),
		bson.M{"_id": id, "user_id": owner},
		bson.M{"$set": bson.M{"done": done}})
	if err != nil {
		RespondError(w, http.StatusServiceUnavailable, "Storage unavailable")
		return
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "done": done})
}

// TasksByCategory filters the caller's tasks by the tab label in the path.
func (h *Handler) TasksByCategory(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerObjectID(w, r)
	if !ok {
		return
	}
	category := mux.Vars(r)["category"]

	tasks, err := h.Store.FindTasks(r.Context(), bson.M{"user_id": owner, "tab": category})
	if err != nil {
		RespondError(w, http.StatusServiceUnavailable, "Storage unavailable")
		return
	}

	RespondJSON(w, http.StatusOK, tasks)
}
