package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/taskmanager-ai/backend/models"
)

type routineRequest struct {
	Date      string `json:"date"`
	Task      string `json:"task"`
	Time      string `json:"time"`
	Completed *bool  `json:"completed"`
}

func validDate(s string) bool {
	_, err := time.Parse(models.DateLayout, s)
	return err == nil
}

// ListRoutines returns the caller's routine entries. With no query
// parameters it returns everything; ?date= narrows to one day and
// ?from=&to= to an inclusive range. Results come back ordered by date
// then time.
func (h *Handler) ListRoutines(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerObjectID(w, r)
	if !ok {
		return
	}

	filter := bson.M{"user_id": owner}
	q := r.URL.Query()
	if date := q.Get("date"); date != "" {
		if !validDate(date) {
			RespondError(w, http.StatusBadRequest, "Date must use the format YYYY-MM-DD")
			return
		}
		filter["date"] = date
	} else if from, to := q.Get("from"), q.Get("to"); from != "" || to != "" {
		span := bson.M{}
		if from != "" {
			if !validDate(from) {
				RespondError(w, http.StatusBadRequest, "From must use the format YYYY-MM-DD")
				return
			}
			span["$gte"] = from
		}
		if to != "" {
			if !validDate(to) {
				RespondError(w, http.StatusBadRequest, "To must use the format YYYY-MM-DD")
				return
			}
			span["$lte"] = to
		}
		filter["date"] = span
	}

	routines, err := h.Store.FindRoutines(r.Context(), filter)
	if err != nil {
		RespondError(w, http.StatusServiceUnavailable, "Storage unavailable")
		return
	}

	RespondJSON(w, http.StatusOK, routines)
}

// RoutinesByDate returns the caller's routines for the day in the path.
func (h *Handler) RoutinesByDate(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerObjectID(w, r)
	if !ok {
		return
	}

	date := mux.Vars(r)["date"]
	if !validDate(date) {
		RespondError(w, http.StatusBadRequest, "Date must use the format YYYY-MM-DD")
		return
	}

	routines, err := h.Store.FindRoutines(r.Context(), bson.M{"user_id": owner, "date": date})
	if err != nil {
		RespondError(w, http.StatusServiceUnavailable, "Storage unavailable")
		return
	}

	RespondJSON(w, http.StatusOK, routines)
}

// AddRoutine stores a new routine entry for the caller.
func (h *Handler) AddRoutine(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerObjectID(w, r)
	if !ok {
		return
	}

	var req routineRequest
	if err := decodeBody(r, &req); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Task = strings.TrimSpace(req.Task)
	if req.Task == "" || req.Date == "" {
		RespondError(w, http.StatusBadRequest, "Task and date are required")
		return
	}
	if !validDate(req.Date) {
		RespondError(w, http.StatusBadRequest, "Date must use the format YYYY-MM-DD")
		return
	}

	routine := &models.Routine{
		UserID:    owner,
		Date:      req.Date,
		Task:      req.Task,
		Time:      req.Time,
		Completed: false,
		CreatedAt: time.Now().UTC(),
	}

	created, err := h.Store.AddRoutine(r.Context(), routine)
	if err != nil {
		RespondError(w, http.StatusServiceUnavailable, "Storage unavailable")
		return
	}

	RespondJSON(w, http.StatusCreated, created)
}

// UpdateRoutine applies a partial update to an owned routine entry.
func (h *Handler) UpdateRoutine(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerObjectID(w, r)
	if !ok {
		return
	}
	id, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}

	var req routineRequest
	if err := decodeBody(r, &req); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if req.Date != "" {
		if !validDate(req.Date) {
			RespondError(w, http.StatusBadRequest, "Date must use the format YYYY-MM-DD")
			return
		}
		set["date"] = req.Date
	}
	if req.Task != "" {
		set["task"] = strings.TrimSpace(req.Task)
	}
	if req.Time != "" {
		set["time"] = req.Time
	}
	if req.Completed != nil {
		set["completed"] = *req.Completed
	}

	res, err := h.Store.UpdateRoutine(r.Context(),
		bson.M{"_id": id, "user_id": owner},
		bson.M{"$set": set})
	if err != nil {
		RespondError(w, http.StatusServiceUnavailable, "Storage unavailable")
		return
	}
	if res.MatchedCount == 0 {
		RespondError(w, http.StatusNotFound, "Routine not found")
		return
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// DeleteRoutine removes an owned routine entry, 404 on a foreign or
// unknown id.
func (h *Handler) DeleteRoutine(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerObjectID(w, r)
	if !ok {
		return
	}
	id, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}

	res, err := h.Store.DeleteRoutine(r.Context(), bson.M{"_id": id, "user_id": owner})
	if err != nil {
		RespondError(w, http.StatusServiceUnavailable, "Storage unavailable")
		return
	}
	if res.DeletedCount == 0 {
		RespondError(w, http.StatusNotFound, "Routine not found")
		return
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
