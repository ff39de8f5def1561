package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/taskmanager-ai/backend/models"
	storage "github.com/taskmanager-ai/backend/storage/persistent"
)

type habitRequest struct {
	Name string `json:"name"`
}

// ListHabits returns the caller's habits.
func (h *Handler) ListHabits(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerObjectID(w, r)
	if !ok {
		return
	}

	habits, err := h.Store.FindHabits(r.Context(), bson.M{"user_id": owner})
	if err != nil {
		RespondError(w, http.StatusServiceUnavailable, "Storage unavailable")
		return
	}

	RespondJSON(w, http.StatusOK, habits)
}

// CreateHabit stores a new habit with all seven day flags cleared.
func (h *Handler) CreateHabit(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerObjectID(w, r)
	if !ok {
		return
	}

	var req habitRequest
	if err := decodeBody(r, &req); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		RespondError(w, http.StatusBadRequest, "Name is required")
		return
	}

	habit := &models.Habit{
		UserID:        owner,
		Name:          req.Name,
		CompletedDays: make([]bool, 7),
	}

	created, err := h.Store.AddHabit(r.Context(), habit)
	if err != nil {
		RespondError(w, http.StatusServiceUnavailable, "Storage unavailable")
		return
	}

	RespondJSON(w, http.StatusCreated, created)
}

// ToggleHabitDay flips one weekday flag of an owned habit. Day indices run
// 0 through 6, Monday first.
func (h *Handler) ToggleHabitDay(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerObjectID(w, r)
	if !ok {
		return
	}
	id, ok := pathObjectID(w, r, "id")
	if !ok {
		return
	}

	day, err := strconv.Atoi(mux.Vars(r)["day"])
	if err != nil || day < 0 || day > 6 {
		RespondError(w, http.StatusBadRequest, "Day must be between 0 and 6")
		return
	}

	habit, err := h.Store.FindHabit(r.Context(), bson.M{"_id": id, "user_id": owner})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			RespondError(w, http.StatusNotFound, "Habit not found")
			return
		}
		RespondError(w, http.StatusServiceUnavailable, "Storage unavailable")
		return
	}

	days := make([]bool, 7)
	copy(days, habit.CompletedDays)
	days[day] = !days[day]

	_, err = h.Store.UpdateHabit(r.Context(),
		bson.M{"_id": id, "user_id": owner},
		bson.M{"$set": bson.M{"completed_days": days}})
	if err != nil {
		RespondError(w, http.StatusServiceUnavailable, "Storage unavailable")
		return
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "completedDays": days})
}
