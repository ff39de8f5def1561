package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/taskmanager-ai/backend/models"
)

// exportedTask is the portable task view: identifiers and ownership are
// stripped so an export can be imported into any account.
type exportedTask struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Deadline    string `json:"deadline"`
	Priority    string `json:"priority"`
	Category    string `json:"category"`
	Status      string `json:"status"`
	Done        bool   `json:"done"`
	Tab         string `json:"tab,omitempty"`
}

// ExportTasks downloads the caller's tasks as a JSON attachment.
func (h *Handler) ExportTasks(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerObjectID(w, r)
	if !ok {
		return
	}

	tasks, err := h.Store.FindTasks(r.Context(), bson.M{"user_id": owner})
	if err != nil {
		RespondError(w, http.StatusServiceUnavailable, "Storage unavailable")
		return
	}

	exported := make([]exportedTask, 0, len(tasks))
	for _, t := range tasks {
		exported = append(exported, exportedTask{
			Title:       t.Title,
			Description: t.Description,
			Deadline:    t.Deadline,
			Priority:    t.Priority,
			Category:    t.Category,
			Status:      t.Status,
			Done:        t.Done,
			Tab:         t.Tab,
		})
	}

	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=tasks_%s.json", time.Now().Format("20060102")))
	RespondJSON(w, http.StatusOK, exported)
}

// ImportTasks ingests a JSON array of tasks, re-owning every record to the
// caller. Records missing a title or deadline are skipped and the response
// reports how many made it in.
func (h *Handler) ImportTasks(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerObjectID(w, r)
	if !ok {
		return
	}

	var incoming []exportedTask
	if err := decodeBody(r, &incoming); err != nil {
		RespondError(w, http.StatusBadRequest, "Body must be a JSON array of tasks")
		return
	}

	imported, skipped := 0, 0
	for _, in := range incoming {
		in.Title = strings.TrimSpace(in.Title)
		if in.Title == "" || in.Deadline == "" {
			skipped++
			continue
		}
		if in.Priority == "" {
			in.Priority = "medium"
		}
		if in.Status == "" {
			in.Status = models.StatusPending
		}

		task := &models.Task{
			UserID:      owner,
			Title:       in.Title,
			Description: in.Description,
			Deadline:    in.Deadline,
			Priority:    in.Priority,
			Category:    in.Category,
			Status:      in.Status,
			Done:        in.Done,
			Tab:         in.Tab,
			CreatedAt:   time.Now().UTC(),
		}
		if _, err := h.Store.AddTask(r.Context(), task); err != nil {
			RespondError(w, http.StatusServiceUnavailable, "Storage unavailable")
			return
		}
		imported++
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"imported": imported,
		"skipped":  skipped,
	})
}
