package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/taskmanager-ai/backend/auth"
	"github.com/taskmanager-ai/backend/i18n"
	"github.com/taskmanager-ai/backend/lib/utils"
	storage "github.com/taskmanager-ai/backend/storage/persistent"
)

type profileUpdateRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type deleteAccountRequest struct {
	Password string `json:"password"`
}

type settingsRequest struct {
	Language      *string `json:"language"`
	Theme         *string `json:"theme"`
	Notifications *bool   `json:"notifications"`
}

// Profile returns the caller's account record. The password hash never
// serializes.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerObjectID(w, r)
	if !ok {
		return
	}

	user, err := h.Store.FindUser(r.Context(), bson.M{"_id": owner})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			RespondError(w, http.StatusNotFound, "User not found")
			return
		}
		RespondError(w, http.StatusServiceUnavailable, "Storage unavailable")
		return
	}

	RespondJSON(w, http.StatusOK, user)
}

// UpdateProfile updates name and email. A new email must be well formed
// and not already claimed by another account.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerObjectID(w, r)
	if !ok {
		return
	}

	var req profileUpdateRequest
	if err := decodeBody(r, &req); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	set := bson.M{}
	if name := strings.TrimSpace(req.Name); name != "" {
		set["name"] = name
	}
	if req.Email != "" {
		email := utils.NormalizeEmail(req.Email)
		if !utils.ValidateEmail(email) {
			RespondError(w, http.StatusBadRequest, "Invalid email address")
			return
		}
		count, err := h.Store.UserCount(r.Context(), bson.M{
			"email": email,
			"_id":   bson.M{"$ne": owner},
		})
		if err != nil {
			RespondError(w, http.StatusServiceUnavailable, "Storage unavailable")
			return
		}
		if count > 0 {
			RespondError(w, http.StatusConflict, "Email is already in use")
			return
		}
		set["email"] = email
	}
	if len(set) == 0 {
		RespondError(w, http.StatusBadRequest, "Nothing to update")
		return
	}

	user, err := h.Store.UpdateUser(r.Context(), bson.M{"_id": owner}, bson.M{"$set": set})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			RespondError(w, http.StatusNotFound, "User not found")
			return
		}
		RespondError(w, http.StatusServiceUnavailable, "Storage unavailable")
		return
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "user": user})
}

// ChangePassword verifies the current password before setting the new one.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeBody(r, &req); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := auth.ChangePassword(r.Context(), userID(r), req.CurrentPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidInput) {
			RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if errors.Is(err, auth.ErrAuthentication) {
			RespondError(w, http.StatusUnauthorized, "Current password is incorrect")
			return
		}
		RespondError(w, http.StatusInternalServerError, "Could not change password")
		return
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Password changed"})
}

// DeleteAccount removes the account and everything it owns after a
// password check.
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	var req deleteAccountRequest
	if err := decodeBody(r, &req); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := auth.DeleteAccount(r.Context(), userID(r), req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrAuthentication) {
			RespondError(w, http.StatusUnauthorized, "Password is incorrect")
			return
		}
		RespondError(w, http.StatusInternalServerError, "Could not delete account")
		return
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Account deleted"})
}

// ExportProfile downloads the caller's account record as a JSON file.
func (h *Handler) ExportProfile(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerObjectID(w, r)
	if !ok {
		return
	}

	user, err := h.Store.FindUser(r.Context(), bson.M{"_id": owner})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			RespondError(w, http.StatusNotFound, "User not found")
			return
		}
		RespondError(w, http.StatusServiceUnavailable, "Storage unavailable")
		return
	}

	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=profile_%s.json", time.Now().Format("20060102")))
	RespondJSON(w, http.StatusOK, user)
}

// UpdateSettings patches the caller's persisted preferences. Only the
// submitted fields change; the language must be a supported locale.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerObjectID(w, r)
	if !ok {
		return
	}

	var req settingsRequest
	if err := decodeBody(r, &req); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	set := bson.M{}
	if req.Language != nil {
		if !i18n.Supported(*req.Language) {
			RespondError(w, http.StatusBadRequest, "Unsupported language")
			return
		}
		set["settings.language"] = *req.Language
	}
	if req.Theme != nil {
		set["settings.theme"] = *req.Theme
	}
	if req.Notifications != nil {
		set["settings.notifications"] = *req.Notifications
	}
	if len(set) == 0 {
		RespondError(w, http.StatusBadRequest, "Nothing to update")
		return
	}

	user, err := h.Store.UpdateUser(r.Context(), bson.M{"_id": owner}, bson.M{"$set": set})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			RespondError(w, http.StatusNotFound, "User not found")
			return
		}
		RespondError(w, http.StatusServiceUnavailable, "Storage unavailable")
		return
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "settings": user.Settings})
}
