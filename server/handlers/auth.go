package handlers

import (
	"errors"
	"net/http"

	"github.com/taskmanager-ai/backend/auth"
)

type signUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// SignUp registers a new account and signs the caller in immediately,
// returning the same token pair as SignIn.
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decodeBody(r, &req); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	authToken, refreshToken, err := auth.SignUp(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidInput) {
			RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		RespondError(w, http.StatusInternalServerError, "Could not create account")
		return
	}

	RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"success":      true,
		"authToken":    authToken,
		"refreshToken": refreshToken,
	})
}

// SignIn verifies credentials and returns a fresh token pair.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeBody(r, &req); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	authToken, refreshToken, err := auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrAuthentication) || errors.Is(err, auth.ErrInvalidInput) {
			RespondError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		RespondError(w, http.StatusInternalServerError, "Could not sign in")
		return
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"authToken":    authToken,
		"refreshToken": refreshToken,
	})
}

// SignOut exists for clients that expect a logout endpoint. Sessions are
// stateless bearer tokens, so the server has nothing to revoke; the client
// discards its tokens.
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Signed out",
	})
}

// RefreshToken exchanges a valid refresh token for a new token pair.
func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeBody(r, &req); err != nil || req.RefreshToken == "" {
		RespondError(w, http.StatusBadRequest, "Refresh token is required")
		return
	}

	authToken, refreshToken, err := auth.RefreshToken(req.RefreshToken)
	if err != nil {
		RespondError(w, http.StatusUnauthorized, "Token is expired or invalid")
		return
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"authToken":    authToken,
		"refreshToken": refreshToken,
	})
}

// ForgotPassword kicks off the reset flow. The response is identical for
// known and unknown emails so the endpoint cannot be used to probe accounts.
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeBody(r, &req); err != nil || req.Email == "" {
		RespondError(w, http.StatusBadRequest, "Email is required")
		return
	}

	if err := auth.ForgotPassword(r.Context(), req.Email); err != nil {
		if errors.Is(err, auth.ErrInvalidInput) {
			RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		RespondError(w, http.StatusInternalServerError, "Could not process request")
		return
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "If an account exists for that email, a reset code has been sent.",
	})
}

// ResetPassword completes the reset flow with the emailed code.
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeBody(r, &req); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := auth.ResetPassword(r.Context(), req.Email, req.Token, req.NewPassword); err != nil {
		if errors.Is(err, auth.ErrInvalidInput) {
			RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if errors.Is(err, auth.ErrAuthentication) {
			RespondError(w, http.StatusUnauthorized, "Reset code is invalid or expired")
			return
		}
		RespondError(w, http.StatusInternalServerError, "Could not reset password")
		return
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Password has been reset",
	})
}
