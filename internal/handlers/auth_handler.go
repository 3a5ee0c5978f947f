package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bazaarchi/storefront/internal/middleware"
	"github.com/bazaarchi/storefront/internal/service"
)

// AuthHandler handles the OTP sign-in flow
type AuthHandler struct {
	auth *service.AuthService
	log  *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth *service.AuthService, log *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth: auth,
		log:  log,
	}
}

// otpRequest is the POST /api/auth/otp/request body
type otpRequest struct {
	Phone string `json:"phone"`
}

// otpVerifyRequest is the POST /api/auth/otp/verify body
type otpVerifyRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

// RequestOTP handles POST /api/auth/otp/request
func (h *AuthHandler) RequestOTP(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, MsgInvalidRequest, h.log)
		return
	}

	if err := h.auth.RequestOTP(r.Context(), req.Phone); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPhone):
			WriteError(w, http.StatusBadRequest, MsgInvalidPhone, h.log)
		case errors.Is(err, service.ErrOTPThrottled):
			WriteError(w, http.StatusTooManyRequests, MsgOTPThrottled, h.log)
		default:
			h.log.Error("failed to request otp", "error", err)
			WriteError(w, http.StatusInternalServerError, MsgInternalError, h.log)
		}
		return
	}

	WriteData(w, http.StatusOK, map[string]interface{}{"sent": true}, h.log)
}

// VerifyOTP handles POST /api/auth/otp/verify
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req otpVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, MsgInvalidRequest, h.log)
		return
	}

	token, user, err := h.auth.VerifyOTP(r.Context(), req.Phone, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPhone):
			WriteError(w, http.StatusBadRequest, MsgInvalidPhone, h.log)
		case errors.Is(err, service.ErrOTPInvalid):
			WriteError(w, http.StatusBadRequest, MsgOTPInvalid, h.log)
		case errors.Is(err, service.ErrTooManyAttempts):
			WriteError(w, http.StatusTooManyRequests, MsgTooManyAttempts, h.log)
		default:
			h.log.Error("failed to verify otp", "error", err)
			WriteError(w, http.StatusInternalServerError, MsgInternalError, h.log)
		}
		return
	}

	h.log.Info("user signed in", "user_id", user.ID)
	WriteData(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	}, h.log)
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, MsgUnauthorized, h.log)
		return
	}

	WriteData(w, http.StatusOK, map[string]interface{}{
		"userId": claims.Subject,
		"phone":  claims.Phone,
		"role":   claims.Role,
	}, h.log)
}
