package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"qr-attendance/backend/internal/dto"
	"qr-attendance/backend/internal/service"
	"qr-attendance/backend/pkg/response"
)

// AuthHandler staff authentication endpoints.
type AuthHandler struct {
	authSvc     service.AuthService
	hashEnabled bool
}

// NewAuthHandler creates an AuthHandler. hashEnabled toggles the
// hash-password utility.
func NewAuthHandler(authSvc service.AuthService, hashEnabled bool) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, hashEnabled: hashEnabled}
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "Username and password are required")
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OKWithMessage(c, "Login successful", result)
}

// Logout POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	jti, exp := tokenSession(c)
	if err := h.authSvc.Logout(c.Request.Context(), jti, exp); err != nil {
		h.handleAuthError(c, err)
		return
	}
	response.OKWithMessage(c, "Logout successful", nil)
}

// Profile GET /api/auth/profile
func (h *AuthHandler) Profile(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	user, err := h.authSvc.Profile(c.Request.Context(), userID)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}
	response.OK(c, user)
}

// ChangePassword POST /api/auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "current_password and new_password (at least 6 characters) are required")
		return
	}

	if err := h.authSvc.ChangePassword(c.Request.Context(), userID, &req); err != nil {
		h.handleAuthError(c, err)
		return
	}
	response.OKWithMessage(c, "Password changed successfully", nil)
}

// HashPassword POST /api/auth/hash-password
func (h *AuthHandler) HashPassword(c *gin.Context) {
	if !h.hashEnabled {
		response.NotFound(c, 10006, "Route not found")
		return
	}

	var req dto.HashPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "Password is required")
		return
	}

	result, err := h.authSvc.HashPassword(req.Password)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

func (h *AuthHandler) handleAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, 11001, "Invalid username or password")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 11002, "User not found")
	case errors.Is(err, service.ErrWrongPassword):
		response.BadRequest(c, 11003, "Current password is incorrect")
	case errors.Is(err, service.ErrPasswordTooShort):
		response.BadRequest(c, 11004, "New password must be at least 6 characters")
	default:
		response.InternalError(c)
	}
}
