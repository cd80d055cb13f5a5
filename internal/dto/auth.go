package dto

// ── auth requests ──

// LoginRequest username/password login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordRequest password change of the current user.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password"     binding:"required,min=6"`
}

// HashPasswordRequest debug hashing utility.
type HashPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}
