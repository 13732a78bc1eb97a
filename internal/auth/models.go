package auth

import "storefront/internal/session"

// Credentials is the login payload
type Credentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is what the backend answers to a successful login
type LoginResponse struct {
	Token   string        `json:"token"`
	Refresh string        `json:"refresh,omitempty"`
	User    *session.User `json:"user"`
}

// Registration is the sign-up form. ConfirmPassword is sent as password2.
type Registration struct {
	Username        string `json:"username" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
	Phone           string `json:"phone,omitempty"`
}

type registrationPayload struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
	Phone     string `json:"phone,omitempty"`
}

// ProfileUpdate carries the editable profile fields; nil fields are not sent
type ProfileUpdate struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty" binding:"omitempty,email"`
	Phone    *string `json:"phone,omitempty"`
}

// PasswordChange is the change-password form
type PasswordChange struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

type passwordChangePayload struct {
	OldPassword  string `json:"old_password"`
	NewPassword  string `json:"new_password"`
	NewPassword2 string `json:"new_password2"`
}
