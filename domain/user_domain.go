package domain

import (
	"mime/multipart"
	"strings"
	"time"

	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/entities"
)

var (
	MessageSuccessRegister       = "user registered successfully"
	MessageSuccessLogin          = "login successful"
	MessageSuccessGetUser        = "user retrieved successfully"
	MessageSuccessUpdateUser     = "user updated successfully"
	MessageSuccessUpdateAvatar   = "avatar updated successfully"
	MessageSuccessChangePassword = "password changed successfully"
	MessageSuccessForgotPassword = "if the email is registered, a reset link was sent"
	MessageSuccessResetPassword  = "password reset successfully"

	MessageFailedRegister       = "failed to register user"
	MessageFailedLogin          = "failed to login"
	MessageFailedGetUser        = "failed to retrieve user"
	MessageFailedUpdateUser     = "failed to update user"
	MessageFailedUpdateAvatar   = "failed to update avatar"
	MessageFailedChangePassword = "failed to change password"
	MessageFailedForgotPassword = "failed to request password reset"
	MessageFailedResetPassword  = "failed to reset password"

	ErrEmailAlreadyExists = newError(KindValidation, "email already registered")
	ErrInvalidCredentials = newError(KindAuthorization, "invalid email or password")
	ErrUserNotFound       = newError(KindNotFound, "user not found")
	ErrInvalidRole        = newError(KindValidation, "role must be Producer or Representative")
	ErrWrongPassword      = newError(KindAuthorization, "current password is incorrect")
	ErrInvalidResetToken  = newError(KindAuthorization, "invalid or expired reset token")
)

type (
	RegisterRequest struct {
		Name     string `json:"name" validate:"required"`
		Email    string `json:"email" validate:"required,mailformat"`
		Password string `json:"password" validate:"required,min=8"`
		Role     string `json:"role" validate:"required,oneof=Producer Representative"`
		Phone    string `json:"phone" validate:"omitempty"`
	}

	LoginRequest struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string     `json:"token"`
		User  PublicUser `json:"user"`
	}

	UpdateUserRequest struct {
		Name       *string `json:"name" validate:"omitempty,min=1"`
		Phone      *string `json:"phone"`
		BirthDate  *string `json:"birth_date"` // YYYY-MM-DD
		PostalCode *string `json:"postal_code"`
		City       *string `json:"city"`
		State      *string `json:"state" validate:"omitempty,len=2"`
		Bio        *string `json:"bio" validate:"omitempty,max=500"`
	}

	UpdateAvatarRequest struct {
		Avatar *multipart.FileHeader `form:"avatar" validate:"required"`
	}

	ChangePasswordRequest struct {
		CurrentPassword string `json:"current_password" validate:"required"`
		NewPassword     string `json:"new_password" validate:"required,min=8"`
	}

	ForgotPasswordRequest struct {
		Email string `json:"email" validate:"required,mailformat"`
	}

	ResetPasswordRequest struct {
		Token    string `json:"token" validate:"required"`
		Password string `json:"password" validate:"required,min=8"`
	}

	// PublicUser is the user record without credentials.
	PublicUser struct {
		ID         string     `json:"id"`
		Email      string     `json:"email"`
		Name       string     `json:"name"`
		Role       string     `json:"role"`
		Phone      string     `json:"phone,omitempty"`
		BirthDate  *time.Time `json:"birth_date,omitempty"`
		PostalCode string     `json:"postal_code,omitempty"`
		City       string     `json:"city,omitempty"`
		State      string     `json:"state,omitempty"`
		Bio        string     `json:"bio,omitempty"`
		AvatarURL  string     `json:"avatar_url,omitempty"`
		CreatedAt  time.Time  `json:"created_at"`
	}
)

// ToPublicUser is the single mapping from a stored user to its safe projection.
func ToPublicUser(u *entities.User) PublicUser {
	return PublicUser{
		ID:         u.ID.String(),
		Email:      u.Email,
		Name:       u.Name,
		Role:       u.Role,
		Phone:      u.Phone,
		BirthDate:  u.BirthDate,
		PostalCode: u.PostalCode,
		City:       u.City,
		State:      u.State,
		Bio:        u.Bio,
		AvatarURL:  u.AvatarURL,
		CreatedAt:  u.CreatedAt,
	}
}

// ToPublicUserPtr maps a possibly missing user; nil stays nil.
func ToPublicUserPtr(u *entities.User) *PublicUser {
	if u == nil {
		return nil
	}
	pu := ToPublicUser(u)
	return &pu
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
