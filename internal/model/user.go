package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
	RoleUser  = "user"
)

const (
	ProviderCredentials = "credentials"
	ProviderGoogle      = "google"
	ProviderFacebook    = "facebook"
	ProviderApple       = "apple"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleStaff || role == RoleUser
}

// User represents a user in the system. Email is stored lower-cased so the
// unique index enforces case-insensitive uniqueness; the same applies to
// PhoneNumber when present.
type User struct {
	ID               string     `json:"id" gorm:"primaryKey;size:36"`
	Email            string     `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash     *string    `json:"-"` // nil for externally-authenticated accounts
	FirstName        *string    `json:"first_name,omitempty"`
	LastName         *string    `json:"last_name,omitempty"`
	PhoneNumber      *string    `json:"phone_number,omitempty" gorm:"uniqueIndex"`
	PhoneCountryCode *string    `json:"phone_country_code,omitempty"`
	DateOfBirth      *time.Time `json:"date_of_birth,omitempty"`
	ProfileImageURL  *string    `json:"profile_image_url,omitempty" gorm:"type:text"`
	Provider         string     `json:"provider" gorm:"default:credentials"`
	ProviderID       *string    `json:"provider_id,omitempty"`
	IsEmailVerified  bool       `json:"is_email_verified" gorm:"default:false"`
	IsPhoneVerified  bool       `json:"is_phone_verified" gorm:"default:false"`
	TwoFactorEnabled bool       `json:"two_factor_enabled" gorm:"default:false"`
	TwoFactorSecret  *string    `json:"-"` // non-nil only while TwoFactorEnabled
	Role             string     `json:"role" gorm:"default:user"`
	IsActive         bool       `json:"is_active" gorm:"default:true"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty" gorm:"autoUpdateTime:false"` // set on mutation only
}

// BeforeCreate assigns a server-generated ID when none is set.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// UserDTO is the public-facing shape of a User. It never carries the password
// hash or the two-factor secret.
type UserDTO struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	FirstName        *string    `json:"first_name,omitempty"`
	LastName         *string    `json:"last_name,omitempty"`
	PhoneNumber      *string    `json:"phone_number,omitempty"`
	PhoneCountryCode *string    `json:"phone_country_code,omitempty"`
	DateOfBirth      *time.Time `json:"date_of_birth,omitempty"`
	ProfileImageURL  *string    `json:"profile_image_url,omitempty"`
	Provider         string     `json:"provider"`
	IsEmailVerified  bool       `json:"is_email_verified"`
	IsPhoneVerified  bool       `json:"is_phone_verified"`
	TwoFactorEnabled bool       `json:"two_factor_enabled"`
	Role             string     `json:"role"`
	IsActive         bool       `json:"is_active"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty"`
}

// ToDTO converts a persisted User to its public representation.
func (u *User) ToDTO() *UserDTO {
	return &UserDTO{
		ID:               u.ID,
		Email:            u.Email,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		PhoneNumber:      u.PhoneNumber,
		PhoneCountryCode: u.PhoneCountryCode,
		DateOfBirth:      u.DateOfBirth,
		ProfileImageURL:  u.ProfileImageURL,
		Provider:         u.Provider,
		IsEmailVerified:  u.IsEmailVerified,
		IsPhoneVerified:  u.IsPhoneVerified,
		TwoFactorEnabled: u.TwoFactorEnabled,
		Role:             u.Role,
		IsActive:         u.IsActive,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}

// CreateUserRequest is the registration payload.
type CreateUserRequest struct {
	Email            string     `json:"email" binding:"required,email"`
	Password         string     `json:"password" binding:"required,password"`
	FirstName        *string    `json:"first_name"`
	LastName         *string    `json:"last_name"`
	PhoneNumber      *string    `json:"phone_number"`
	PhoneCountryCode *string    `json:"phone_country_code"`
	DateOfBirth      *time.Time `json:"date_of_birth"`
	ProfileImageURL  *string    `json:"profile_image_url"`
}

// UpdateUserRequest carries partial profile updates; nil fields are untouched.
type UpdateUserRequest struct {
	FirstName        *string    `json:"first_name,omitempty"`
	LastName         *string    `json:"last_name,omitempty"`
	PhoneNumber      *string    `json:"phone_number,omitempty"`
	PhoneCountryCode *string    `json:"phone_country_code,omitempty"`
	DateOfBirth      *time.Time `json:"date_of_birth,omitempty"`
	ProfileImageURL  *string    `json:"profile_image_url,omitempty"`
}

type LoginRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"rememberMe"`
}

type RefreshTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,password"`
}

// UserFilters contains the composable filters for admin user queries.
// Exact/boolean filters plus case-insensitive substring filters; Search
// substring-matches first name OR last name OR email.
type UserFilters struct {
	Role             *string
	IsActive         *bool
	Provider         *string
	IsEmailVerified  *bool
	IsPhoneVerified  *bool
	TwoFactorEnabled *bool
	Email            *string
	PhoneNumber      *string
	FirstName        *string
	LastName         *string
	Search           *string
}

// Pagination is 1-indexed. Defaults: page 1, limit 10, sorted by created_at
// descending.
type Pagination struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

func (p *Pagination) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 10
	}
	if p.SortBy == "" {
		p.SortBy = "created_at"
	}
	if p.SortOrder != "asc" {
		p.SortOrder = "desc"
	}
}

func (p *Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// UserPage is a single page of results.
type UserPage struct {
	Items      []UserDTO `json:"items"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"totalPages"`
}

// RoleCount is one row of the grouped count-by-role aggregate.
type RoleCount struct {
	Role  string `json:"role"`
	Count int64  `json:"count"`
}
