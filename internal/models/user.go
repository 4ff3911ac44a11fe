package models

import "time"

// UserRole represents the role assigned to a user account.
type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleAccountant UserRole = "accountant"
	RoleGatekeeper UserRole = "gatekeeper"
	RoleManager    UserRole = "manager"
)

// ValidRole reports whether the given role is one of the known roles.
func ValidRole(r UserRole) bool {
	switch r {
	case RoleAdmin, RoleAccountant, RoleGatekeeper, RoleManager:
		return true
	}
	return false
}

// User represents a staff account in the system
type User struct {
	Base
	Username            string     `gorm:"uniqueIndex;not null" json:"username"`
	Email               string     `gorm:"uniqueIndex;not null" json:"email"`
	Phone               string     `json:"phone,omitempty"`
	Password            string     `gorm:"not null" json:"-"`
	FirstName           string     `json:"first_name"`
	LastName            string     `json:"last_name"`
	Role                UserRole   `gorm:"not null;default:gatekeeper" json:"role"`
	IsActive            bool       `gorm:"default:true" json:"is_active"`
	RefreshTokenHash    string     `gorm:"size:64" json:"-"`
	FailedLoginAttempts int        `gorm:"default:0" json:"-"`
	LockedUntil         *time.Time `json:"-"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty"`
}

// DisplayName returns the user's full name, falling back to the username.
func (u *User) DisplayName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
