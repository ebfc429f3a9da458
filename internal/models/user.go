package models

import "time"

// Role represents a user's role on the board
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMod    Role = "mod"
	RoleMember Role = "member"
)

// Status represents a user's account status
type Status string

const (
	StatusPending Status = "pending"
	StatusActive  Status = "active"
	StatusLocked  Status = "locked"
)

// User represents a user in the system
type User struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"unique;not null"`
	Password  string    `json:"-" gorm:"not null"`
	Role      Role      `json:"role" gorm:"not null;default:'member'"`
	Status    Status    `json:"status" gorm:"not null;default:'pending'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for User Model
func (User) TableName() string {
	return "users"
}

// RoleStatusSnapshot returns the audit snapshot for user updates.
// Restricted to role/status so the password hash never reaches the audit log.
func (u *User) RoleStatusSnapshot() map[string]any {
	return map[string]any{
		"role":   u.Role,
		"status": u.Status,
	}
}

// Snapshot returns the full-row audit snapshot minus the password hash.
func (u *User) Snapshot() map[string]any {
	return map[string]any{
		"id":         u.ID,
		"username":   u.Username,
		"role":       u.Role,
		"status":     u.Status,
		"created_at": u.CreatedAt,
		"updated_at": u.UpdatedAt,
	}
}
