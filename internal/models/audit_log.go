package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditAction enumerates the recorded audit actions
type AuditAction string

const (
	ActionCreate  AuditAction = "create"
	ActionUpdate  AuditAction = "update"
	ActionDelete  AuditAction = "delete"
	ActionLogin   AuditAction = "login"
	ActionLogout  AuditAction = "logout"
	ActionApprove AuditAction = "approve"
	ActionReject  AuditAction = "reject"
	ActionLock    AuditAction = "lock"
	ActionUnlock  AuditAction = "unlock"
)

// EntityType enumerates the audited entity kinds
type EntityType string

const (
	EntityTask  EntityType = "task"
	EntityGroup EntityType = "group"
	EntityUser  EntityType = "user"
	// EntityTaskFile appears in persisted audit data; no operation
	// currently emits it.
	EntityTaskFile EntityType = "task_file"
)

// AuditLog is an append-only record of a state change. Rows are never
// updated or deleted by the application; username and entity_name are
// denormalized so entries outlive the rows they reference.
type AuditLog struct {
	ID         string         `json:"id" gorm:"primaryKey"`
	UserID     string         `json:"user_id" gorm:"column:user_id;index"`
	Username   string         `json:"username"`
	Action     AuditAction    `json:"action" gorm:"not null;index"`
	EntityType EntityType     `json:"entity_type" gorm:"column:entity_type;not null;index"`
	EntityID   string         `json:"entity_id" gorm:"column:entity_id;index"`
	EntityName string         `json:"entity_name" gorm:"column:entity_name"`
	OldValues  datatypes.JSON `json:"old_values" gorm:"column:old_values"`
	NewValues  datatypes.JSON `json:"new_values" gorm:"column:new_values"`
	CreatedAt  time.Time      `json:"created_at" gorm:"index"`
}

// TableName specifies the table name for AuditLog Model
func (AuditLog) TableName() string {
	return "audit_logs"
}
