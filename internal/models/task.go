package models

import (
	"time"

	"gorm.io/datatypes"
)

// TaskStatus represents the status of a task. The strings are part of
// the persisted contract and must match existing data byte-for-byte.
type TaskStatus string

const (
	StatusNotStarted  TaskStatus = "Not Started"
	StatusWorkingOnIt TaskStatus = "Working on it"
	StatusStucking    TaskStatus = "Stucking"
	StatusInReview    TaskStatus = "In Review"
	StatusDone        TaskStatus = "Done"
)

// ValidTaskStatus reports whether s is one of the fixed status values.
// The strings are a persisted contract, so unknown values are rejected
// at the boundary rather than stored.
func ValidTaskStatus(s TaskStatus) bool {
	switch s {
	case StatusNotStarted, StatusWorkingOnIt, StatusStucking, StatusInReview, StatusDone:
		return true
	}
	return false
}

// Field names as persisted and exposed to the UI.
const (
	FieldTask               = "task"
	FieldOwner              = "owner"
	FieldAssign             = "assign"
	FieldUserStory          = "user_story"
	FieldAcceptanceCriteria = "acceptance_criteria"
	FieldStatus             = "status"
	FieldEstimateDate       = "estimate_date"
	FieldNotes              = "notes"
	FieldReviewer           = "reviewer"
	FieldReview             = "review"
)

// LockableFields is the fixed set of task fields whose editability by
// members is gated by the per-task lock map. Unknown keys are rejected
// at the boundary so a typo can never create an unenforced lock.
var LockableFields = map[string]bool{
	FieldTask:               true,
	FieldOwner:              true,
	FieldAssign:             true,
	FieldUserStory:          true,
	FieldAcceptanceCriteria: true,
	FieldStatus:             true,
	FieldEstimateDate:       true,
	FieldNotes:              true,
	FieldReviewer:           true,
	FieldReview:             true,
}

// LockMap is the per-task field lock ledger, stored as a JSON column.
type LockMap = datatypes.JSONType[map[string]bool]

// NewLockMap builds a LockMap column value from a plain map.
func NewLockMap(m map[string]bool) LockMap {
	return datatypes.NewJSONType(m)
}

// Task represents a task on the board
type Task struct {
	ID                 string     `json:"id" gorm:"primaryKey"`
	GroupID            string     `json:"group_id" gorm:"column:group_id;not null;index"`
	Title              string     `json:"task" gorm:"column:task"`
	Owner              string     `json:"owner"`
	Assign             string     `json:"assign"`
	UserStory          string     `json:"user_story" gorm:"column:user_story"`
	AcceptanceCriteria string     `json:"acceptance_criteria" gorm:"column:acceptance_criteria"`
	Notes              string     `json:"notes"`
	Reviewer           string     `json:"reviewer"`
	Review             string     `json:"review"`
	Status             TaskStatus `json:"status" gorm:"not null;default:'Not Started'"`
	CreateDate         string     `json:"create_date" gorm:"column:create_date"`
	EstimateDate       string     `json:"estimate_date" gorm:"column:estimate_date"`
	SortOrder          int        `json:"sort_order" gorm:"column:sort_order;index"`
	LockedFields       LockMap    `json:"locked_fields" gorm:"column:locked_fields"`
	LockedBy           string     `json:"locked_by" gorm:"column:locked_by"`
	CreatedBy          string     `json:"created_by" gorm:"column:created_by"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`

	Group TaskGroup `json:"-" gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE;"`
}

// TableName specifies the table name for Task Model
func (Task) TableName() string {
	return "tasks"
}

// Locks returns the lock map, never nil.
func (t *Task) Locks() map[string]bool {
	m := t.LockedFields.Data()
	if m == nil {
		return map[string]bool{}
	}
	return m
}

// FieldLocked reports whether a single field is currently locked.
func (t *Task) FieldLocked(field string) bool {
	return t.Locks()[field]
}

// Snapshot returns the full-row audit snapshot of the task.
func (t *Task) Snapshot() map[string]any {
	return map[string]any{
		"id":                  t.ID,
		"group_id":            t.GroupID,
		"task":                t.Title,
		"owner":               t.Owner,
		"assign":              t.Assign,
		"user_story":          t.UserStory,
		"acceptance_criteria": t.AcceptanceCriteria,
		"notes":               t.Notes,
		"reviewer":            t.Reviewer,
		"review":              t.Review,
		"status":              t.Status,
		"create_date":         t.CreateDate,
		"estimate_date":       t.EstimateDate,
		"sort_order":          t.SortOrder,
		"locked_fields":       t.Locks(),
		"locked_by":           t.LockedBy,
		"created_by":          t.CreatedBy,
		"created_at":          t.CreatedAt,
		"updated_at":          t.UpdatedAt,
	}
}
