package models

import "time"

// TaskGroup represents a group of tasks on the board.
// Deleting a group cascades to its member tasks (see Task.Group constraint).
type TaskGroup struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	Name       string    `json:"name" gorm:"not null"`
	Color      string    `json:"color"`
	StartDate  string    `json:"start_date" gorm:"column:start_date"`
	EndDate    string    `json:"end_date" gorm:"column:end_date"`
	IsExpanded bool      `json:"is_expanded" gorm:"column:is_expanded;default:true"`
	SortOrder  int       `json:"sort_order" gorm:"column:sort_order;index"`
	CreatedBy  string    `json:"created_by" gorm:"column:created_by"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName specifies the table name for TaskGroup Model
func (TaskGroup) TableName() string {
	return "task_groups"
}

// Snapshot returns the full-row audit snapshot of the group.
func (g *TaskGroup) Snapshot() map[string]any {
	return map[string]any{
		"id":          g.ID,
		"name":        g.Name,
		"color":       g.Color,
		"start_date":  g.StartDate,
		"end_date":    g.EndDate,
		"is_expanded": g.IsExpanded,
		"sort_order":  g.SortOrder,
		"created_by":  g.CreatedBy,
		"created_at":  g.CreatedAt,
		"updated_at":  g.UpdatedAt,
	}
}
