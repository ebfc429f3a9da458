package pipeline

import (
	"encoding/json"
	"time"

	"scrumboard-api/internal/audit"
	"scrumboard-api/internal/models"

	"gorm.io/gorm"
)

// AuditService reads the audit trail. There is deliberately no write
// surface here beyond what the mutation pipeline records, and no way
// to modify or remove entries.
type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// AuditQuery filters the trail. Zero values mean "no filter".
type AuditQuery struct {
	EntityType models.EntityType
	EntityID   string
	UserID     string
	Action     models.AuditAction
	From       time.Time
	To         time.Time
	Page       int
	Limit      int
}

func (q *AuditQuery) normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 50
	}
	if q.Limit > 500 {
		q.Limit = 500
	}
}

// AuditEntry pairs a raw log row with its rendered message and the
// field-level changes derived from the stored snapshots.
type AuditEntry struct {
	models.AuditLog
	Message string              `json:"message"`
	Changes []audit.FieldChange `json:"changes,omitempty"`
}

// changesFor decodes the stored snapshots and diffs them. Rows without
// both sides (creates, deletes, logins) yield no change list. The new
// side is the submitted delta while the old side is the full pre-image,
// so the pre-image is scoped down to the delta's keys before diffing.
func changesFor(row *models.AuditLog) []audit.FieldChange {
	if len(row.OldValues) == 0 || len(row.NewValues) == 0 {
		return nil
	}
	var oldValues, newValues map[string]any
	if json.Unmarshal(row.OldValues, &oldValues) != nil {
		return nil
	}
	if json.Unmarshal(row.NewValues, &newValues) != nil {
		return nil
	}
	for k := range oldValues {
		if _, touched := newValues[k]; !touched {
			delete(oldValues, k)
		}
	}
	return audit.DiffFields(oldValues, newValues)
}

// List returns matching entries newest first, with total for paging.
func (s *AuditService) List(q AuditQuery) ([]AuditEntry, int64, error) {
	q.normalize()

	query := s.db.Model(&models.AuditLog{})
	if q.EntityType != "" {
		query = query.Where("entity_type = ?", q.EntityType)
	}
	if q.EntityID != "" {
		query = query.Where("entity_id = ?", q.EntityID)
	}
	if q.UserID != "" {
		query = query.Where("user_id = ?", q.UserID)
	}
	if q.Action != "" {
		query = query.Where("action = ?", q.Action)
	}
	if !q.From.IsZero() {
		query = query.Where("created_at >= ?", q.From)
	}
	if !q.To.IsZero() {
		query = query.Where("created_at <= ?", q.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, &StoreError{Op: "count audit entries", Err: err}
	}

	var rows []models.AuditLog
	err := query.Session(&gorm.Session{}).
		Order("created_at desc").
		Limit(q.Limit).
		Offset((q.Page - 1) * q.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, &StoreError{Op: "list audit entries", Err: err}
	}

	entries := make([]AuditEntry, 0, len(rows))
	for i := range rows {
		entries = append(entries, AuditEntry{
			AuditLog: rows[i],
			Message:  audit.FormatMessage(&rows[i]),
			Changes:  changesFor(&rows[i]),
		})
	}
	return entries, total, nil
}
