package audit

import (
	"encoding/json"

	"scrumboard-api/internal/logger"
	"scrumboard-api/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Recorder appends entries to the audit log. Writes are best-effort:
// a failed insert is logged and swallowed, never propagated, because
// the primary mutation it accompanies has already succeeded.
type Recorder struct {
	db *gorm.DB
}

// NewRecorder creates a Recorder over the given database handle.
func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

// Entry is the input to Record. OldValues/NewValues may be nil, which
// persists as JSON null.
type Entry struct {
	UserID     string
	Username   string
	Action     models.AuditAction
	EntityType models.EntityType
	EntityID   string
	EntityName string
	OldValues  any
	NewValues  any
}

// Record writes one audit row. It never returns an error.
func (r *Recorder) Record(e Entry) {
	row := models.AuditLog{
		ID:         uuid.NewString(),
		UserID:     e.UserID,
		Username:   e.Username,
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		EntityName: e.EntityName,
		OldValues:  marshalValues(e.OldValues),
		NewValues:  marshalValues(e.NewValues),
	}
	if err := r.db.Create(&row).Error; err != nil {
		logger.Warn("audit write failed",
			zap.String("action", string(e.Action)),
			zap.String("entity_type", string(e.EntityType)),
			zap.String("entity_id", e.EntityID),
			zap.Error(err))
	}
}

func marshalValues(v any) datatypes.JSON {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		logger.Warn("audit snapshot marshal failed", zap.Error(err))
		return nil
	}
	return datatypes.JSON(b)
}
