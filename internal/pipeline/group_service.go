package pipeline

import (
	"errors"

	"scrumboard-api/internal/audit"
	"scrumboard-api/internal/models"
	"scrumboard-api/internal/permission"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GroupService is the mutation pipeline for task groups. All group
// management is admin/mod-gated.
type GroupService struct {
	db  *gorm.DB
	rec *audit.Recorder
}

func NewGroupService(db *gorm.DB) *GroupService {
	return &GroupService{db: db, rec: audit.NewRecorder(db)}
}

func (s *GroupService) requireAdminOrMod(actor *models.User) error {
	if !permission.IsActive(actor) {
		return &PermissionDeniedError{Reason: "account not active"}
	}
	if !permission.IsAdminOrMod(actor) {
		return &PermissionDeniedError{Reason: "admin or mod required"}
	}
	return nil
}

// CreateGroupInput carries the writable fields for group creation.
type CreateGroupInput struct {
	Name      string `json:"name" binding:"required"`
	Color     string `json:"color"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// Create inserts a new group at the end of the board.
func (s *GroupService) Create(actor *models.User, in CreateGroupInput) (*models.TaskGroup, error) {
	if err := s.requireAdminOrMod(actor); err != nil {
		return nil, err
	}

	var maxOrder int
	s.db.Model(&models.TaskGroup{}).Select("COALESCE(MAX(sort_order), -1)").Scan(&maxOrder)

	group := models.TaskGroup{
		ID:         uuid.NewString(),
		Name:       in.Name,
		Color:      in.Color,
		StartDate:  in.StartDate,
		EndDate:    in.EndDate,
		IsExpanded: true,
		SortOrder:  maxOrder + 1,
		CreatedBy:  actor.ID,
	}
	if err := s.db.Create(&group).Error; err != nil {
		return nil, &StoreError{Op: "create group", Err: err}
	}

	s.rec.Record(audit.Entry{
		UserID:     actor.ID,
		Username:   actor.Username,
		Action:     models.ActionCreate,
		EntityType: models.EntityGroup,
		EntityID:   group.ID,
		EntityName: group.Name,
		NewValues:  group.Snapshot(),
	})
	return &group, nil
}

// UpdateGroupInput carries an edit; nil pointers are untouched fields.
type UpdateGroupInput struct {
	Name       *string `json:"name"`
	Color      *string `json:"color"`
	StartDate  *string `json:"start_date"`
	EndDate    *string `json:"end_date"`
	IsExpanded *bool   `json:"is_expanded"`
}

// Update applies a group edit and audits pre-image against delta.
func (s *GroupService) Update(actor *models.User, groupID string, in UpdateGroupInput) (*models.TaskGroup, error) {
	if err := s.requireAdminOrMod(actor); err != nil {
		return nil, err
	}

	var group models.TaskGroup
	if err := s.db.Where("id = ?", groupID).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: models.EntityGroup, ID: groupID}
		}
		return nil, &StoreError{Op: "fetch group", Err: err}
	}

	preImage := group.Snapshot()
	delta := map[string]any{}
	if in.Name != nil {
		group.Name = *in.Name
		delta["name"] = *in.Name
	}
	if in.Color != nil {
		group.Color = *in.Color
		delta["color"] = *in.Color
	}
	if in.StartDate != nil {
		group.StartDate = *in.StartDate
		delta["start_date"] = *in.StartDate
	}
	if in.EndDate != nil {
		group.EndDate = *in.EndDate
		delta["end_date"] = *in.EndDate
	}
	if in.IsExpanded != nil {
		group.IsExpanded = *in.IsExpanded
		delta["is_expanded"] = *in.IsExpanded
	}
	if len(delta) == 0 {
		return &group, nil
	}

	if err := s.db.Save(&group).Error; err != nil {
		return nil, &StoreError{Op: "update group", Err: err}
	}

	s.rec.Record(audit.Entry{
		UserID:     actor.ID,
		Username:   actor.Username,
		Action:     models.ActionUpdate,
		EntityType: models.EntityGroup,
		EntityID:   group.ID,
		EntityName: group.Name,
		OldValues:  preImage,
		NewValues:  delta,
	})
	return &group, nil
}

// Delete removes a group; the store cascades the delete to its tasks.
// A failed pre-image fetch skips the audit entry but not the delete.
func (s *GroupService) Delete(actor *models.User, groupID string) error {
	if err := s.requireAdminOrMod(actor); err != nil {
		return err
	}

	var group models.TaskGroup
	preErr := s.db.Where("id = ?", groupID).First(&group).Error

	if err := s.db.Where("id = ?", groupID).Delete(&models.TaskGroup{}).Error; err != nil {
		return &StoreError{Op: "delete group", Err: err}
	}

	if preErr == nil {
		s.rec.Record(audit.Entry{
			UserID:     actor.ID,
			Username:   actor.Username,
			Action:     models.ActionDelete,
			EntityType: models.EntityGroup,
			EntityID:   groupID,
			EntityName: group.Name,
			OldValues:  group.Snapshot(),
		})
	}
	return nil
}

// Reorder assigns sort_order by position in ids. Each row update is an
// independent write; a failure partway leaves earlier rows reordered.
// One audit entry covers the whole operation, with no entity id.
func (s *GroupService) Reorder(actor *models.User, ids []string) error {
	if err := s.requireAdminOrMod(actor); err != nil {
		return err
	}
	if len(ids) == 0 {
		return &ValidationError{Field: "order", Reason: "empty id list"}
	}

	for i, id := range ids {
		err := s.db.Model(&models.TaskGroup{}).
			Where("id = ?", id).
			Update("sort_order", i).Error
		if err != nil {
			return &StoreError{Op: "reorder groups", Err: err}
		}
	}

	s.rec.Record(audit.Entry{
		UserID:     actor.ID,
		Username:   actor.Username,
		Action:     models.ActionUpdate,
		EntityType: models.EntityGroup,
		NewValues:  map[string]any{"order": ids},
	})
	return nil
}

// List returns groups in board order.
func (s *GroupService) List() ([]models.TaskGroup, error) {
	var groups []models.TaskGroup
	if err := s.db.Order("sort_order asc").Find(&groups).Error; err != nil {
		return nil, &StoreError{Op: "list groups", Err: err}
	}
	return groups, nil
}
