package pipeline

import (
	"errors"
	"fmt"
	"time"

	"scrumboard-api/internal/audit"
	"scrumboard-api/internal/models"
	"scrumboard-api/internal/permission"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskService is the mutation pipeline for tasks: every write fetches
// the current row, runs the permission evaluator per touched field,
// applies all-or-nothing, then appends one audit entry.
type TaskService struct {
	db  *gorm.DB
	rec *audit.Recorder
}

func NewTaskService(db *gorm.DB) *TaskService {
	return &TaskService{db: db, rec: audit.NewRecorder(db)}
}

// CreateTaskInput carries the writable fields for task creation.
// Owner and create_date are system-assigned and not accepted here.
type CreateTaskInput struct {
	GroupID            string            `json:"group_id" binding:"required"`
	Title              string            `json:"task"`
	Assign             string            `json:"assign"`
	UserStory          string            `json:"user_story"`
	AcceptanceCriteria string            `json:"acceptance_criteria"`
	Notes              string            `json:"notes"`
	Reviewer           string            `json:"reviewer"`
	Status             models.TaskStatus `json:"status"`
	EstimateDate       string            `json:"estimate_date"`
	SortOrder          int               `json:"sort_order"`
}

// Create inserts a new task. The owner is the creating user; the
// create date is set once and never mutated afterwards.
func (s *TaskService) Create(actor *models.User, in CreateTaskInput) (*models.Task, error) {
	if !permission.IsActive(actor) {
		return nil, &PermissionDeniedError{Reason: "account not active"}
	}

	var group models.TaskGroup
	if err := s.db.Where("id = ?", in.GroupID).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: models.EntityGroup, ID: in.GroupID}
		}
		return nil, &StoreError{Op: "fetch group", Err: err}
	}

	status := in.Status
	if status == "" {
		status = models.StatusNotStarted
	}
	if !models.ValidTaskStatus(status) {
		return nil, &ValidationError{Field: "status", Reason: "unknown status"}
	}

	task := models.Task{
		ID:                 uuid.NewString(),
		GroupID:            in.GroupID,
		Title:              in.Title,
		Owner:              actor.Username,
		Assign:             in.Assign,
		UserStory:          in.UserStory,
		AcceptanceCriteria: in.AcceptanceCriteria,
		Notes:              in.Notes,
		Reviewer:           in.Reviewer,
		Status:             models.StatusNotStarted,
		CreateDate:         time.Now().Format("2006-01-02"),
		EstimateDate:       in.EstimateDate,
		SortOrder:          in.SortOrder,
		LockedFields:       models.NewLockMap(map[string]bool{}),
		CreatedBy:          actor.ID,
	}

	// A caller-supplied status passes the same gate as a status change,
	// so a task cannot start life in Done without the reviewer doing it.
	if status != task.Status {
		if d := permission.CanSetStatus(actor, &task, status); !d.Allowed {
			return nil, &PermissionDeniedError{Fields: []string{models.FieldStatus}, Reason: d.Reason}
		}
		task.Status = status
	}

	if err := s.db.Create(&task).Error; err != nil {
		return nil, &StoreError{Op: "create task", Err: err}
	}

	s.rec.Record(audit.Entry{
		UserID:     actor.ID,
		Username:   actor.Username,
		Action:     models.ActionCreate,
		EntityType: models.EntityTask,
		EntityID:   task.ID,
		EntityName: task.Title,
		NewValues:  task.Snapshot(),
	})
	return &task, nil
}

// UpdateTaskInput carries an edit; nil pointers are untouched fields.
// Owner is accepted only so attempts to change it get a proper denial.
type UpdateTaskInput struct {
	Title              *string            `json:"task"`
	Owner              *string            `json:"owner"`
	Assign             *string            `json:"assign"`
	UserStory          *string            `json:"user_story"`
	AcceptanceCriteria *string            `json:"acceptance_criteria"`
	Notes              *string            `json:"notes"`
	Reviewer           *string            `json:"reviewer"`
	Review             *string            `json:"review"`
	Status             *models.TaskStatus `json:"status"`
	EstimateDate       *string            `json:"estimate_date"`
	GroupID            *string            `json:"group_id"`
	SortOrder          *int               `json:"sort_order"`
}

type touchedField struct {
	name  string
	value any
	apply func(*models.Task)
}

func (in *UpdateTaskInput) touched() []touchedField {
	var fields []touchedField
	add := func(name string, value any, apply func(*models.Task)) {
		fields = append(fields, touchedField{name: name, value: value, apply: apply})
	}
	if in.Title != nil {
		add(models.FieldTask, *in.Title, func(t *models.Task) { t.Title = *in.Title })
	}
	if in.Owner != nil {
		add(models.FieldOwner, *in.Owner, func(t *models.Task) { t.Owner = *in.Owner })
	}
	if in.Assign != nil {
		add(models.FieldAssign, *in.Assign, func(t *models.Task) { t.Assign = *in.Assign })
	}
	if in.UserStory != nil {
		add(models.FieldUserStory, *in.UserStory, func(t *models.Task) { t.UserStory = *in.UserStory })
	}
	if in.AcceptanceCriteria != nil {
		add(models.FieldAcceptanceCriteria, *in.AcceptanceCriteria, func(t *models.Task) { t.AcceptanceCriteria = *in.AcceptanceCriteria })
	}
	if in.Notes != nil {
		add(models.FieldNotes, *in.Notes, func(t *models.Task) { t.Notes = *in.Notes })
	}
	if in.Reviewer != nil {
		add(models.FieldReviewer, *in.Reviewer, func(t *models.Task) { t.Reviewer = *in.Reviewer })
	}
	if in.Review != nil {
		add(models.FieldReview, *in.Review, func(t *models.Task) { t.Review = *in.Review })
	}
	if in.Status != nil {
		add(models.FieldStatus, *in.Status, func(t *models.Task) { t.Status = *in.Status })
	}
	if in.EstimateDate != nil {
		add(models.FieldEstimateDate, *in.EstimateDate, func(t *models.Task) { t.EstimateDate = *in.EstimateDate })
	}
	if in.GroupID != nil {
		add("group_id", *in.GroupID, func(t *models.Task) { t.GroupID = *in.GroupID })
	}
	if in.SortOrder != nil {
		add("sort_order", *in.SortOrder, func(t *models.Task) { t.SortOrder = *in.SortOrder })
	}
	return fields
}

// Update applies a multi-field edit atomically: if any touched field is
// denied, nothing is written and the caller gets the full rejected
// list. The audit entry pairs the whole pre-image with the submitted
// delta, not the post-image.
func (s *TaskService) Update(actor *models.User, taskID string, in UpdateTaskInput) (*models.Task, error) {
	var task models.Task
	if err := s.db.Where("id = ?", taskID).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: models.EntityTask, ID: taskID}
		}
		return nil, &StoreError{Op: "fetch task", Err: err}
	}

	if in.Status != nil && !models.ValidTaskStatus(*in.Status) {
		return nil, &ValidationError{Field: "status", Reason: "unknown status"}
	}

	fields := in.touched()
	if len(fields) == 0 {
		return &task, nil
	}

	var denied []string
	var reason string
	for _, f := range fields {
		var d permission.Decision
		if f.name == models.FieldStatus {
			d = permission.CanSetStatus(actor, &task, *in.Status)
		} else {
			d = permission.CanWrite(actor, &task, f.name)
		}
		if !d.Allowed {
			denied = append(denied, f.name)
			if reason == "" {
				reason = d.Reason
			}
		}
	}
	if len(denied) > 0 {
		return nil, &PermissionDeniedError{Fields: denied, Reason: reason}
	}

	// Moving to another group is checked here so a bad id surfaces as a
	// not-found instead of a store-level FK failure.
	if in.GroupID != nil && *in.GroupID != task.GroupID {
		var group models.TaskGroup
		if err := s.db.Where("id = ?", *in.GroupID).First(&group).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &NotFoundError{Entity: models.EntityGroup, ID: *in.GroupID}
			}
			return nil, &StoreError{Op: "fetch group", Err: err}
		}
	}

	preImage := task.Snapshot()
	delta := make(map[string]any, len(fields))
	for _, f := range fields {
		f.apply(&task)
		delta[f.name] = f.value
	}
	if err := s.db.Save(&task).Error; err != nil {
		return nil, &StoreError{Op: "update task", Err: err}
	}

	s.rec.Record(audit.Entry{
		UserID:     actor.ID,
		Username:   actor.Username,
		Action:     models.ActionUpdate,
		EntityType: models.EntityTask,
		EntityID:   task.ID,
		EntityName: task.Title,
		OldValues:  preImage,
		NewValues:  delta,
	})
	return &task, nil
}

// SetStatus changes only the status field. The Done value is checked
// server-side here; the UI omitting the option is not enforcement.
func (s *TaskService) SetStatus(actor *models.User, taskID string, status models.TaskStatus) (*models.Task, error) {
	return s.Update(actor, taskID, UpdateTaskInput{Status: &status})
}

// Delete removes a task. If the pre-image fetch fails the delete still
// proceeds; only the audit entry is skipped.
func (s *TaskService) Delete(actor *models.User, taskID string) error {
	if !permission.IsActive(actor) {
		return &PermissionDeniedError{Reason: "account not active"}
	}
	if !permission.IsAdminOrMod(actor) {
		return &PermissionDeniedError{Reason: "admin or mod required"}
	}

	var task models.Task
	preErr := s.db.Where("id = ?", taskID).First(&task).Error

	if err := s.db.Where("id = ?", taskID).Delete(&models.Task{}).Error; err != nil {
		return &StoreError{Op: "delete task", Err: err}
	}

	if preErr == nil {
		s.rec.Record(audit.Entry{
			UserID:     actor.ID,
			Username:   actor.Username,
			Action:     models.ActionDelete,
			EntityType: models.EntityTask,
			EntityID:   taskID,
			EntityName: task.Title,
			OldValues:  task.Snapshot(),
		})
	}
	return nil
}

// setLock is the shared lock/unlock path. Locking an already-locked
// field is a no-op write that still audits the unchanged map.
func (s *TaskService) setLock(actor *models.User, taskID, field string, locked bool) (*models.Task, error) {
	if !permission.IsActive(actor) {
		return nil, &PermissionDeniedError{Fields: []string{field}, Reason: "account not active"}
	}
	if !permission.IsAdminOrMod(actor) {
		return nil, &PermissionDeniedError{Fields: []string{field}, Reason: "admin or mod required"}
	}
	if !permission.IsLockable(field) {
		return nil, &ValidationError{Field: field, Reason: "not a lockable field"}
	}

	var task models.Task
	if err := s.db.Where("id = ?", taskID).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: models.EntityTask, ID: taskID}
		}
		return nil, &StoreError{Op: "fetch task", Err: err}
	}

	oldLocks := task.Locks()
	newLocks := make(map[string]bool, len(oldLocks)+1)
	for k, v := range oldLocks {
		newLocks[k] = v
	}
	newLocks[field] = locked

	task.LockedFields = models.NewLockMap(newLocks)
	task.LockedBy = actor.ID
	if err := s.db.Save(&task).Error; err != nil {
		return nil, &StoreError{Op: "update task locks", Err: err}
	}

	action := models.ActionLock
	if !locked {
		action = models.ActionUnlock
	}
	s.rec.Record(audit.Entry{
		UserID:     actor.ID,
		Username:   actor.Username,
		Action:     action,
		EntityType: models.EntityTask,
		EntityID:   task.ID,
		EntityName: fmt.Sprintf("%s - %s", task.Title, field),
		OldValues:  map[string]any{"locked_fields": oldLocks},
		NewValues:  map[string]any{"locked_fields": newLocks},
	})
	return &task, nil
}

// LockField marks a field read-only for members.
func (s *TaskService) LockField(actor *models.User, taskID, field string) (*models.Task, error) {
	return s.setLock(actor, taskID, field, true)
}

// UnlockField releases a field lock.
func (s *TaskService) UnlockField(actor *models.User, taskID, field string) (*models.Task, error) {
	return s.setLock(actor, taskID, field, false)
}

// Get fetches a single task.
func (s *TaskService) Get(taskID string) (*models.Task, error) {
	var task models.Task
	if err := s.db.Where("id = ?", taskID).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: models.EntityTask, ID: taskID}
		}
		return nil, &StoreError{Op: "fetch task", Err: err}
	}
	return &task, nil
}

// ListTasksQuery filters and paginates the task list.
type ListTasksQuery struct {
	GroupID string
	Page    int
	Limit   int
}

// List returns tasks ordered by position within their group.
func (q *ListTasksQuery) normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 100
	}
	if q.Limit > 500 {
		q.Limit = 500
	}
}

func (s *TaskService) List(q ListTasksQuery) ([]models.Task, int64, error) {
	q.normalize()

	query := s.db.Model(&models.Task{})
	if q.GroupID != "" {
		query = query.Where("group_id = ?", q.GroupID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, &StoreError{Op: "count tasks", Err: err}
	}

	var tasks []models.Task
	err := query.Session(&gorm.Session{}).
		Order("sort_order asc").
		Limit(q.Limit).
		Offset((q.Page - 1) * q.Limit).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, &StoreError{Op: "list tasks", Err: err}
	}
	return tasks, total, nil
}
