package pipeline

import (
	"errors"
	"strings"

	"scrumboard-api/internal/audit"
	"scrumboard-api/internal/models"
	"scrumboard-api/internal/permission"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService handles registration, login and account administration.
type UserService struct {
	db              *gorm.DB
	rec             *audit.Recorder
	adminInviteCode string
	minPasswordLen  int
}

func NewUserService(db *gorm.DB, adminInviteCode string, minPasswordLen int) *UserService {
	return &UserService{
		db:              db,
		rec:             audit.NewRecorder(db),
		adminInviteCode: adminInviteCode,
		minPasswordLen:  minPasswordLen,
	}
}

// Register creates a user account. A matching admin invite code yields
// an active admin immediately; anything else yields a pending member
// awaiting approval.
func (s *UserService) Register(username, password, inviteCode string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, &ValidationError{Field: "username", Reason: "required"}
	}
	if len(password) < s.minPasswordLen {
		return nil, &ValidationError{Field: "password", Reason: "too short"}
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, &StoreError{Op: "check username", Err: err}
	}
	if count > 0 {
		return nil, &ValidationError{Field: "username", Reason: "already taken"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, &StoreError{Op: "hash password", Err: err}
	}

	user := models.User{
		ID:       uuid.NewString(),
		Username: username,
		Password: string(hash),
		Role:     models.RoleMember,
		Status:   models.StatusPending,
	}
	if s.adminInviteCode != "" && inviteCode == s.adminInviteCode {
		user.Role = models.RoleAdmin
		user.Status = models.StatusActive
	}

	if err := s.db.Create(&user).Error; err != nil {
		return nil, &StoreError{Op: "create user", Err: err}
	}

	s.rec.Record(audit.Entry{
		UserID:     user.ID,
		Username:   user.Username,
		Action:     models.ActionCreate,
		EntityType: models.EntityUser,
		EntityID:   user.ID,
		EntityName: user.Username,
		NewValues:  user.Snapshot(),
	})
	return &user, nil
}

// Login verifies credentials. Only active accounts may log in; the
// same vague error covers unknown users and bad passwords.
func (s *UserService) Login(username, password string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, &StoreError{Op: "fetch user", Err: err}
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if user.Status != models.StatusActive {
		return nil, &PermissionDeniedError{Reason: "account not active"}
	}

	s.rec.Record(audit.Entry{
		UserID:     user.ID,
		Username:   user.Username,
		Action:     models.ActionLogin,
		EntityType: models.EntityUser,
		EntityID:   user.ID,
		EntityName: user.Username,
	})
	return &user, nil
}

// Logout records the logout in the audit trail. JWTs are stateless, so
// there is nothing else to invalidate server-side.
func (s *UserService) Logout(actor *models.User) {
	s.rec.Record(audit.Entry{
		UserID:     actor.ID,
		Username:   actor.Username,
		Action:     models.ActionLogout,
		EntityType: models.EntityUser,
		EntityID:   actor.ID,
		EntityName: actor.Username,
	})
}

func (s *UserService) fetch(userID string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: models.EntityUser, ID: userID}
		}
		return nil, &StoreError{Op: "fetch user", Err: err}
	}
	return &user, nil
}

func requireAdmin(actor *models.User) error {
	if !permission.IsActive(actor) {
		return &PermissionDeniedError{Reason: "account not active"}
	}
	if !permission.IsAdmin(actor) {
		return &PermissionDeniedError{Reason: "admin required"}
	}
	return nil
}

// Approve activates a pending user with the chosen role, in one write.
func (s *UserService) Approve(actor *models.User, userID string, role models.Role) (*models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	switch role {
	case models.RoleAdmin, models.RoleMod, models.RoleMember:
	default:
		return nil, &ValidationError{Field: "role", Reason: "unknown role"}
	}

	user, err := s.fetch(userID)
	if err != nil {
		return nil, err
	}
	if user.Status != models.StatusPending {
		return nil, &ValidationError{Field: "status", Reason: "user is not pending"}
	}

	old := user.RoleStatusSnapshot()
	user.Role = role
	user.Status = models.StatusActive
	if err := s.db.Save(user).Error; err != nil {
		return nil, &StoreError{Op: "approve user", Err: err}
	}

	s.rec.Record(audit.Entry{
		UserID:     actor.ID,
		Username:   actor.Username,
		Action:     models.ActionApprove,
		EntityType: models.EntityUser,
		EntityID:   user.ID,
		EntityName: user.Username,
		OldValues:  old,
		NewValues:  user.RoleStatusSnapshot(),
	})
	return user, nil
}

// Reject hard-deletes a pending registration. There is no soft-delete.
func (s *UserService) Reject(actor *models.User, userID string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	user, err := s.fetch(userID)
	if err != nil {
		return err
	}
	if user.Status != models.StatusPending {
		return &ValidationError{Field: "status", Reason: "user is not pending"}
	}

	if err := s.db.Where("id = ?", userID).Delete(&models.User{}).Error; err != nil {
		return &StoreError{Op: "reject user", Err: err}
	}

	s.rec.Record(audit.Entry{
		UserID:     actor.ID,
		Username:   actor.Username,
		Action:     models.ActionReject,
		EntityType: models.EntityUser,
		EntityID:   userID,
		EntityName: user.Username,
		OldValues:  user.Snapshot(),
	})
	return nil
}

// UpdateUserInput carries role/status changes, both admin-gated.
type UpdateUserInput struct {
	Role   *models.Role   `json:"role"`
	Status *models.Status `json:"status"`
}

// Update changes role and/or status. The audit pre-image is restricted
// to role and status so nothing sensitive reaches the log.
func (s *UserService) Update(actor *models.User, userID string, in UpdateUserInput) (*models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	user, err := s.fetch(userID)
	if err != nil {
		return nil, err
	}

	old := user.RoleStatusSnapshot()
	delta := map[string]any{}
	if in.Role != nil {
		switch *in.Role {
		case models.RoleAdmin, models.RoleMod, models.RoleMember:
		default:
			return nil, &ValidationError{Field: "role", Reason: "unknown role"}
		}
		user.Role = *in.Role
		delta["role"] = *in.Role
	}
	if in.Status != nil {
		switch *in.Status {
		case models.StatusPending, models.StatusActive, models.StatusLocked:
		default:
			return nil, &ValidationError{Field: "status", Reason: "unknown status"}
		}
		user.Status = *in.Status
		delta["status"] = *in.Status
	}
	if len(delta) == 0 {
		return user, nil
	}

	if err := s.db.Save(user).Error; err != nil {
		return nil, &StoreError{Op: "update user", Err: err}
	}

	s.rec.Record(audit.Entry{
		UserID:     actor.ID,
		Username:   actor.Username,
		Action:     models.ActionUpdate,
		EntityType: models.EntityUser,
		EntityID:   user.ID,
		EntityName: user.Username,
		OldValues:  old,
		NewValues:  delta,
	})
	return user, nil
}

// SetStatus toggles an account between active and locked. Unlike other
// user administration this is open to mods as well.
func (s *UserService) SetStatus(actor *models.User, userID string, status models.Status) (*models.User, error) {
	if !permission.IsActive(actor) {
		return nil, &PermissionDeniedError{Reason: "account not active"}
	}
	if !permission.IsAdminOrMod(actor) {
		return nil, &PermissionDeniedError{Reason: "admin or mod required"}
	}
	if status != models.StatusActive && status != models.StatusLocked {
		return nil, &ValidationError{Field: "status", Reason: "must be active or locked"}
	}

	user, err := s.fetch(userID)
	if err != nil {
		return nil, err
	}
	if user.Status == models.StatusPending {
		return nil, &ValidationError{Field: "status", Reason: "user awaits approval"}
	}

	old := user.RoleStatusSnapshot()
	user.Status = status
	if err := s.db.Save(user).Error; err != nil {
		return nil, &StoreError{Op: "set user status", Err: err}
	}

	s.rec.Record(audit.Entry{
		UserID:     actor.ID,
		Username:   actor.Username,
		Action:     models.ActionUpdate,
		EntityType: models.EntityUser,
		EntityID:   user.ID,
		EntityName: user.Username,
		OldValues:  old,
		NewValues:  map[string]any{"status": status},
	})
	return user, nil
}

// Delete permanently removes a user in any state. Admin only.
func (s *UserService) Delete(actor *models.User, userID string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	var user models.User
	preErr := s.db.Where("id = ?", userID).First(&user).Error

	if err := s.db.Where("id = ?", userID).Delete(&models.User{}).Error; err != nil {
		return &StoreError{Op: "delete user", Err: err}
	}

	if preErr == nil {
		s.rec.Record(audit.Entry{
			UserID:     actor.ID,
			Username:   actor.Username,
			Action:     models.ActionDelete,
			EntityType: models.EntityUser,
			EntityID:   userID,
			EntityName: user.Username,
			OldValues:  user.Snapshot(),
		})
	}
	return nil
}

// GetByID fetches a single user.
func (s *UserService) GetByID(userID string) (*models.User, error) {
	return s.fetch(userID)
}

// List returns all users ordered by username.
func (s *UserService) List() ([]models.User, error) {
	var users []models.User
	if err := s.db.Order("username asc").Find(&users).Error; err != nil {
		return nil, &StoreError{Op: "list users", Err: err}
	}
	return users, nil
}

// ListPending returns registrations awaiting approval, oldest first.
func (s *UserService) ListPending(actor *models.User) ([]models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	var users []models.User
	err := s.db.Where("status = ?", models.StatusPending).
		Order("created_at asc").
		Find(&users).Error
	if err != nil {
		return nil, &StoreError{Op: "list pending users", Err: err}
	}
	return users, nil
}
