package pipeline

import (
	"encoding/json"
	"testing"

	"scrumboard-api/internal/models"
	"scrumboard-api/internal/testutil"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testInviteCode = "let-me-in"

func newUserFixture(t *testing.T) (*gorm.DB, *UserService) {
	t.Helper()
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	return db, NewUserService(db, testInviteCode, 8)
}

func TestRegister_InviteCodeGrantsActiveAdmin(t *testing.T) {
	db, svc := newUserFixture(t)

	u, err := svc.Register("alice", "password123", testInviteCode)
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, u.Role)
	require.Equal(t, models.StatusActive, u.Status)

	entries := auditEntries(t, db, models.ActionCreate, u.ID)
	require.Len(t, entries, 1)
	require.NotContains(t, string(entries[0].NewValues), u.Password, "hash never reaches the audit log")
}

func TestRegister_WithoutCodeIsPendingMember(t *testing.T) {
	_, svc := newUserFixture(t)

	for _, code := range []string{"", "wrong-code"} {
		u, err := svc.Register("user-"+code, "password123", code)
		require.NoError(t, err)
		require.Equal(t, models.RoleMember, u.Role)
		require.Equal(t, models.StatusPending, u.Status)
	}
}

func TestRegister_Validation(t *testing.T) {
	_, svc := newUserFixture(t)

	var ve *ValidationError
	_, err := svc.Register("", "password123", "")
	require.ErrorAs(t, err, &ve)

	_, err = svc.Register("bob", "short", "")
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "password", ve.Field)

	_, err = svc.Register("bob", "password123", "")
	require.NoError(t, err)
	_, err = svc.Register("bob", "password123", "")
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "username", ve.Field)
}

func TestLogin(t *testing.T) {
	db, svc := newUserFixture(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	require.NoError(t, err)
	active := models.User{ID: "u-1", Username: "alice", Password: string(hash), Role: models.RoleMember, Status: models.StatusActive}
	require.NoError(t, db.Create(&active).Error)
	pending := models.User{ID: "u-2", Username: "bob", Password: string(hash), Role: models.RoleMember, Status: models.StatusPending}
	require.NoError(t, db.Create(&pending).Error)

	u, err := svc.Login("alice", "password123")
	require.NoError(t, err)
	require.Equal(t, "alice", u.Username)
	require.Len(t, auditEntries(t, db, models.ActionLogin, "u-1"), 1)

	_, err = svc.Login("alice", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login("nobody", "password123")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login("bob", "password123")
	var pd *PermissionDeniedError
	require.ErrorAs(t, err, &pd, "pending account cannot log in")
}

func TestApprove_SetsRoleAndStatusTogether(t *testing.T) {
	db, svc := newUserFixture(t)
	admin := seedUser(t, db, "root", models.RoleAdmin, models.StatusActive)
	pending := seedUser(t, db, "bob", models.RoleMember, models.StatusPending)

	u, err := svc.Approve(admin, pending.ID, models.RoleMod)
	require.NoError(t, err)
	require.Equal(t, models.RoleMod, u.Role)
	require.Equal(t, models.StatusActive, u.Status)

	entries := auditEntries(t, db, models.ActionApprove, pending.ID)
	require.Len(t, entries, 1)

	var oldValues map[string]any
	require.NoError(t, json.Unmarshal(entries[0].OldValues, &oldValues))
	require.Equal(t, map[string]any{"role": "member", "status": "pending"}, oldValues)
}

func TestApprove_RequiresAdmin(t *testing.T) {
	db, svc := newUserFixture(t)
	mod := seedUser(t, db, "mike", models.RoleMod, models.StatusActive)
	pending := seedUser(t, db, "bob", models.RoleMember, models.StatusPending)

	_, err := svc.Approve(mod, pending.ID, models.RoleMember)
	var pd *PermissionDeniedError
	require.ErrorAs(t, err, &pd, "mod cannot manage users")
}

func TestApprove_InactiveAdminHasNoCapability(t *testing.T) {
	db, svc := newUserFixture(t)
	lockedAdmin := seedUser(t, db, "root", models.RoleAdmin, models.StatusLocked)
	pending := seedUser(t, db, "bob", models.RoleMember, models.StatusPending)

	_, err := svc.Approve(lockedAdmin, pending.ID, models.RoleMember)
	var pd *PermissionDeniedError
	require.ErrorAs(t, err, &pd)
	require.Equal(t, "account not active", pd.Reason)
}

func TestReject_HardDeletes(t *testing.T) {
	db, svc := newUserFixture(t)
	admin := seedUser(t, db, "root", models.RoleAdmin, models.StatusActive)
	pending := seedUser(t, db, "bob", models.RoleMember, models.StatusPending)

	require.NoError(t, svc.Reject(admin, pending.ID))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", pending.ID).Count(&count).Error)
	require.Zero(t, count)

	entries := auditEntries(t, db, models.ActionReject, pending.ID)
	require.Len(t, entries, 1)
	require.Equal(t, "bob", entries[0].EntityName, "username survives via denormalized snapshot")
	require.Nil(t, entries[0].NewValues)
}

func TestSetStatus_ModMayToggleLock(t *testing.T) {
	db, svc := newUserFixture(t)
	mod := seedUser(t, db, "mike", models.RoleMod, models.StatusActive)
	member := seedUser(t, db, "bob", models.RoleMember, models.StatusActive)

	u, err := svc.SetStatus(mod, member.ID, models.StatusLocked)
	require.NoError(t, err)
	require.Equal(t, models.StatusLocked, u.Status)

	u, err = svc.SetStatus(mod, member.ID, models.StatusActive)
	require.NoError(t, err)
	require.Equal(t, models.StatusActive, u.Status)

	_, err = svc.SetStatus(mod, member.ID, models.StatusPending)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestUpdateUser_RestrictedAuditSnapshot(t *testing.T) {
	db, svc := newUserFixture(t)
	admin := seedUser(t, db, "root", models.RoleAdmin, models.StatusActive)
	member := seedUser(t, db, "bob", models.RoleMember, models.StatusActive)

	role := models.RoleMod
	_, err := svc.Update(admin, member.ID, UpdateUserInput{Role: &role})
	require.NoError(t, err)

	entries := auditEntries(t, db, models.ActionUpdate, member.ID)
	require.Len(t, entries, 1)

	var oldValues map[string]any
	require.NoError(t, json.Unmarshal(entries[0].OldValues, &oldValues))
	require.Len(t, oldValues, 2, "old snapshot restricted to role and status")
	require.Equal(t, "member", oldValues["role"])
}

func TestDeleteUser_AdminOnly(t *testing.T) {
	db, svc := newUserFixture(t)
	admin := seedUser(t, db, "root", models.RoleAdmin, models.StatusActive)
	mod := seedUser(t, db, "mike", models.RoleMod, models.StatusActive)
	member := seedUser(t, db, "bob", models.RoleMember, models.StatusActive)

	err := svc.Delete(mod, member.ID)
	var pd *PermissionDeniedError
	require.ErrorAs(t, err, &pd)

	require.NoError(t, svc.Delete(admin, member.ID))
	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", member.ID).Count(&count).Error)
	require.Zero(t, count)
}

func TestListPending(t *testing.T) {
	db, svc := newUserFixture(t)
	admin := seedUser(t, db, "root", models.RoleAdmin, models.StatusActive)
	seedUser(t, db, "bob", models.RoleMember, models.StatusPending)
	seedUser(t, db, "carol", models.RoleMember, models.StatusActive)

	users, err := svc.ListPending(admin)
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, "bob", users[0].Username)
}
