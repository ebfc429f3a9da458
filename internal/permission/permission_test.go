package permission

import (
	"testing"

	"scrumboard-api/internal/models"

	"github.com/stretchr/testify/require"
)

func user(name string, role models.Role, status models.Status) *models.User {
	return &models.User{ID: "u-" + name, Username: name, Role: role, Status: status}
}

func taskWithLocks(locks map[string]bool) *models.Task {
	return &models.Task{
		ID:           "t-1",
		Title:        "Build login page",
		Reviewer:     "alice",
		LockedFields: models.NewLockMap(locks),
	}
}

func TestPredicates(t *testing.T) {
	admin := user("root", models.RoleAdmin, models.StatusActive)
	mod := user("mike", models.RoleMod, models.StatusActive)
	member := user("bob", models.RoleMember, models.StatusActive)

	require.True(t, IsAdmin(admin))
	require.False(t, IsAdmin(mod))
	require.True(t, IsMod(mod))
	require.True(t, IsAdminOrMod(admin))
	require.True(t, IsAdminOrMod(mod))
	require.False(t, IsAdminOrMod(member))
	require.True(t, IsActive(member))
	require.False(t, IsActive(user("p", models.RoleMember, models.StatusPending)))
	require.False(t, IsAdmin(nil))
	require.False(t, IsActive(nil))
}

func TestCanWrite_InactiveDeniedEverything(t *testing.T) {
	task := taskWithLocks(nil)
	for _, actor := range []*models.User{
		user("padmin", models.RoleAdmin, models.StatusPending),
		user("ladmin", models.RoleAdmin, models.StatusLocked),
		user("pmem", models.RoleMember, models.StatusPending),
	} {
		d := CanWrite(actor, task, models.FieldNotes)
		require.False(t, d.Allowed)
		require.Equal(t, "account not active", d.Reason)
	}
}

func TestCanWrite_LockedFieldDeniesMemberOnly(t *testing.T) {
	task := taskWithLocks(map[string]bool{models.FieldNotes: true, models.FieldAssign: true})

	member := user("bob", models.RoleMember, models.StatusActive)
	for _, f := range []string{models.FieldNotes, models.FieldAssign} {
		d := CanWrite(member, task, f)
		require.False(t, d.Allowed)
		require.Equal(t, "field locked", d.Reason)
	}
	require.True(t, CanWrite(member, task, models.FieldUserStory).Allowed)

	// admin and mod bypass locks
	require.True(t, CanWrite(user("root", models.RoleAdmin, models.StatusActive), task, models.FieldNotes).Allowed)
	require.True(t, CanWrite(user("mike", models.RoleMod, models.StatusActive), task, models.FieldAssign).Allowed)
}

func TestCanWrite_ReviewIsReviewerOnly(t *testing.T) {
	task := taskWithLocks(nil) // reviewer is alice

	admin := user("root", models.RoleAdmin, models.StatusActive)
	require.False(t, CanWrite(admin, task, models.FieldReview).Allowed, "admin who is not reviewer cannot edit review")

	bob := user("bob", models.RoleMember, models.StatusActive)
	require.False(t, CanWrite(bob, task, models.FieldReview).Allowed)

	alice := user("Alice", models.RoleMember, models.StatusActive) // case-insensitive match
	require.True(t, CanWrite(alice, task, models.FieldReview).Allowed)
}

func TestCanWrite_ReviewIgnoresLockState(t *testing.T) {
	task := taskWithLocks(map[string]bool{models.FieldReview: true})
	alice := user("alice", models.RoleMember, models.StatusActive)
	require.True(t, CanWrite(alice, task, models.FieldReview).Allowed)
}

func TestCanWrite_OwnerIsDisplayOnly(t *testing.T) {
	task := taskWithLocks(nil)
	for _, actor := range []*models.User{
		user("root", models.RoleAdmin, models.StatusActive),
		user("mike", models.RoleMod, models.StatusActive),
		user("bob", models.RoleMember, models.StatusActive),
	} {
		require.False(t, CanWrite(actor, task, models.FieldOwner).Allowed)
	}
}

func TestCanSetStatus_DoneIsReviewerGated(t *testing.T) {
	task := taskWithLocks(nil) // reviewer is alice

	bob := user("bob", models.RoleMember, models.StatusActive)
	require.False(t, CanSetStatus(bob, task, models.StatusDone).Allowed)
	require.True(t, CanSetStatus(bob, task, models.StatusWorkingOnIt).Allowed)

	admin := user("root", models.RoleAdmin, models.StatusActive)
	require.False(t, CanSetStatus(admin, task, models.StatusDone).Allowed, "Done is reviewer-gated even for admin")

	alice := user("ALICE", models.RoleMember, models.StatusActive)
	require.True(t, CanSetStatus(alice, task, models.StatusDone).Allowed)
}

func TestCanSetStatus_LockStillApplies(t *testing.T) {
	task := taskWithLocks(map[string]bool{models.FieldStatus: true})
	task.Reviewer = "alice"

	alice := user("alice", models.RoleMember, models.StatusActive)
	d := CanSetStatus(alice, task, models.StatusDone)
	require.False(t, d.Allowed)
	require.Equal(t, "field locked", d.Reason)
}

func TestIsLockable(t *testing.T) {
	require.True(t, IsLockable(models.FieldNotes))
	require.True(t, IsLockable(models.FieldReview))
	require.False(t, IsLockable("create_date"))
	require.False(t, IsLockable("nonsense"))
}

func TestIsReviewer_EmptyReviewerNeverMatches(t *testing.T) {
	task := taskWithLocks(nil)
	task.Reviewer = ""
	require.False(t, IsReviewer(user("", models.RoleMember, models.StatusActive), task))
}
