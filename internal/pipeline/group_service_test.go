package pipeline

import (
	"encoding/json"
	"testing"

	"scrumboard-api/internal/models"
	"scrumboard-api/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newGroupFixture(t *testing.T) (*gorm.DB, *GroupService) {
	t.Helper()
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	return db, NewGroupService(db)
}

func TestCreateGroup_AdminOrModOnly(t *testing.T) {
	db, svc := newGroupFixture(t)
	member := seedUser(t, db, "bob", models.RoleMember, models.StatusActive)
	mod := seedUser(t, db, "mike", models.RoleMod, models.StatusActive)

	_, err := svc.Create(member, CreateGroupInput{Name: "Sprint 1"})
	var pd *PermissionDeniedError
	require.ErrorAs(t, err, &pd)

	g, err := svc.Create(mod, CreateGroupInput{Name: "Sprint 1", Color: "#ff0000"})
	require.NoError(t, err)
	require.True(t, g.IsExpanded)
	require.Equal(t, 0, g.SortOrder)

	g2, err := svc.Create(mod, CreateGroupInput{Name: "Sprint 2"})
	require.NoError(t, err)
	require.Equal(t, 1, g2.SortOrder, "appended at end of board")
}

func TestDeleteGroup_CascadesToTasks(t *testing.T) {
	db, svc := newGroupFixture(t)
	admin := seedUser(t, db, "root", models.RoleAdmin, models.StatusActive)
	g := seedGroup(t, db, "Sprint 1")
	seedTask(t, db, g.ID, "a", "", nil)
	seedTask(t, db, g.ID, "b", "", nil)

	require.NoError(t, svc.Delete(admin, g.ID))

	var tasks []models.Task
	require.NoError(t, db.Where("group_id = ?", g.ID).Find(&tasks).Error)
	require.Empty(t, tasks, "group deletion cascades to member tasks")
}

func TestReorder_AssignsIndexOrder(t *testing.T) {
	db, svc := newGroupFixture(t)
	admin := seedUser(t, db, "root", models.RoleAdmin, models.StatusActive)
	g1 := seedGroup(t, db, "Sprint 1")
	g2 := seedGroup(t, db, "Sprint 2")
	g3 := seedGroup(t, db, "Sprint 3")

	require.NoError(t, svc.Reorder(admin, []string{g3.ID, g1.ID, g2.ID}))

	groups, err := svc.List()
	require.NoError(t, err)
	require.Equal(t, []string{g3.ID, g1.ID, g2.ID}, []string{groups[0].ID, groups[1].ID, groups[2].ID})

	// single audit entry with no entity id and the full id list
	var entries []models.AuditLog
	require.NoError(t, db.Where("action = ? AND entity_type = ?", models.ActionUpdate, models.EntityGroup).Find(&entries).Error)
	require.Len(t, entries, 1)
	require.Empty(t, entries[0].EntityID)

	var newValues map[string][]string
	require.NoError(t, json.Unmarshal(entries[0].NewValues, &newValues))
	require.Equal(t, []string{g3.ID, g1.ID, g2.ID}, newValues["order"])
}

func TestReorder_MemberDenied(t *testing.T) {
	db, svc := newGroupFixture(t)
	member := seedUser(t, db, "bob", models.RoleMember, models.StatusActive)
	g := seedGroup(t, db, "Sprint 1")

	err := svc.Reorder(member, []string{g.ID})
	var pd *PermissionDeniedError
	require.ErrorAs(t, err, &pd)
}

func TestUpdateGroup_AuditDelta(t *testing.T) {
	db, svc := newGroupFixture(t)
	admin := seedUser(t, db, "root", models.RoleAdmin, models.StatusActive)
	g := seedGroup(t, db, "Sprint 1")

	name := "Sprint 1 (extended)"
	collapsed := false
	updated, err := svc.Update(admin, g.ID, UpdateGroupInput{Name: &name, IsExpanded: &collapsed})
	require.NoError(t, err)
	require.Equal(t, name, updated.Name)
	require.False(t, updated.IsExpanded)

	var entries []models.AuditLog
	require.NoError(t, db.Where("action = ? AND entity_id = ?", models.ActionUpdate, g.ID).Find(&entries).Error)
	require.Len(t, entries, 1)

	var delta map[string]any
	require.NoError(t, json.Unmarshal(entries[0].NewValues, &delta))
	require.Len(t, delta, 2)
	require.Equal(t, name, delta["name"])
	require.Equal(t, false, delta["is_expanded"])
}

func TestDeleteGroup_MissingPreImageSkipsAudit(t *testing.T) {
	db, svc := newGroupFixture(t)
	admin := seedUser(t, db, "root", models.RoleAdmin, models.StatusActive)

	require.NoError(t, svc.Delete(admin, "already-gone"))

	var entries []models.AuditLog
	require.NoError(t, db.Where("action = ?", models.ActionDelete).Find(&entries).Error)
	require.Empty(t, entries)
}
