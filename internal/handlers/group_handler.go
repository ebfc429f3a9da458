package handlers

import (
	"net/http"

	"scrumboard-api/internal/database"
	"scrumboard-api/internal/middleware"
	"scrumboard-api/internal/pipeline"

	"github.com/gin-gonic/gin"
)

func groupService() *pipeline.GroupService {
	return pipeline.NewGroupService(database.GetDB())
}

// ReorderGroupsRequest carries the new board order, first to last.
type ReorderGroupsRequest struct {
	Order []string `json:"order" binding:"required"`
}

// GetGroups handles GET /api/groups
func GetGroups(c *gin.Context) {
	groups, err := groupService().List()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"groups": groups,
		"count":  len(groups),
	})
}

// CreateGroup handles POST /api/groups
func CreateGroup(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	var req pipeline.CreateGroupInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group, err := groupService().Create(actor, req)
	if err != nil {
		respondError(c, err)
		return
	}

	broadcastEvent("group_created", gin.H{"groupId": group.ID})
	c.JSON(http.StatusCreated, group)
}

// UpdateGroup handles PUT /api/groups/:id
func UpdateGroup(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	var req pipeline.UpdateGroupInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group, err := groupService().Update(actor, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	broadcastEvent("group_updated", gin.H{"groupId": group.ID})
	c.JSON(http.StatusOK, group)
}

// DeleteGroup handles DELETE /api/groups/:id
// The store cascades the delete to the group's tasks.
func DeleteGroup(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	groupID := c.Param("id")
	if err := groupService().Delete(actor, groupID); err != nil {
		respondError(c, err)
		return
	}

	broadcastEvent("group_deleted", gin.H{"groupId": groupID})
	c.JSON(http.StatusOK, gin.H{
		"message": "Group deleted successfully",
		"id":      groupID,
	})
}

// ReorderGroups handles PUT /api/groups/reorder
func ReorderGroups(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	var req ReorderGroupsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := groupService().Reorder(actor, req.Order); err != nil {
		respondError(c, err)
		return
	}

	broadcastEvent("groups_reordered", gin.H{"order": req.Order})
	c.JSON(http.StatusOK, gin.H{"message": "Groups reordered"})
}
