package handlers

import (
	"net/http"

	"scrumboard-api/internal/middleware"
	"scrumboard-api/internal/models"
	"scrumboard-api/internal/pipeline"

	"github.com/gin-gonic/gin"
)

// UserResponse is the safe user payload exposed to the board UI.
type UserResponse struct {
	ID       string        `json:"id"`
	Username string        `json:"username"`
	Role     models.Role   `json:"role"`
	Status   models.Status `json:"status"`
}

// ApproveUserRequest picks the role granted at approval time.
type ApproveUserRequest struct {
	Role models.Role `json:"role" binding:"required"`
}

// SetUserStatusRequest toggles an account between active and locked.
type SetUserStatusRequest struct {
	Status models.Status `json:"status" binding:"required"`
}

func toUserResponses(users []models.User) []UserResponse {
	resp := make([]UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, UserResponse{
			ID:       u.ID,
			Username: u.Username,
			Role:     u.Role,
			Status:   u.Status,
		})
	}
	return resp
}

// GetAllUsers handles GET /api/users
func GetAllUsers(c *gin.Context) {
	users, err := userService().List()
	if err != nil {
		respondError(c, err)
		return
	}

	resp := toUserResponses(users)
	c.JSON(http.StatusOK, gin.H{
		"users": resp,
		"count": len(resp),
	})
}

// GetUserByID handles GET /api/users/:id
func GetUserByID(c *gin.Context) {
	user, err := userService().GetByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
		Status:   user.Status,
	})
}

// GetPendingUsers handles GET /api/users/pending (admin)
func GetPendingUsers(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	users, err := userService().ListPending(actor)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := toUserResponses(users)
	c.JSON(http.StatusOK, gin.H{
		"users": resp,
		"count": len(resp),
	})
}

// ApproveUser handles POST /api/users/:id/approve (admin)
func ApproveUser(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	var req ApproveUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.Param("id")
	user, err := userService().Approve(actor, userID, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	middleware.InvalidateUser(userID)

	broadcastEvent("user_approved", gin.H{"userId": user.ID})
	c.JSON(http.StatusOK, user)
}

// RejectUser handles POST /api/users/:id/reject (admin)
func RejectUser(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	userID := c.Param("id")
	if err := userService().Reject(actor, userID); err != nil {
		respondError(c, err)
		return
	}
	middleware.InvalidateUser(userID)

	c.JSON(http.StatusOK, gin.H{"message": "Registration rejected", "id": userID})
}

// UpdateUser handles PATCH /api/users/:id (admin, role/status)
func UpdateUser(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	var req pipeline.UpdateUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.Param("id")
	user, err := userService().Update(actor, userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	middleware.InvalidateUser(userID)

	c.JSON(http.StatusOK, user)
}

// SetUserStatus handles PATCH /api/users/:id/status (admin or mod)
func SetUserStatus(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	var req SetUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.Param("id")
	user, err := userService().SetStatus(actor, userID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	middleware.InvalidateUser(userID)

	c.JSON(http.StatusOK, user)
}

// DeleteUser handles DELETE /api/users/:id (admin)
func DeleteUser(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	userID := c.Param("id")
	if err := userService().Delete(actor, userID); err != nil {
		respondError(c, err)
		return
	}
	middleware.InvalidateUser(userID)

	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully", "id": userID})
}
