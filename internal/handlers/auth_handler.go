package handlers

import (
	"net/http"

	"scrumboard-api/internal/auth"
	"scrumboard-api/internal/config"
	"scrumboard-api/internal/database"
	"scrumboard-api/internal/middleware"
	"scrumboard-api/internal/models"
	"scrumboard-api/internal/pipeline"

	"github.com/gin-gonic/gin"
)

var authCfg config.AuthConfig

// Init wires process configuration into the handlers package.
func Init(cfg *config.Config) {
	authCfg = cfg.Auth
}

func userService() *pipeline.UserService {
	return pipeline.NewUserService(database.GetDB(), authCfg.AdminInviteCode, authCfg.MinPasswordLen)
}

// RegisterRequest represents the registration payload. The invite code
// is optional; a match with the configured admin code skips approval.
type RegisterRequest struct {
	Username   string `json:"username" binding:"required"`
	Password   string `json:"password" binding:"required"`
	InviteCode string `json:"invite_code"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Token   string       `json:"token"`
	User    *models.User `json:"user"`
	Message string       `json:"message"`
}

// Register handles POST /api/register
func Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request. Username and password are required.",
		})
		return
	}

	user, err := userService().Register(req.Username, req.Password, req.InviteCode)
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Registration received. An administrator will review your account."
	if user.Status == models.StatusActive {
		message = "Registration successful. You can log in now."
	}
	c.JSON(http.StatusCreated, gin.H{
		"user":    user,
		"message": message,
	})
}

// Login handles POST /api/login
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request. Username and password are required.",
		})
		return
	}

	user, err := userService().Login(req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := auth.GenerateToken(user.ID, user.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate token",
		})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:   token,
		User:    user,
		Message: "Login successful",
	})
}

// Logout handles POST /api/logout. Tokens are stateless; this only
// records the logout in the audit trail.
func Logout(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}
	userService().Logout(actor)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}
