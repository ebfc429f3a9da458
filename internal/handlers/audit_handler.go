package handlers

import (
	"net/http"
	"strconv"
	"time"

	"scrumboard-api/internal/database"
	"scrumboard-api/internal/models"
	"scrumboard-api/internal/pipeline"

	"github.com/gin-gonic/gin"
)

// GetAuditLog handles GET /api/audit
// Query params: entity_type, entity_id, user_id, action, from, to
// (RFC3339), page, limit. Newest entries first.
func GetAuditLog(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	q := pipeline.AuditQuery{
		EntityType: models.EntityType(c.Query("entity_type")),
		EntityID:   c.Query("entity_id"),
		UserID:     c.Query("user_id"),
		Action:     models.AuditAction(c.Query("action")),
		Page:       page,
		Limit:      limit,
	}
	if v := c.Query("from"); v != "" {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			q.From = ts
		}
	}
	if v := c.Query("to"); v != "" {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			q.To = ts
		}
	}

	entries, total, err := pipeline.NewAuditService(database.GetDB()).List(q)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"count":   len(entries),
		"total":   total,
		"page":    page,
	})
}
