package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"scrumboard-api/internal/logger"
	"scrumboard-api/internal/pipeline"
	"scrumboard-api/internal/realtime"

	"github.com/gin-gonic/gin"
)

// respondError maps pipeline failures onto HTTP statuses. Permission
// denials carry the rejected field list so the UI can explain exactly
// why a save was refused; store failures stay distinguishable from
// access problems.
func respondError(c *gin.Context, err error) {
	var pd *pipeline.PermissionDeniedError
	var nf *pipeline.NotFoundError
	var ve *pipeline.ValidationError
	var se *pipeline.StoreError

	switch {
	case errors.Is(err, pipeline.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	case errors.As(err, &pd):
		c.JSON(http.StatusForbidden, gin.H{
			"error":  pd.Reason,
			"fields": pd.Fields,
		})
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, gin.H{"error": nf.Error()})
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": ve.Error(),
			"field": ve.Field,
		})
	case errors.As(err, &se):
		logger.Error("store failure", se)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Storage failure"})
	default:
		logger.Error("unexpected failure", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

// broadcastEvent pushes a board change event to all connected clients.
func broadcastEvent(eventType string, payload gin.H) {
	evt := gin.H{"type": eventType}
	for k, v := range payload {
		evt[k] = v
	}
	if bytes, err := json.Marshal(evt); err == nil {
		realtime.GetHub().Broadcast(bytes)
	}
}
