package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"journal-editorial-api/services"
)

func getCurrentUserID(c *gin.Context) (int, bool) {
	if v, ok := c.Get("userID"); ok {
		switch t := v.(type) {
		case int:
			return t, true
		case int64:
			return int(t), true
		case float64:
			return int(t), true
		}
	}
	return 0, false
}

func getCurrentRole(c *gin.Context) (string, bool) {
	if v, ok := c.Get("role"); ok {
		if role, ok := v.(string); ok {
			return role, true
		}
	}
	return "", false
}

// respondServiceError maps engine errors onto HTTP responses. Invalid
// transitions carry their allowed set so the UI can adjust.
func respondServiceError(c *gin.Context, err error) {
	var invalid *services.InvalidTransitionError
	if errors.As(err, &invalid) {
		c.JSON(http.StatusConflict, gin.H{
			"error":               invalid.Error(),
			"allowed_transitions": invalid.Allowed,
		})
		return
	}

	var validation *services.ValidationError
	if errors.As(err, &validation) {
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Error()})
		return
	}

	var noCandidate *services.NoSuitableCandidateError
	if errors.As(err, &noCandidate) {
		c.JSON(http.StatusNotFound, gin.H{"error": noCandidate.Error()})
		return
	}

	if errors.Is(err, services.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
