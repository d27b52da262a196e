package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"journal-editorial-api/config"
	"journal-editorial-api/services"
)

// UpdateSubmissionStatus applies one workflow transition. Illegal moves are
// rejected with the allowed set and leave the submission untouched.
func UpdateSubmissionStatus(c *gin.Context) {
	submissionID, err := strconv.Atoi(c.Param("id"))
	if err != nil || submissionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return
	}

	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User context missing"})
		return
	}

	var req struct {
		Status string  `json:"status" binding:"required"`
		Notes  *string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	svc := services.NewSubmissionService(config.DB)
	if err := svc.UpdateSubmissionStatus(c.Request.Context(), submissionID,
		services.WorkflowStatus(req.Status), userID, req.Notes); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"status":  req.Status,
	})
}

// GetSubmission returns a submission with its full status history.
func GetSubmission(c *gin.Context) {
	submissionID, err := strconv.Atoi(c.Param("id"))
	if err != nil || submissionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return
	}

	submission, err := services.NewSubmissionService(config.DB).GetSubmission(c.Request.Context(), submissionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "submission": submission})
}

// GetAllowedTransitions is the pre-flight check for status-change UIs.
func GetAllowedTransitions(c *gin.Context) {
	submissionID, err := strconv.Atoi(c.Param("id"))
	if err != nil || submissionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return
	}

	allowed, err := services.NewSubmissionService(config.DB).AllowedTransitionsFor(c.Request.Context(), submissionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":             true,
		"allowed_transitions": allowed,
	})
}
