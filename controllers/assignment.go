package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"journal-editorial-api/config"
	"journal-editorial-api/services"
)

// AutoAssignReviewers runs automatic reviewer discovery and assignment for
// an article. The summary reports every protocol step and any per-candidate
// failures; partial success is still success.
func AutoAssignReviewers(c *gin.Context) {
	articleID, err := strconv.Atoi(c.Param("id"))
	if err != nil || articleID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid article ID"})
		return
	}

	var req struct {
		ExcludedReviewerIDs []int `json:"excluded_reviewer_ids"`
		TargetReviewers     int   `json:"target_reviewers"`
	}
	// Body is optional; defaults apply when absent.
	_ = c.ShouldBindJSON(&req)

	svc := services.NewReviewerAssignmentService(config.DB)
	if req.TargetReviewers > 0 {
		cfg := services.DefaultAssignmentConfig()
		cfg.TargetReviewers = req.TargetReviewers
		svc = svc.WithConfig(cfg)
	}

	summary, err := svc.AutoAssignReviewers(c.Request.Context(), articleID, req.ExcludedReviewerIDs)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": summary.Success,
		"summary": summary,
	})
}

// DirectAssignReviewers assigns the editor-chosen reviewer ids, reporting
// per-id validation failures.
func DirectAssignReviewers(c *gin.Context) {
	articleID, err := strconv.Atoi(c.Param("id"))
	if err != nil || articleID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid article ID"})
		return
	}

	var req struct {
		ReviewerIDs []int `json:"reviewer_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || len(req.ReviewerIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reviewer_ids is required"})
		return
	}

	summary, err := services.NewReviewerAssignmentService(config.DB).
		DirectAssignReviewers(c.Request.Context(), articleID, req.ReviewerIDs)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": summary.Success,
		"summary": summary,
	})
}
