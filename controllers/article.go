package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"journal-editorial-api/config"
	"journal-editorial-api/models"
	"journal-editorial-api/services"
)

// SubmitArticle creates a manuscript from the author's payload and kicks off
// editor assignment.
func SubmitArticle(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User context missing"})
		return
	}

	var input services.SubmitArticleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := services.NewSubmissionService(config.DB).SubmitArticle(c.Request.Context(), userID, &input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":         true,
		"article":         result.Article,
		"submission":      result.Submission,
		"status":          result.Status,
		"editor_assigned": result.EditorAssigned,
	})
}

// GetArticles lists articles visible to the caller: authors see their own,
// editorial roles see everything.
func GetArticles(c *gin.Context) {
	userID, _ := getCurrentUserID(c)
	role, _ := getCurrentRole(c)

	query := config.DB.Preload("CoAuthors").Where("delete_at IS NULL")
	if role == models.RoleAuthor {
		query = query.Where("author_id = ?", userID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var articles []models.Article
	if err := query.Order("create_at DESC").Find(&articles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch articles"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"articles": articles,
		"total":    len(articles),
	})
}

// GetArticle returns one article with its co-authors and reviews.
func GetArticle(c *gin.Context) {
	articleID, err := strconv.Atoi(c.Param("id"))
	if err != nil || articleID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid article ID"})
		return
	}

	var article models.Article
	if err := config.DB.
		Preload("CoAuthors").
		Preload("Reviewers").
		Where("article_id = ? AND delete_at IS NULL", articleID).
		First(&article).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
		return
	}

	userID, _ := getCurrentUserID(c)
	role, _ := getCurrentRole(c)
	if role == models.RoleAuthor && article.AuthorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
		return
	}

	reviews, err := services.NewReviewService(config.DB).ReviewsForArticle(c.Request.Context(), articleID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reviews"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"article": article,
		"reviews": reviews,
	})
}
