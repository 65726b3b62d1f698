package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"inkpost/internal/logs"
	"inkpost/internal/middleware"
	"inkpost/internal/services"
	"inkpost/internal/utils"
)

type ReactionHandler struct{}

func NewReactionHandler() *ReactionHandler {
	return &ReactionHandler{}
}

// Toggle likes or dislikes a post and returns the new counts as JSON.
func (h *ReactionHandler) Toggle(c *gin.Context) {
	user := middleware.CurrentUser(c)

	postID, ok := utils.ParseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	result, err := services.ToggleReaction(user.ID, postID, c.PostForm("action"))
	switch {
	case errors.Is(err, services.ErrInvalidAction):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid action"})
		return
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	case err != nil:
		logs.Error.Printf("toggle reaction: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not save your reaction"})
		return
	}

	c.JSON(http.StatusOK, result)
}
