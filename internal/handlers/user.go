package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"inkpost/internal/middleware"
	"inkpost/internal/services"
)

type UserHandler struct{}

func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// Profile shows the current user's posts and comments.
func (h *UserHandler) Profile(c *gin.Context) {
	user := middleware.CurrentUser(c)
	profile, err := services.UserProfile(user.ID)
	if err != nil {
		ServerError(c, err)
		return
	}
	Render(c, http.StatusOK, "user/profile.html", gin.H{
		"Posts":         profile.Posts,
		"Comments":      profile.Comments,
		"TotalPosts":    profile.TotalPosts,
		"TotalComments": profile.TotalComments,
	})
}
