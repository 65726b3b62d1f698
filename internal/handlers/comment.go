package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"inkpost/internal/forms"
	"inkpost/internal/middleware"
	"inkpost/internal/models"
	"inkpost/internal/services"
	"inkpost/internal/utils"
)

type CommentHandler struct{}

func NewCommentHandler() *CommentHandler {
	return &CommentHandler{}
}

// Create adds a comment to the post, or a reply when parent_id is set.
func (h *CommentHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)
	postID, ok := utils.ParseID(c.Param("id"))
	if !ok {
		NotFound(c)
		return
	}

	form := forms.ParseCommentForm(c.Request)
	var parentID *uint
	if form.ParentID != "" {
		id, ok := utils.ParseID(form.ParentID)
		if !ok {
			redirectWithError(c, postURL(postID), "Invalid parent comment.")
			return
		}
		parentID = &id
	}

	if errs := form.Validate(); errs.Any() {
		post, err := services.GetPost(postID)
		if err != nil {
			h.fail(c, err)
			return
		}
		Flash(c, LevelError, "Please enter a valid comment.")
		renderPostDetail(c, http.StatusBadRequest, post, form.Content, errs)
		return
	}

	_, err := services.AddComment(postID, user.ID, parentID, form.Content)
	switch {
	case errors.Is(err, services.ErrInvalidParent):
		redirectWithError(c, postURL(postID), "Invalid parent comment.")
		return
	case err != nil:
		h.fail(c, err)
		return
	}

	if parentID != nil {
		Flash(c, LevelSuccess, "Your reply has been added successfully!")
	} else {
		Flash(c, LevelSuccess, "Your comment has been added successfully!")
	}
	redirect(c, postURL(postID))
}

// Replies renders the active replies of a comment as an HTML fragment.
func (h *CommentHandler) Replies(c *gin.Context) {
	comment, ok := h.loadComment(c)
	if !ok {
		return
	}
	replies, err := services.Replies(comment.ID)
	if err != nil {
		ServerError(c, err)
		return
	}
	c.HTML(http.StatusOK, "comment/replies.html", gin.H{
		"Parent":      comment,
		"Replies":     replies,
		"CurrentUser": middleware.CurrentUser(c),
		"CSRFToken":   middleware.CSRFToken(c),
	})
}

func (h *CommentHandler) ShowEdit(c *gin.Context) {
	comment, ok := h.ownComment(c, "You can only edit your own comments.")
	if !ok {
		return
	}
	Render(c, http.StatusOK, "comment/edit.html", gin.H{
		"Comment": comment,
		"Content": comment.Content,
		"Errors":  forms.Errors{},
	})
}

func (h *CommentHandler) Update(c *gin.Context) {
	comment, ok := h.ownComment(c, "You can only edit your own comments.")
	if !ok {
		return
	}

	form := forms.ParseCommentForm(c.Request)
	if errs := form.Validate(); errs.Any() {
		Flash(c, LevelError, "Please correct the errors below.")
		Render(c, http.StatusBadRequest, "comment/edit.html", gin.H{
			"Comment": comment,
			"Content": form.Content,
			"Errors":  errs,
		})
		return
	}

	if err := services.EditComment(comment, form.Content); err != nil {
		ServerError(c, err)
		return
	}
	Flash(c, LevelSuccess, "Your comment has been updated successfully!")
	redirect(c, postURL(comment.PostID))
}

func (h *CommentHandler) ShowDelete(c *gin.Context) {
	comment, ok := h.ownComment(c, "You can only delete your own comments.")
	if !ok {
		return
	}
	Render(c, http.StatusOK, "comment/delete.html", gin.H{"Comment": comment})
}

func (h *CommentHandler) Delete(c *gin.Context) {
	comment, ok := h.ownComment(c, "You can only delete your own comments.")
	if !ok {
		return
	}
	if err := services.DeleteComment(comment); err != nil {
		ServerError(c, err)
		return
	}
	Flash(c, LevelSuccess, "Your comment has been deleted successfully.")
	redirect(c, postURL(comment.PostID))
}

func (h *CommentHandler) loadComment(c *gin.Context) (*models.Comment, bool) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		NotFound(c)
		return nil, false
	}
	comment, err := services.GetComment(id)
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return comment, true
}

func (h *CommentHandler) ownComment(c *gin.Context, denied string) (*models.Comment, bool) {
	comment, ok := h.loadComment(c)
	if !ok {
		return nil, false
	}
	if !services.CanModifyComment(middleware.CurrentUser(c), comment) {
		redirectWithError(c, postURL(comment.PostID), denied)
		return nil, false
	}
	if err := fillCommentPost(comment); err != nil {
		ServerError(c, err)
		return nil, false
	}
	return comment, true
}

func fillCommentPost(comment *models.Comment) error {
	post, err := services.GetPost(comment.PostID)
	if err != nil {
		return err
	}
	comment.Post = *post
	return nil
}

func (h *CommentHandler) fail(c *gin.Context, err error) {
	if errors.Is(err, services.ErrNotFound) {
		NotFound(c)
		return
	}
	ServerError(c, err)
}
