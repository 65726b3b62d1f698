package services

import (
	"fmt"

	"gorm.io/gorm"

	"inkpost/internal/db"
	"inkpost/internal/models"
)

// CanModifyComment reports whether user may edit or delete comment.
func CanModifyComment(user *models.User, comment *models.Comment) bool {
	return user != nil && comment != nil && comment.UserID == user.ID
}

func GetComment(id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := db.DB.Preload("User").First(&comment, id).Error; err != nil {
		return nil, notFound(err, "comment")
	}
	return &comment, nil
}

// AddComment stores a comment on the post, or a reply when parentID is set.
// The parent must exist and belong to the same post.
func AddComment(postID, userID uint, parentID *uint, content string) (*models.Comment, error) {
	comment := &models.Comment{
		PostID:   postID,
		UserID:   userID,
		ParentID: parentID,
		Content:  content,
		Active:   true,
	}
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").First(&post, postID).Error; err != nil {
			return notFound(err, "post")
		}
		if parentID != nil {
			var count int64
			err := tx.Model(&models.Comment{}).
				Where("id = ? AND post_id = ?", *parentID, postID).
				Count(&count).Error
			if err != nil {
				return fmt.Errorf("load parent comment: %w", err)
			}
			if count == 0 {
				return fmt.Errorf("comment %d: %w", *parentID, ErrInvalidParent)
			}
		}
		if err := tx.Create(comment).Error; err != nil {
			return fmt.Errorf("create comment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// RootComments returns the active top-level comments of a post, oldest
// first, with their active reply counts.
func RootComments(postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := db.DB.Preload("User").
		Where("post_id = ? AND parent_id IS NULL AND active = ?", postID, true).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	if err := fillReplyCounts(comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// Replies returns the active direct replies of a comment, oldest first.
func Replies(parentID uint) ([]models.Comment, error) {
	var replies []models.Comment
	err := db.DB.Preload("User").
		Where("parent_id = ? AND active = ?", parentID, true).
		Order("created_at ASC, id ASC").
		Find(&replies).Error
	if err != nil {
		return nil, fmt.Errorf("list replies: %w", err)
	}
	if err := fillReplyCounts(replies); err != nil {
		return nil, err
	}
	return replies, nil
}

func fillReplyCounts(comments []models.Comment) error {
	if len(comments) == 0 {
		return nil
	}
	ids := make([]uint, len(comments))
	for i := range comments {
		ids[i] = comments[i].ID
	}

	var rows []struct {
		ParentID uint
		Total    int64
	}
	err := db.DB.Model(&models.Comment{}).
		Select("parent_id, COUNT(*) AS total").
		Where("parent_id IN ? AND active = ?", ids, true).
		Group("parent_id").
		Scan(&rows).Error
	if err != nil {
		return fmt.Errorf("count replies: %w", err)
	}
	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.ParentID] = row.Total
	}
	for i := range comments {
		comments[i].ReplyCount = counts[comments[i].ID]
	}
	return nil
}

func EditComment(comment *models.Comment, content string) error {
	if err := db.DB.Model(comment).Update("content", content).Error; err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	return nil
}

// DeleteComment removes the comment and, through ON DELETE CASCADE, its
// replies.
func DeleteComment(comment *models.Comment) error {
	if err := db.DB.Delete(&models.Comment{}, comment.ID).Error; err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

// UserComments lists the user's comments, newest first, with their posts.
func UserComments(userID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := db.DB.Preload("Post").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("list user comments: %w", err)
	}
	return comments, nil
}
