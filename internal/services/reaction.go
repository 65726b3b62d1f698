package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"inkpost/internal/db"
	"inkpost/internal/models"
)

const (
	ActionLike    = "like"
	ActionDislike = "dislike"
)

// ReactionResult is what the like/dislike endpoint returns.
type ReactionResult struct {
	LikesCount    int64   `json:"likes_count"`
	DislikesCount int64   `json:"dislikes_count"`
	UserReaction  *string `json:"user_reaction"`
}

// ToggleReaction applies action for the user on the post:
// no reaction creates one, the same reaction removes it, the opposite one
// flips it. A missing post wins over an invalid action.
func ToggleReaction(userID, postID uint, action string) (*ReactionResult, error) {
	result := &ReactionResult{}
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").First(&post, postID).Error; err != nil {
			return notFound(err, "post")
		}
		if action != ActionLike && action != ActionDislike {
			return fmt.Errorf("%q: %w", action, ErrInvalidAction)
		}

		reaction, err := toggle(tx, userID, postID, action == ActionLike)
		if err != nil {
			return err
		}
		if reaction != nil {
			result.UserReaction = kindPtr(reaction.IsLike)
		}

		likes, dislikes, err := reactionCounts(tx, postID)
		if err != nil {
			return err
		}
		result.LikesCount, result.DislikesCount = likes, dislikes
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// toggle returns the reaction left in place, or nil when it was removed.
// A concurrent first reaction from the same user makes the insert a no-op;
// the row it left behind is then toggled instead.
func toggle(tx *gorm.DB, userID, postID uint, isLike bool) (*models.Reaction, error) {
	for attempt := 0; attempt < 2; attempt++ {
		var existing models.Reaction
		err := tx.Where("user_id = ? AND post_id = ?", userID, postID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			reaction := models.Reaction{UserID: userID, PostID: postID, IsLike: isLike}
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&reaction)
			if res.Error != nil {
				return nil, fmt.Errorf("create reaction: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				continue
			}
			return &reaction, nil
		case err != nil:
			return nil, fmt.Errorf("load reaction: %w", err)
		case existing.IsLike == isLike:
			// 重复点击，取消
			if err := tx.Delete(&existing).Error; err != nil {
				return nil, fmt.Errorf("delete reaction: %w", err)
			}
			return nil, nil
		default:
			if err := tx.Model(&existing).Update("is_like", isLike).Error; err != nil {
				return nil, fmt.Errorf("update reaction: %w", err)
			}
			existing.IsLike = isLike
			return &existing, nil
		}
	}
	return nil, fmt.Errorf("create reaction: conflicting insert for user %d on post %d", userID, postID)
}

// ReactionCounts returns the number of likes and dislikes on a post.
func ReactionCounts(postID uint) (likes, dislikes int64, err error) {
	return reactionCounts(db.DB, postID)
}

func reactionCounts(conn *gorm.DB, postID uint) (likes, dislikes int64, err error) {
	var rows []struct {
		IsLike bool
		Total  int64
	}
	err = conn.Model(&models.Reaction{}).
		Select("is_like, COUNT(*) AS total").
		Where("post_id = ?", postID).
		Group("is_like").
		Scan(&rows).Error
	if err != nil {
		return 0, 0, fmt.Errorf("count reactions: %w", err)
	}
	for _, row := range rows {
		if row.IsLike {
			likes = row.Total
		} else {
			dislikes = row.Total
		}
	}
	return likes, dislikes, nil
}

// UserReaction returns "like", "dislike" or "" for the user's reaction.
func UserReaction(userID, postID uint) string {
	var reaction models.Reaction
	if err := db.DB.Where("user_id = ? AND post_id = ?", userID, postID).First(&reaction).Error; err != nil {
		return ""
	}
	return reaction.Kind()
}

func kindPtr(isLike bool) *string {
	kind := (&models.Reaction{IsLike: isLike}).Kind()
	return &kind
}
