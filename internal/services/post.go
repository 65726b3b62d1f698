package services

import (
	"fmt"

	"gorm.io/gorm"

	"inkpost/internal/db"
	"inkpost/internal/models"
	"inkpost/internal/utils"
)

// PostsPerPage is the page size of every post list.
const PostsPerPage = 6

// MaxPostImages mirrors the form limit on additional images.
const MaxPostImages = 10

// PostInput carries validated form data. Image keys refer to files the
// caller already stored.
type PostInput struct {
	Title        string
	Content      string
	Image        string // new primary image key, empty to keep the current one
	ClearImage   bool
	Images       []ImageInput
	DeleteImages []uint
}

// ImageInput is one additional image row. ID is zero for new rows; Image is
// empty when an existing row keeps its file.
type ImageInput struct {
	ID      uint
	Image   string
	Caption string
	Order   uint
}

// CanModifyPost reports whether user may edit or delete post.
func CanModifyPost(user *models.User, post *models.Post) bool {
	return user != nil && post != nil && post.UserID == user.ID
}

// GetPost loads a post with its author, images and reaction counts.
func GetPost(id uint) (*models.Post, error) {
	var post models.Post
	err := db.DB.Preload("User").
		Preload("Images", func(tx *gorm.DB) *gorm.DB { return tx.Order(models.ImageOrdering) }).
		First(&post, id).Error
	if err != nil {
		return nil, notFound(err, "post")
	}
	if err := fillPostCounts(db.DB, []*models.Post{&post}); err != nil {
		return nil, err
	}
	return &post, nil
}

// ListPosts returns one page of all posts, newest first.
func ListPosts(page string) (utils.Page, []models.Post, error) {
	return listPosts(db.DB.Model(&models.Post{}), page)
}

// UserPosts returns one page of the user's posts, newest first.
func UserPosts(userID uint, page string) (utils.Page, []models.Post, error) {
	return listPosts(db.DB.Model(&models.Post{}).Where("user_id = ?", userID), page)
}

func listPosts(query *gorm.DB, requested string) (utils.Page, []models.Post, error) {
	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return utils.Page{}, nil, fmt.Errorf("count posts: %w", err)
	}
	page := utils.NewPage(requested, PostsPerPage, total)

	var posts []models.Post
	err := query.Session(&gorm.Session{}).
		Preload("User").
		Preload("Images", func(tx *gorm.DB) *gorm.DB { return tx.Order(models.ImageOrdering) }).
		Order("created_at DESC, id DESC").
		Limit(page.PerPage).
		Offset(page.Offset()).
		Find(&posts).Error
	if err != nil {
		return page, nil, fmt.Errorf("list posts: %w", err)
	}

	ptrs := make([]*models.Post, len(posts))
	for i := range posts {
		ptrs[i] = &posts[i]
	}
	if err := fillPostCounts(db.DB, ptrs); err != nil {
		return page, nil, err
	}
	return page, posts, nil
}

// RecentPosts returns the newest posts with their authors, for feeds.
func RecentPosts(limit int) ([]models.Post, error) {
	var posts []models.Post
	err := db.DB.Preload("User").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("recent posts: %w", err)
	}
	return posts, nil
}

// fillPostCounts sets the like, dislike and active comment counts.
func fillPostCounts(conn *gorm.DB, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]uint, len(posts))
	byID := make(map[uint]*models.Post, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
		byID[p.ID] = p
	}

	var reactions []struct {
		PostID uint
		IsLike bool
		Total  int64
	}
	err := conn.Model(&models.Reaction{}).
		Select("post_id, is_like, COUNT(*) AS total").
		Where("post_id IN ?", ids).
		Group("post_id, is_like").
		Scan(&reactions).Error
	if err != nil {
		return fmt.Errorf("count reactions: %w", err)
	}
	for _, r := range reactions {
		if r.IsLike {
			byID[r.PostID].LikesCount = r.Total
		} else {
			byID[r.PostID].DislikesCount = r.Total
		}
	}

	var comments []struct {
		PostID uint
		Total  int64
	}
	err = conn.Model(&models.Comment{}).
		Select("post_id, COUNT(*) AS total").
		Where("post_id IN ? AND active = ?", ids, true).
		Group("post_id").
		Scan(&comments).Error
	if err != nil {
		return fmt.Errorf("count comments: %w", err)
	}
	for _, c := range comments {
		byID[c.PostID].CommentCount = c.Total
	}
	return nil
}

// CreatePost writes the post and its images in one transaction.
func CreatePost(userID uint, in PostInput) (*models.Post, error) {
	if len(in.Images) > MaxPostImages {
		return nil, ErrTooManyImages
	}
	for _, img := range in.Images {
		// 新文章没有已有图片，每一行都必须带文件
		if img.ID != 0 || img.Image == "" {
			return nil, ErrInvalidImage
		}
	}

	post := &models.Post{
		UserID:  userID,
		Title:   in.Title,
		Content: in.Content,
		Image:   in.Image,
	}
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return fmt.Errorf("create post: %w", err)
		}
		for _, img := range in.Images {
			row := models.PostImage{PostID: post.ID, Image: img.Image, Caption: img.Caption, Order: img.Order}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("create image: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// UpdatePost applies in to post in one transaction and returns the keys of
// files no longer referenced, which the caller may remove from storage.
func UpdatePost(post *models.Post, in PostInput) ([]string, error) {
	previousImage := post.Image
	// Updates writes into the model it is given; post stays untouched until commit.
	updated := *post
	var obsolete []string
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"title":   in.Title,
			"content": in.Content,
		}
		switch {
		case in.Image != "":
			updates["image"] = in.Image
		case in.ClearImage:
			updates["image"] = ""
		}
		if err := tx.Model(&updated).Updates(updates).Error; err != nil {
			return fmt.Errorf("update post: %w", err)
		}

		var existing []models.PostImage
		if err := tx.Where("post_id = ?", post.ID).Find(&existing).Error; err != nil {
			return fmt.Errorf("load images: %w", err)
		}
		owned := make(map[uint]models.PostImage, len(existing))
		for _, img := range existing {
			owned[img.ID] = img
		}

		var replaced []string
		for _, id := range in.DeleteImages {
			img, ok := owned[id]
			if !ok {
				return fmt.Errorf("image %d: %w", id, ErrInvalidImage)
			}
			if err := tx.Delete(&models.PostImage{}, id).Error; err != nil {
				return fmt.Errorf("delete image: %w", err)
			}
			replaced = append(replaced, img.Image)
			delete(owned, id)
		}

		for _, img := range in.Images {
			if img.ID == 0 {
				if img.Image == "" {
					return ErrInvalidImage
				}
				row := models.PostImage{PostID: post.ID, Image: img.Image, Caption: img.Caption, Order: img.Order}
				if err := tx.Create(&row).Error; err != nil {
					return fmt.Errorf("create image: %w", err)
				}
				owned[row.ID] = row
				continue
			}

			current, ok := owned[img.ID]
			if !ok {
				return fmt.Errorf("image %d: %w", img.ID, ErrInvalidImage)
			}
			fields := map[string]interface{}{"caption": img.Caption, "sort_order": img.Order}
			if img.Image != "" {
				fields["image"] = img.Image
				replaced = append(replaced, current.Image)
			}
			if err := tx.Model(&models.PostImage{}).Where("id = ?", img.ID).Updates(fields).Error; err != nil {
				return fmt.Errorf("update image: %w", err)
			}
		}

		if len(owned) > MaxPostImages {
			return ErrTooManyImages
		}
		obsolete = replaced
		return nil
	})
	if err != nil {
		return nil, err
	}
	*post = updated

	if previousImage != "" && (in.Image != "" || in.ClearImage) {
		obsolete = append(obsolete, previousImage)
	}
	switch {
	case in.Image != "":
		post.Image = in.Image
	case in.ClearImage:
		post.Image = ""
	}
	post.Title, post.Content = in.Title, in.Content
	return obsolete, nil
}

// DeletePost removes the post. Images, comments and reactions go with it
// through ON DELETE CASCADE. The returned keys are the post's stored files.
func DeletePost(post *models.Post) ([]string, error) {
	var keys []string
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var images []models.PostImage
		if err := tx.Where("post_id = ?", post.ID).Find(&images).Error; err != nil {
			return fmt.Errorf("load images: %w", err)
		}
		if err := tx.Delete(&models.Post{}, post.ID).Error; err != nil {
			return fmt.Errorf("delete post: %w", err)
		}
		if post.Image != "" {
			keys = append(keys, post.Image)
		}
		for _, img := range images {
			keys = append(keys, img.Image)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}
