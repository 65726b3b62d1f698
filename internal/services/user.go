package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"inkpost/internal/db"
	"inkpost/internal/models"
	"inkpost/internal/utils"
)

// unusablePassword never matches a bcrypt hash, for accounts that only sign
// in through Google.
const unusablePassword = "!"

// CreateUser registers a local account. Usernames are unique regardless of
// case.
func CreateUser(username, password string) (*models.User, error) {
	taken, err := usernameTaken(db.DB, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%s: %w", username, ErrUsernameTaken)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{Username: username, Password: hash}
	if err := db.DB.Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Authenticate checks a username and password pair.
func Authenticate(username, password string) (*models.User, error) {
	var user models.User
	err := db.DB.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !utils.CheckPasswordHash(password, user.Password) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// GoogleAccount is the part of a Google profile used for sign-in.
type GoogleAccount struct {
	ID        string
	Email     string
	GivenName string
}

var usernameUnsafe = regexp.MustCompile(`[^\w.@+-]+`)

// GoogleUser finds the account linked to a Google profile, linking by email
// or creating a new account when needed.
func GoogleUser(account GoogleAccount) (*models.User, error) {
	var user models.User
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("google_id = ?", account.ID).First(&user).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("load user: %w", err)
		}

		if account.Email != "" {
			err = tx.Where("email = ?", account.Email).First(&user).Error
			if err == nil {
				return tx.Model(&user).Update("google_id", account.ID).Error
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("load user: %w", err)
			}
		}

		username, err := freeUsername(tx, googleUsername(account))
		if err != nil {
			return err
		}
		user = models.User{
			Username: username,
			Password: unusablePassword,
			GoogleID: account.ID,
			Email:    account.Email,
		}
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func googleUsername(account GoogleAccount) string {
	name := account.GivenName
	if name == "" {
		name = strings.SplitN(account.Email, "@", 2)[0]
	}
	name = usernameUnsafe.ReplaceAllString(name, "")
	if name == "" {
		name = "user"
	}
	if len(name) > 140 {
		name = name[:140]
	}
	return name
}

// freeUsername appends a counter to base until the name is unused.
func freeUsername(conn *gorm.DB, base string) (string, error) {
	name := base
	for i := 2; ; i++ {
		taken, err := usernameTaken(conn, name)
		if err != nil {
			return "", err
		}
		if !taken {
			return name, nil
		}
		name = fmt.Sprintf("%s%d", base, i)
	}
}

func usernameTaken(conn *gorm.DB, username string) (bool, error) {
	var count int64
	err := conn.Model(&models.User{}).Where("LOWER(username) = LOWER(?)", username).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return count > 0, nil
}

// Profile is what the profile page shows about a user.
type Profile struct {
	Posts         []models.Post
	Comments      []models.Comment
	TotalPosts    int
	TotalComments int
}

func UserProfile(userID uint) (*Profile, error) {
	var posts []models.Post
	err := db.DB.Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("list user posts: %w", err)
	}
	comments, err := UserComments(userID)
	if err != nil {
		return nil, err
	}
	return &Profile{
		Posts:         posts,
		Comments:      comments,
		TotalPosts:    len(posts),
		TotalComments: len(comments),
	}, nil
}
