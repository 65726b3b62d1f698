package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkpost/internal/db/dbtest"
)

func TestCreateUserAndAuthenticate(t *testing.T) {
	dbtest.Open(t)

	user, err := CreateUser("alice", "correct-horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct-horse", user.Password)

	_, err = CreateUser("Alice", "another-pass")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	got, err := Authenticate("alice", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = Authenticate("alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = Authenticate("nobody", "correct-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGoogleUser(t *testing.T) {
	dbtest.Open(t)
	dbtest.CreateUser(t, "Jane")

	user, err := GoogleUser(GoogleAccount{ID: "g-1", Email: "jane@example.com", GivenName: "Jane"})
	require.NoError(t, err)
	assert.Equal(t, "Jane2", user.Username)
	assert.Equal(t, "g-1", user.GoogleID)

	again, err := GoogleUser(GoogleAccount{ID: "g-1", Email: "jane@example.com"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)

	// Google-only accounts cannot log in with a password
	_, err = Authenticate("Jane2", "!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGoogleUsername(t *testing.T) {
	assert.Equal(t, "john.doe", googleUsername(GoogleAccount{Email: "john.doe@example.com"}))
	assert.Equal(t, "MaryAnn", googleUsername(GoogleAccount{GivenName: "Mary Ann"}))
	assert.Equal(t, "user", googleUsername(GoogleAccount{GivenName: "  "}))
}

func TestUserProfile(t *testing.T) {
	dbtest.Open(t)
	alice := dbtest.CreateUser(t, "alice")
	bob := dbtest.CreateUser(t, "bob")
	first := createPost(t, alice, "First of alice")
	createPost(t, alice, "Second of alice")
	createPost(t, bob, "Bob writes")
	_, err := AddComment(first.ID, alice.ID, nil, "Self comment")
	require.NoError(t, err)

	profile, err := UserProfile(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, profile.TotalPosts)
	assert.Equal(t, 1, profile.TotalComments)
	assert.Equal(t, "Second of alice", profile.Posts[0].Title)
	assert.Equal(t, "First of alice", profile.Comments[0].Post.Title)
}
