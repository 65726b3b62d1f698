package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPostImages(t *testing.T) {
	tests := []struct {
		name    string
		post    Post
		all     []string
		primary string
	}{
		{
			name:    "no images",
			post:    Post{},
			all:     []string{},
			primary: "",
		},
		{
			name:    "primary only",
			post:    Post{Image: "blog_images/a.png"},
			all:     []string{"blog_images/a.png"},
			primary: "blog_images/a.png",
		},
		{
			name: "additional only",
			post: Post{Images: []PostImage{
				{Image: "blog_images/additional/b.png"},
				{Image: "blog_images/additional/c.png"},
			}},
			all:     []string{"blog_images/additional/b.png", "blog_images/additional/c.png"},
			primary: "blog_images/additional/b.png",
		},
		{
			name: "primary first",
			post: Post{Image: "blog_images/a.png", Images: []PostImage{
				{Image: "blog_images/additional/b.png"},
			}},
			all:     []string{"blog_images/a.png", "blog_images/additional/b.png"},
			primary: "blog_images/a.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.all, tt.post.AllImages())
			assert.Equal(t, tt.primary, tt.post.PrimaryImage())
			assert.Equal(t, len(tt.all), tt.post.ImageCount())
		})
	}
}

func TestReactionKind(t *testing.T) {
	assert.Equal(t, "like", (&Reaction{IsLike: true}).Kind())
	assert.Equal(t, "dislike", (&Reaction{IsLike: false}).Kind())
}
