package forms

import (
	"net/http"
	"strings"
)

type CommentForm struct {
	Content  string `form:"content" validate:"required,min=5"`
	ParentID string `form:"parent_id" validate:"-"`
}

var commentMessages = map[string]string{
	"content": "Comment must be at least 5 characters long.",
}

func ParseCommentForm(r *http.Request) *CommentForm {
	return &CommentForm{
		Content:  strings.TrimSpace(r.PostFormValue("content")),
		ParentID: strings.TrimSpace(r.PostFormValue("parent_id")),
	}
}

func (f *CommentForm) Validate() Errors {
	return check(f, commentMessages)
}
