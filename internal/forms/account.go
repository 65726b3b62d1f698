package forms

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

func validateUsername(fl validator.FieldLevel) bool {
	return usernamePattern.MatchString(fl.Field().String())
}

type RegisterForm struct {
	Username  string `form:"username" validate:"required,max=150,username"`
	Password1 string `form:"password1" validate:"required,min=8"`
	Password2 string `form:"password2" validate:"required,eqfield=Password1"`
}

var registerMessages = map[string]string{
	"username.username": "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.",
	"username.max":      "Ensure this value has at most 150 characters.",
	"password1.min":     "This password is too short. It must contain at least 8 characters.",
	"password2.eqfield": "The two password fields didn't match.",
}

func ParseRegisterForm(r *http.Request) *RegisterForm {
	return &RegisterForm{
		Username:  strings.TrimSpace(r.PostFormValue("username")),
		Password1: r.PostFormValue("password1"),
		Password2: r.PostFormValue("password2"),
	}
}

func (f *RegisterForm) Validate() Errors {
	errs := check(f, registerMessages)
	if _, bad := errs["password1"]; !bad && isNumeric(f.Password1) {
		errs.Add("password1", "This password is entirely numeric.")
	}
	return errs
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

type LoginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
	Next     string `form:"next" validate:"-"`
}

func ParseLoginForm(r *http.Request) *LoginForm {
	return &LoginForm{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
		Next:     r.PostFormValue("next"),
	}
}

func (f *LoginForm) Validate() Errors {
	return check(f, nil)
}
