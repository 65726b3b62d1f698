package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"inkpost/internal/forms"
	"inkpost/internal/logs"
	"inkpost/internal/middleware"
	"inkpost/internal/models"
	"inkpost/internal/services"
)

type AuthHandler struct {
	google *GoogleAuth
}

// NewAuthHandler builds the account handlers. google may be nil when Google
// sign-in is not configured.
func NewAuthHandler(google *GoogleAuth) *AuthHandler {
	return &AuthHandler{google: google}
}

func (h *AuthHandler) ShowRegister(c *gin.Context) {
	Render(c, http.StatusOK, "auth/register.html", gin.H{"Username": "", "Errors": forms.Errors{}})
}

func (h *AuthHandler) Register(c *gin.Context) {
	form := forms.ParseRegisterForm(c.Request)
	errs := form.Validate()

	if !errs.Any() {
		_, err := services.CreateUser(form.Username, form.Password1)
		switch {
		case errors.Is(err, services.ErrUsernameTaken):
			errs.Add("username", "A user with that username already exists.")
		case err != nil:
			ServerError(c, err)
			return
		default:
			Flash(c, LevelSuccess, fmt.Sprintf("Account created for %s! You can now login.", form.Username))
			redirect(c, "/welcome/")
			return
		}
	}

	Flash(c, LevelError, "Please correct the errors below.")
	Render(c, http.StatusBadRequest, "auth/register.html", gin.H{
		"Username": form.Username,
		"Errors":   errs,
	})
}

func (h *AuthHandler) Welcome(c *gin.Context) {
	Render(c, http.StatusOK, "auth/welcome.html", nil)
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	h.renderLogin(c, http.StatusOK, "", c.Query("next"))
}

func (h *AuthHandler) Login(c *gin.Context) {
	form := forms.ParseLoginForm(c.Request)
	next := form.Next
	if next == "" {
		next = c.Query("next")
	}

	user, err := h.authenticate(form)
	if err != nil {
		if !errors.Is(err, services.ErrInvalidCredentials) {
			logs.Error.Printf("login: %v", err)
		}
		Flash(c, LevelError, "Invalid username or password.")
		h.renderLogin(c, http.StatusUnauthorized, form.Username, next)
		return
	}

	login(c, user)
	Flash(c, LevelSuccess, fmt.Sprintf("Welcome back, %s!", user.Username))
	redirect(c, safeNext(next))
}

func (h *AuthHandler) authenticate(form *forms.LoginForm) (*models.User, error) {
	if form.Validate().Any() {
		return nil, services.ErrInvalidCredentials
	}
	return services.Authenticate(form.Username, form.Password)
}

func (h *AuthHandler) renderLogin(c *gin.Context, code int, username, next string) {
	Render(c, code, "auth/login.html", gin.H{
		"Username":      username,
		"Next":          next,
		"GoogleEnabled": h.google != nil,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	username := ""
	if user := middleware.CurrentUser(c); user != nil {
		username = user.Username
	}

	session := sessions.Default(c)
	session.Clear()
	if username != "" {
		Flash(c, LevelInfo, fmt.Sprintf("You have been logged out successfully, %s!", username))
	}
	redirect(c, "/")
}

// login stores the user in the session. The caller saves it.
func login(c *gin.Context, user *models.User) {
	session := sessions.Default(c)
	session.Clear()
	session.Set(middleware.SessionUserKey, user.ID)
}

// safeNext only allows local absolute paths as a post-login target.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") ||
		strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
