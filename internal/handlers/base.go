package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"inkpost/internal/logs"
	"inkpost/internal/middleware"
)

// Flash levels, also used as Bootstrap alert classes.
const (
	LevelSuccess = "success"
	LevelError   = "error"
	LevelInfo    = "info"
)

var flashLevels = []string{LevelSuccess, LevelInfo, LevelError}

// Message is one flash message shown at the top of the next page.
type Message struct {
	Level string
	Text  string
}

// Flash queues a message for the next rendered page. The session is saved
// by Render or redirect.
func Flash(c *gin.Context, level, text string) {
	sessions.Default(c).AddFlash(text, level)
}

// redirect saves the session, keeping queued flashes, and sends a 302.
func redirect(c *gin.Context, url string) {
	if err := sessions.Default(c).Save(); err != nil {
		logs.Error.Printf("save session: %v", err)
	}
	c.Redirect(http.StatusFound, url)
}

func popMessages(c *gin.Context) []Message {
	session := sessions.Default(c)
	var messages []Message
	for _, level := range flashLevels {
		for _, f := range session.Flashes(level) {
			if text, ok := f.(string); ok {
				messages = append(messages, Message{Level: level, Text: text})
			}
		}
	}
	if err := session.Save(); err != nil {
		logs.Error.Printf("save session: %v", err)
	}
	return messages
}

// Render helper to inject common variables like 'current user'
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	// Inject Current User, a nil *models.User for anonymous visitors
	obj["CurrentUser"] = middleware.CurrentUser(c)
	obj["CurrentPath"] = c.Request.URL.Path
	obj["CSRFToken"] = middleware.CSRFToken(c)
	obj["Messages"] = popMessages(c)

	c.HTML(code, name, obj)
}

// Error helper
func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, "error.html", gin.H{"Error": message, "Code": code})
}

// CSRFFailed answers a POST whose form token is missing or stale.
func CSRFFailed(c *gin.Context) {
	if middleware.WantsJSON(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "CSRF token missing or incorrect"})
		return
	}
	RenderError(c, http.StatusForbidden, "Your form has expired. Please go back, reload the page and try again.")
}

func NotFound(c *gin.Context) {
	RenderError(c, http.StatusNotFound, "The page you are looking for does not exist.")
}

// ServerError logs err and shows the generic error page.
func ServerError(c *gin.Context, err error) {
	logs.Error.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	RenderError(c, http.StatusInternalServerError, "Something went wrong. Please try again later.")
}

func postURL(id uint) string {
	return "/post/" + strconv.FormatUint(uint64(id), 10) + "/"
}

// redirectWithError flashes message and sends the user to url.
func redirectWithError(c *gin.Context, url, message string) {
	Flash(c, LevelError, message)
	redirect(c, url)
}
