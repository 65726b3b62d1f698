package middleware

import (
	"crypto/subtle"
	"encoding/base64"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/securecookie"
)

const (
	// CSRFField is the hidden form field carrying the token.
	CSRFField = "csrf_token"
	// CSRFHeader carries the token on XHR requests.
	CSRFHeader = "X-CSRF-Token"

	csrfSessionKey = "csrf_token"
	csrfTokenBytes = 32
)

// CSRF rejects state-changing requests whose token does not match the one
// stored in the session. Safe methods pass through untouched.
func CSRF(onFailure gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		expected, _ := sessions.Default(c).Get(csrfSessionKey).(string)
		sent := c.GetHeader(CSRFHeader)
		if sent == "" {
			sent = c.PostForm(CSRFField)
		}
		if expected == "" || subtle.ConstantTimeCompare([]byte(expected), []byte(sent)) != 1 {
			onFailure(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CSRFToken returns the session's token, creating and saving one if the
// session has none yet.
func CSRFToken(c *gin.Context) string {
	session := sessions.Default(c)
	if token, ok := session.Get(csrfSessionKey).(string); ok && token != "" {
		return token
	}
	token := base64.RawURLEncoding.EncodeToString(securecookie.GenerateRandomKey(csrfTokenBytes))
	session.Set(csrfSessionKey, token)
	_ = session.Save()
	return token
}
