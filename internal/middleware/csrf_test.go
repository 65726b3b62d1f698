package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCSRFEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))
	r.Use(CSRF(func(c *gin.Context) {
		c.String(http.StatusForbidden, "forbidden")
	}))
	r.GET("/token/", func(c *gin.Context) {
		c.String(http.StatusOK, CSRFToken(c))
	})
	r.POST("/submit/", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

// tokenAndCookie fetches a token and the session cookie that holds it.
func tokenAndCookie(t *testing.T, r *gin.Engine) (string, *http.Cookie) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/token/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	token := w.Body.String()
	require.NotEmpty(t, token)
	return token, cookies[len(cookies)-1]
}

func TestCSRF(t *testing.T) {
	r := newCSRFEngine()
	token, sessionCookie := tokenAndCookie(t, r)

	tests := []struct {
		name   string
		header string
		field  string
		cookie bool
		want   int
	}{
		{"header", token, "", true, http.StatusOK},
		{"form field", "", token, true, http.StatusOK},
		{"missing", "", "", true, http.StatusForbidden},
		{"wrong", "not-the-token", "", true, http.StatusForbidden},
		{"no session", token, "", false, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := url.Values{}
			if tt.field != "" {
				form.Set(CSRFField, tt.field)
			}
			req := httptest.NewRequest(http.MethodPost, "/submit/", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			if tt.header != "" {
				req.Header.Set(CSRFHeader, tt.header)
			}
			if tt.cookie {
				req.AddCookie(sessionCookie)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestCSRFTokenIsStable(t *testing.T) {
	r := newCSRFEngine()
	token, sessionCookie := tokenAndCookie(t, r)

	req := httptest.NewRequest(http.MethodGet, "/token/", nil)
	req.AddCookie(sessionCookie)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, token, w.Body.String())
}
