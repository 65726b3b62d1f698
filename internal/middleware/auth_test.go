package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkpost/internal/db/dbtest"
)

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))
	r.Use(LoadUser())
	r.GET("/login-as/:name", func(c *gin.Context) {
		session := sessions.Default(c)
		if c.Param("name") == "ghost" {
			session.Set(SessionUserKey, uint(4242))
		} else {
			session.Set(SessionUserKey, uint(1))
		}
		_ = session.Save()
		c.Status(http.StatusNoContent)
	})
	r.GET("/private/", AuthRequired(), func(c *gin.Context) {
		c.String(http.StatusOK, CurrentUser(c).Username)
	})
	return r
}

func TestAuthRequiredRedirectsAnonymous(t *testing.T) {
	dbtest.Open(t)
	r := newEngine()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private/?tab=1", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login/?next=%2Fprivate%2F%3Ftab%3D1", w.Header().Get("Location"))
}

func TestAuthRequiredJSONClients(t *testing.T) {
	dbtest.Open(t)
	r := newEngine()

	req := httptest.NewRequest(http.MethodGet, "/private/", nil)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Authentication required"}`, w.Body.String())
}

func TestLoadUserFromSession(t *testing.T) {
	dbtest.Open(t)
	alice := dbtest.CreateUser(t, "alice")
	require.Equal(t, uint(1), alice.ID)
	r := newEngine()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login-as/alice", nil))
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/private/", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", w.Body.String())
}

func TestLoadUserIgnoresDeletedUser(t *testing.T) {
	dbtest.Open(t)
	r := newEngine()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login-as/ghost", nil))
	req := httptest.NewRequest(http.MethodGet, "/private/", nil)
	for _, ck := range w.Result().Cookies() {
		req.AddCookie(ck)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusFound, w.Code)
}
