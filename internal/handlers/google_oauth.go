package handlers

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"inkpost/internal/config"
	"inkpost/internal/logs"
	"inkpost/internal/services"
)

const (
	oauthStateKey = "oauth_state"
	oauthNextKey  = "oauth_next"

	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// GoogleAuth handles sign-in with Google.
type GoogleAuth struct {
	config      *oauth2.Config
	userInfoURL string
}

// NewGoogleAuth returns nil when no Google client is configured.
func NewGoogleAuth(cfg *config.Config) *GoogleAuth {
	if !cfg.GoogleEnabled() {
		return nil
	}
	return &GoogleAuth{
		config: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.SiteURL + "/auth/google/callback",
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		userInfoURL: googleUserInfoURL,
	}
}

// googleUserInfo Google 用户信息结构
type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	GivenName     string `json:"given_name"`
}

// generateStateToken 生成随机 state token
func generateStateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// Login 发起 Google OAuth 登录
func (g *GoogleAuth) Login(c *gin.Context) {
	state, err := generateStateToken()
	if err != nil {
		ServerError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set(oauthStateKey, state)
	session.Set(oauthNextKey, safeNext(c.Query("next")))
	if err := session.Save(); err != nil {
		ServerError(c, err)
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, g.config.AuthCodeURL(state))
}

// Callback 处理 Google OAuth 回调
func (g *GoogleAuth) Callback(c *gin.Context) {
	session := sessions.Default(c)
	savedState, _ := session.Get(oauthStateKey).(string)
	next, _ := session.Get(oauthNextKey).(string)
	session.Delete(oauthStateKey)
	session.Delete(oauthNextKey)

	if savedState == "" || c.Query("state") != savedState {
		redirectWithError(c, "/login/", "Google sign-in failed: invalid state.")
		return
	}
	code := c.Query("code")
	if code == "" {
		redirectWithError(c, "/login/", "Google sign-in was cancelled.")
		return
	}

	info, err := g.fetchUser(c.Request.Context(), code)
	if err != nil {
		logs.Error.Printf("google sign-in: %v", err)
		redirectWithError(c, "/login/", "Google sign-in failed. Please try again.")
		return
	}
	if !info.VerifiedEmail {
		redirectWithError(c, "/login/", "Your Google email address is not verified.")
		return
	}

	user, err := services.GoogleUser(services.GoogleAccount{ID: info.ID, Email: info.Email, GivenName: info.GivenName})
	if err != nil {
		ServerError(c, err)
		return
	}

	login(c, user)
	Flash(c, LevelSuccess, fmt.Sprintf("Welcome back, %s!", user.Username))
	redirect(c, safeNext(next))
}

func (g *GoogleAuth) fetchUser(ctx context.Context, code string) (*googleUserInfo, error) {
	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	resp, err := g.config.Client(ctx, token).Get(g.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch user info: status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}
	return &info, nil
}
