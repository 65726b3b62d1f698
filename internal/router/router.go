package router

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"inkpost/internal/handlers"
	"inkpost/internal/middleware"
	"inkpost/internal/storage"
	"inkpost/web"
)

const sessionName = "inkpost_session"

type Options struct {
	SessionSecret string
	Store         storage.ImageStore
	// MediaRoot is served under /media when set (local storage only).
	MediaRoot string
	Google    *handlers.GoogleAuth
	// SiteURL prefixes the links in the sitemap and feed.
	SiteURL string
}

// New builds the engine with sessions, templates, static files and routes.
func New(opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	store := cookie.NewStore([]byte(opts.SessionSecret))
	store.Options(sessions.Options{Path: "/", MaxAge: 14 * 24 * 3600, HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions(sessionName, store))

	r.HTMLRender = web.LoadTemplates()
	r.StaticFS("/static", http.FS(web.Static()))
	if opts.MediaRoot != "" {
		r.Static("/media", opts.MediaRoot)
	}

	r.Use(middleware.LoadUser())
	r.Use(middleware.CSRF(handlers.CSRFFailed))
	RegisterRoutes(r, opts)
	r.NoRoute(handlers.NotFound)
	return r
}

func RegisterRoutes(r *gin.Engine, opts Options) {
	// Handlers
	authHandler := handlers.NewAuthHandler(opts.Google)
	postHandler := handlers.NewPostHandler(opts.Store)
	commentHandler := handlers.NewCommentHandler()
	reactionHandler := handlers.NewReactionHandler()
	userHandler := handlers.NewUserHandler()
	imageHandler := handlers.NewImageHandler(opts.Store)
	seoHandler := handlers.NewSEOHandler(opts.SiteURL)

	// 公共路由 (Public Routes)
	r.GET("/", postHandler.List)                           // 文章列表
	r.GET("/post/:id/", postHandler.Detail)                // 文章详情
	r.GET("/comment/:id/replies/", commentHandler.Replies) // 评论回复
	r.GET("/welcome/", authHandler.Welcome)                // 注册成功
	r.GET("/logout/", authHandler.Logout)                  // 退出登录

	// SEO
	r.GET("/robots.txt", seoHandler.RobotsTxt)
	r.GET("/sitemap.xml", seoHandler.SitemapXML)
	r.GET("/feed.xml", seoHandler.RSSFeed)

	anonymous := r.Group("/")
	anonymous.Use(middleware.AnonymousOnly())
	{
		anonymous.GET("/register/", authHandler.ShowRegister)
		anonymous.POST("/register/", authHandler.Register)
		anonymous.GET("/login/", authHandler.ShowLogin)
		anonymous.POST("/login/", authHandler.Login)
	}

	if opts.Google != nil {
		r.GET("/auth/google/login", opts.Google.Login)
		r.GET("/auth/google/callback", opts.Google.Callback)
	}

	// 受保护路由 (Protected Routes)
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/create/", postHandler.ShowCreate)
		authorized.POST("/create/", postHandler.Create)
		authorized.GET("/post/:id/edit/", postHandler.ShowEdit)
		authorized.POST("/post/:id/edit/", postHandler.Update)
		authorized.GET("/post/:id/delete/", postHandler.ShowDelete)
		authorized.POST("/post/:id/delete/", postHandler.Delete)
		authorized.GET("/my-posts/", postHandler.MyPosts)

		authorized.POST("/post/:id/comment/", commentHandler.Create)
		authorized.GET("/comment/:id/edit/", commentHandler.ShowEdit)
		authorized.POST("/comment/:id/edit/", commentHandler.Update)
		authorized.GET("/comment/:id/delete/", commentHandler.ShowDelete)
		authorized.POST("/comment/:id/delete/", commentHandler.Delete)

		authorized.POST("/post/:id/like-dislike/", reactionHandler.Toggle) // 点赞/点踩
		authorized.POST("/upload/", imageHandler.Upload)                   // 编辑器图片上传
		authorized.GET("/profile/", userHandler.Profile)
	}
}
