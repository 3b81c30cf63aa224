package router

import (
	"html/template"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/inkpress/internal/config"
	"github.com/inkpress/internal/handler"
)

// SetupRouter configures the gin engine and routes.
func SetupRouter(cfg config.AppConfig, api *handler.API) *gin.Engine {
	r := gin.Default()

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	// The store's defaults mark the cookie Secure with SameSite=None, which
	// clients drop over plain http; set options that work on both schemes.
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("inkpress_session", store))

	r.SetFuncMap(template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
	})
	r.LoadHTMLGlob(cfg.TemplateGlob)

	// Uploaded blobs are publicly servable under the upload URL prefix.
	// Uploads are user-supplied (svg included), so they are served with a
	// sandboxing policy that keeps embedded scripts inert.
	uploads := r.Group(cfg.UploadURLPath)
	uploads.Use(func(c *gin.Context) {
		c.Header("Content-Security-Policy", "sandbox")
		c.Header("X-Content-Type-Options", "nosniff")
	})
	uploads.Static("/", cfg.UploadDir)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Session login for the web surface.
	r.GET("/login", api.ShowLoginPage)
	r.POST("/login", api.Login)
	r.GET("/logout", api.Logout)

	// Listing, detail and tag filtering stay public.
	r.GET("/posts", api.ShowPostList)
	r.GET("/posts/:id", api.ShowPost)
	r.GET("/posts/tags/:id", api.FilterByTag)

	// Mutations require a session.
	auth := r.Group("")
	auth.Use(handler.AuthRequired())
	{
		auth.GET("/posts/create", api.ShowPostCreate)
		auth.POST("/posts", api.CreatePost)
		auth.GET("/posts/:id/edit", api.ShowPostEdit)
		auth.PUT("/posts/:id", api.UpdatePost)
		auth.PATCH("/posts/:id", api.UpdatePost)
		auth.DELETE("/posts/:id", api.DeletePost)
		// HTML forms cannot send PUT/DELETE; POST fallbacks cover them.
		auth.POST("/posts/:id", api.UpdatePost)
		auth.POST("/posts/:id/delete", api.DeletePost)

		auth.POST("/posts/:id/comments", api.CreateComment)
		auth.DELETE("/comments/:id", api.DeleteComment)
		auth.POST("/comments/:id/delete", api.DeleteComment)
	}

	// Resource-style JSON API; unauthenticated like the original surface.
	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/posts", api.ListPostsAPI)
		apiGroup.POST("/posts", api.CreatePostAPI)
		apiGroup.GET("/posts/:id", api.GetPostAPI)
		apiGroup.PUT("/posts/:id", api.UpdatePostAPI)
		apiGroup.PATCH("/posts/:id", api.UpdatePostAPI)
		apiGroup.DELETE("/posts/:id", api.DeletePostAPI)
		apiGroup.GET("/categories", api.ListCategoriesAPI)
	}

	return r
}
