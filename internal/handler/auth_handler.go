package handler

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/inkpress/internal/db"
	"golang.org/x/crypto/bcrypt"
)

// ShowLoginPage renders the login form.
func (a *API) ShowLoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{
		"title": "Sign in",
	})
}

// Login verifies credentials and opens a session.
func (a *API) Login(c *gin.Context) {
	name := c.PostForm("name")
	password := c.PostForm("password")

	var user db.User
	if err := a.db.Where("name = ?", name).First(&user).Error; err != nil {
		c.HTML(http.StatusUnauthorized, "login.html", gin.H{
			"title": "Sign in",
			"error": "Invalid name or password",
		})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		c.HTML(http.StatusUnauthorized, "login.html", gin.H{
			"title": "Sign in",
			"error": "Invalid name or password",
		})
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Set("user_name", user.Name)
	if err := session.Save(); err != nil {
		c.HTML(http.StatusInternalServerError, "login.html", gin.H{
			"title": "Sign in",
			"error": "Failed to save session",
		})
		return
	}

	c.Redirect(http.StatusFound, "/posts")
}

// Logout clears the session.
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.Redirect(http.StatusFound, "/posts")
}

// AuthRequired redirects unauthenticated requests to the login page.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if session.Get("user_id") == nil {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// currentUserID reads the acting user from the session.
func currentUserID(c *gin.Context) (uint, bool) {
	session := sessions.Default(c)
	id, ok := session.Get("user_id").(uint)
	return id, ok && id != 0
}

func setFlash(c *gin.Context, message string) {
	session := sessions.Default(c)
	session.AddFlash(message)
	session.Save()
}

func takeFlash(c *gin.Context) string {
	session := sessions.Default(c)
	flashes := session.Flashes()
	if len(flashes) == 0 {
		return ""
	}
	session.Save()
	if msg, ok := flashes[0].(string); ok {
		return msg
	}
	return ""
}
