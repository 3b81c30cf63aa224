package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/inkpress/internal/service"
)

// CreateComment attaches a comment to a post for the logged-in user.
func (a *API) CreateComment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	postID, err := parseUintParam(c, "id")
	if err != nil {
		a.renderNotFound(c, "Post not found")
		return
	}

	content := c.PostForm("content")

	if _, err := a.comments.Create(postID, userID, content); err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			a.renderNotFound(c, "Post not found")
		case errors.Is(err, service.ErrCommentEmpty):
			setFlash(c, "Comment content is required")
			c.Redirect(http.StatusFound, fmt.Sprintf("/posts/%d", postID))
		default:
			c.HTML(http.StatusInternalServerError, "error.html", gin.H{
				"title": "Error",
				"error": "Failed to add comment",
			})
		}
		return
	}

	setFlash(c, "Comment added")
	c.Redirect(http.StatusFound, fmt.Sprintf("/posts/%d", postID))
}

// DeleteComment removes a comment owned by the logged-in user. The ownership
// check lives in the service, so hitting the route directly cannot bypass it.
func (a *API) DeleteComment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		a.renderNotFound(c, "Comment not found")
		return
	}

	if err := a.comments.Delete(id, userID); err != nil {
		switch {
		case errors.Is(err, service.ErrCommentNotFound):
			a.renderNotFound(c, "Comment not found")
		case errors.Is(err, service.ErrNotCommentOwner):
			c.HTML(http.StatusForbidden, "error.html", gin.H{
				"title": "Forbidden",
				"error": "You can only delete your own comments",
			})
		default:
			c.HTML(http.StatusInternalServerError, "error.html", gin.H{
				"title": "Error",
				"error": "Failed to delete comment",
			})
		}
		return
	}

	setFlash(c, "Comment deleted")
	target := c.Request.Referer()
	if target == "" {
		target = "/posts"
	}
	c.Redirect(http.StatusFound, target)
}
