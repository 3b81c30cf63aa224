package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/inkpress/internal/db"
	"github.com/inkpress/internal/service"
	"github.com/inkpress/internal/storage"
)

// ShowPostList renders the paginated post listing. An optional ?tag= query
// restricts the listing to one tag.
func (a *API) ShowPostList(c *gin.Context) {
	filter := service.PostFilter{Page: 1, PerPage: 10}
	if p, err := strconv.Atoi(c.Query("page")); err == nil && p > 0 {
		filter.Page = p
	}

	var activeTag *db.Tag
	if raw := strings.TrimSpace(c.Query("tag")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			a.renderNotFound(c, "Tag not found")
			return
		}
		tagID := uint(id)
		filter.TagID = &tagID

		tag, err := a.tags.Get(tagID)
		if err != nil {
			a.renderNotFound(c, "Tag not found")
			return
		}
		activeTag = tag
	}

	a.renderPostList(c, filter, activeTag)
}

// FilterByTag renders the listing restricted to the tag in the route.
func (a *API) FilterByTag(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		a.renderNotFound(c, "Tag not found")
		return
	}

	tag, err := a.tags.Get(id)
	if err != nil {
		a.renderNotFound(c, "Tag not found")
		return
	}

	filter := service.PostFilter{Page: 1, PerPage: 10, TagID: &tag.ID}
	if p, perr := strconv.Atoi(c.Query("page")); perr == nil && p > 0 {
		filter.Page = p
	}

	a.renderPostList(c, filter, tag)
}

func (a *API) renderPostList(c *gin.Context, filter service.PostFilter, activeTag *db.Tag) {
	result, err := a.posts.List(filter)
	if err != nil {
		if errors.Is(err, service.ErrTagNotFound) {
			a.renderNotFound(c, "Tag not found")
			return
		}
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{
			"title": "Error",
			"error": "Failed to load posts",
		})
		return
	}

	userID, loggedIn := currentUserID(c)

	c.HTML(http.StatusOK, "post_list.html", gin.H{
		"title":      "Posts",
		"posts":      result.Posts,
		"page":       result.Page,
		"totalPages": result.TotalPages,
		"total":      result.Total,
		"activeTag":  activeTag,
		"flash":      takeFlash(c),
		"userID":     userID,
		"loggedIn":   loggedIn,
	})
}

// ShowPost renders the detail page with rendered markdown, prev/next
// navigation and the comment thread.
func (a *API) ShowPost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		a.renderNotFound(c, "Post not found")
		return
	}

	detail, err := a.posts.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			a.renderNotFound(c, "Post not found")
			return
		}
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{
			"title": "Error",
			"error": "Failed to load post",
		})
		return
	}

	userID, loggedIn := currentUserID(c)

	c.HTML(http.StatusOK, "post_show.html", gin.H{
		"title":       detail.Post.Title,
		"post":        detail.Post,
		"contentHTML": renderMarkdown(detail.Post.Content),
		"previous":    detail.Previous,
		"next":        detail.Next,
		"comments":    detail.Post.Comments,
		"flash":       takeFlash(c),
		"userID":      userID,
		"loggedIn":    loggedIn,
	})
}

// ShowPostCreate renders the create form.
func (a *API) ShowPostCreate(c *gin.Context) {
	categories, err := a.categories.List()
	if err != nil {
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{
			"title": "Error",
			"error": "Failed to load categories",
		})
		return
	}

	c.HTML(http.StatusOK, "post_form.html", gin.H{
		"title":      "Create post",
		"action":     "/posts",
		"categories": categories,
		"form":       gin.H{},
		"errors":     map[string]string{},
	})
}

// CreatePost handles the create form submission.
func (a *API) CreatePost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	var req postCreateRequest
	if err := c.ShouldBind(&req); err != nil {
		a.renderPostForm(c, "Create post", "/posts", nil, req, validationErrors(err))
		return
	}

	imagePath, imgErrs, fatal := a.storeFormImage(c, storage.CreateImageExts)
	if fatal {
		return
	}
	if len(imgErrs) > 0 {
		a.renderPostForm(c, "Create post", "/posts", nil, req, imgErrs)
		return
	}

	_, err := a.posts.Create(service.PostInput{
		Title:      req.Title,
		Content:    req.Content,
		Status:     req.Status,
		CategoryID: req.CategoryID,
		UserID:     userID,
		Tags:       req.Tags,
		ImagePath:  imagePath,
	})
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			a.renderPostForm(c, "Create post", "/posts", nil, req,
				map[string]string{"category_id": "The selected category does not exist."})
			return
		}
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{
			"title": "Error",
			"error": "Failed to create post",
		})
		return
	}

	setFlash(c, "Post created successfully")
	c.Redirect(http.StatusFound, "/posts")
}

// ShowPostEdit renders the edit form for an existing post.
func (a *API) ShowPostEdit(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		a.renderNotFound(c, "Post not found")
		return
	}

	detail, err := a.posts.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			a.renderNotFound(c, "Post not found")
			return
		}
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{
			"title": "Error",
			"error": "Failed to load post",
		})
		return
	}

	categories, err := a.categories.List()
	if err != nil {
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{
			"title": "Error",
			"error": "Failed to load categories",
		})
		return
	}

	post := detail.Post
	c.HTML(http.StatusOK, "post_form.html", gin.H{
		"title":      "Edit post",
		"action":     fmt.Sprintf("/posts/%d", post.ID),
		"post":       post,
		"categories": categories,
		"form": gin.H{
			"Title":      post.Title,
			"Content":    post.Content,
			"Status":     post.Status,
			"CategoryID": post.CategoryID,
			"Tags":       tagNames(post.Tags),
		},
		"errors": map[string]string{},
	})
}

// UpdatePost handles the edit form submission. The web form always sends
// every field, so the create rules apply.
func (a *API) UpdatePost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		a.renderNotFound(c, "Post not found")
		return
	}

	action := fmt.Sprintf("/posts/%d", id)

	var req postCreateRequest
	if err := c.ShouldBind(&req); err != nil {
		a.renderPostForm(c, "Edit post", action, nil, req, validationErrors(err))
		return
	}

	update := service.PostUpdate{
		Title:      &req.Title,
		Content:    &req.Content,
		Status:     &req.Status,
		CategoryID: &req.CategoryID,
		Tags:       &req.Tags,
	}

	if file, ferr := c.FormFile("image"); ferr == nil && file != nil {
		path, serr := a.store.SaveImage(file, storage.UpdateImageExts)
		if serr != nil {
			errs, fatal := webImageErrors(serr)
			if fatal {
				c.HTML(http.StatusInternalServerError, "error.html", gin.H{
					"title": "Error",
					"error": "Failed to store image",
				})
				return
			}
			a.renderPostForm(c, "Edit post", action, nil, req, errs)
			return
		}
		update.ImagePath = &path
	}

	if _, err := a.posts.Update(id, update); err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			a.renderNotFound(c, "Post not found")
		case errors.Is(err, service.ErrCategoryNotFound):
			a.renderPostForm(c, "Edit post", action, nil, req,
				map[string]string{"category_id": "The selected category does not exist."})
		default:
			c.HTML(http.StatusInternalServerError, "error.html", gin.H{
				"title": "Error",
				"error": "Failed to update post",
			})
		}
		return
	}

	setFlash(c, "Post updated successfully")
	c.Redirect(http.StatusFound, "/posts")
}

// DeletePost removes a post and redirects to the listing.
func (a *API) DeletePost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		a.renderNotFound(c, "Post not found")
		return
	}

	if err := a.posts.Delete(id); err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			a.renderNotFound(c, "Post not found")
			return
		}
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{
			"title": "Error",
			"error": "Failed to delete post",
		})
		return
	}

	setFlash(c, "Post deleted successfully")
	c.Redirect(http.StatusFound, "/posts")
}

func (a *API) renderPostForm(c *gin.Context, title, action string, post *db.Post, req postCreateRequest, errs map[string]string) {
	categories, err := a.categories.List()
	if err != nil {
		categories = nil
	}

	c.HTML(http.StatusBadRequest, "post_form.html", gin.H{
		"title":      title,
		"action":     action,
		"post":       post,
		"categories": categories,
		"form": gin.H{
			"Title":      req.Title,
			"Content":    req.Content,
			"Status":     req.Status,
			"CategoryID": req.CategoryID,
			"Tags":       req.Tags,
		},
		"errors": errs,
	})
}

func (a *API) renderNotFound(c *gin.Context, message string) {
	c.HTML(http.StatusNotFound, "error.html", gin.H{
		"title": "Not found",
		"error": message,
	})
}

// storeFormImage saves the optional image of a web form submission. fatal
// means a 500 page has already been rendered.
func (a *API) storeFormImage(c *gin.Context, allowedExts []string) (string, map[string]string, bool) {
	file, err := c.FormFile("image")
	if err != nil || file == nil {
		return "", nil, false
	}

	path, err := a.store.SaveImage(file, allowedExts)
	if err != nil {
		errs, fatal := webImageErrors(err)
		if fatal {
			c.HTML(http.StatusInternalServerError, "error.html", gin.H{
				"title": "Error",
				"error": "Failed to store image",
			})
			return "", nil, true
		}
		return "", errs, false
	}
	return path, nil, false
}

func webImageErrors(err error) (map[string]string, bool) {
	switch {
	case errors.Is(err, storage.ErrImageFormat):
		return map[string]string{"image": "The image must be one of the supported formats."}, false
	case errors.Is(err, storage.ErrImageTooLarge):
		return map[string]string{"image": "The image exceeds the size limit."}, false
	case errors.Is(err, storage.ErrImageInvalid):
		return map[string]string{"image": "The image file could not be read."}, false
	default:
		return nil, true
	}
}

func tagNames(tags []db.Tag) string {
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, tag.Name)
	}
	return strings.Join(names, ", ")
}
