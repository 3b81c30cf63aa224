package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/inkpress/internal/service"
	"github.com/inkpress/internal/storage"
)

// apiAuthorID attributes API-created posts; the API surface carries no
// session, matching the original application.
const apiAuthorID = 1

type postCreateRequest struct {
	Title      string `form:"title" binding:"required,max=255"`
	Content    string `form:"content" binding:"required"`
	Status     string `form:"status" binding:"required,oneof=published archived"`
	CategoryID uint   `form:"category_id" binding:"required"`
	Tags       string `form:"tags"`
}

type postUpdateRequest struct {
	Title      *string `form:"title" binding:"omitempty,max=255"`
	Content    *string `form:"content"`
	Status     *string `form:"status" binding:"omitempty,oneof=published archived"`
	CategoryID *uint   `form:"category_id"`
	Tags       *string `form:"tags"`
}

// ListPostsAPI returns every post with category and tags attached.
func (a *API) ListPostsAPI(c *gin.Context) {
	posts, err := a.posts.ListAll()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load posts")
		return
	}
	respondData(c, http.StatusOK, "Posts loaded successfully", posts)
}

// CreatePostAPI validates the multipart form, stores the optional image and
// creates the post with its tag set.
func (a *API) CreatePostAPI(c *gin.Context) {
	var req postCreateRequest
	if err := c.ShouldBind(&req); err != nil {
		respondValidation(c, validationErrors(err))
		return
	}

	imagePath, ok := a.storeUploadedImage(c, storage.CreateImageExts)
	if !ok {
		return
	}

	post, err := a.posts.Create(service.PostInput{
		Title:      req.Title,
		Content:    req.Content,
		Status:     req.Status,
		CategoryID: req.CategoryID,
		UserID:     apiAuthorID,
		Tags:       req.Tags,
		ImagePath:  imagePath,
	})
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			respondValidation(c, map[string]string{"category_id": "The selected category does not exist."})
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to create post")
		return
	}

	respondData(c, http.StatusCreated, "Post created successfully", post)
}

// GetPostAPI returns one post by id.
func (a *API) GetPostAPI(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusNotFound, "Post not found")
		return
	}

	detail, err := a.posts.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			respondError(c, http.StatusNotFound, "Post not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to load post")
		return
	}

	respondData(c, http.StatusOK, "Post found", detail.Post)
}

// UpdatePostAPI applies partial updates: only fields present in the request
// are validated and written.
func (a *API) UpdatePostAPI(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusNotFound, "Post not found")
		return
	}

	var req postUpdateRequest
	if err := c.ShouldBind(&req); err != nil {
		respondValidation(c, validationErrors(err))
		return
	}

	update := service.PostUpdate{
		Title:      req.Title,
		Content:    req.Content,
		Status:     req.Status,
		CategoryID: req.CategoryID,
		Tags:       req.Tags,
	}

	if file, ferr := c.FormFile("image"); ferr == nil && file != nil {
		path, serr := a.store.SaveImage(file, storage.UpdateImageExts)
		if serr != nil {
			a.respondImageError(c, serr)
			return
		}
		update.ImagePath = &path
	}

	post, err := a.posts.Update(id, update)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			respondError(c, http.StatusNotFound, "Post not found")
		case errors.Is(err, service.ErrCategoryNotFound):
			respondValidation(c, map[string]string{"category_id": "The selected category does not exist."})
		default:
			respondError(c, http.StatusInternalServerError, "Failed to update post")
		}
		return
	}

	respondData(c, http.StatusOK, "Post updated successfully", post)
}

// DeletePostAPI removes a post and its image blob.
func (a *API) DeletePostAPI(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusNotFound, "Post not found")
		return
	}

	if err := a.posts.Delete(id); err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			respondError(c, http.StatusNotFound, "Post not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to delete post")
		return
	}

	respondData(c, http.StatusOK, "Post deleted successfully", nil)
}

// ListCategoriesAPI returns all categories.
func (a *API) ListCategoriesAPI(c *gin.Context) {
	categories, err := a.categories.List()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load categories")
		return
	}
	respondData(c, http.StatusOK, "Categories loaded successfully", categories)
}

// storeUploadedImage saves the optional "image" file of the current request.
// The empty path with ok=true means no file was sent; ok=false means a
// response has already been written.
func (a *API) storeUploadedImage(c *gin.Context, allowedExts []string) (string, bool) {
	file, err := c.FormFile("image")
	if err != nil || file == nil {
		return "", true
	}

	path, err := a.store.SaveImage(file, allowedExts)
	if err != nil {
		a.respondImageError(c, err)
		return "", false
	}
	return path, true
}

func (a *API) respondImageError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, storage.ErrImageFormat):
		respondValidation(c, map[string]string{"image": "The image must be one of the supported formats."})
	case errors.Is(err, storage.ErrImageTooLarge):
		respondValidation(c, map[string]string{"image": "The image exceeds the size limit."})
	case errors.Is(err, storage.ErrImageInvalid):
		respondValidation(c, map[string]string{"image": "The image file could not be read."})
	default:
		respondError(c, http.StatusInternalServerError, "Failed to store image")
	}
}
