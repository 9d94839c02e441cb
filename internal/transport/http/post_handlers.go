package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/vovakirdan/sweatmarket-server/internal/service/posts"
)

// PostHandlers serves the community feed.
type PostHandlers struct {
	posts *posts.Service
	log   *zerolog.Logger
}

// NewPostHandlers creates a new post handlers instance.
func NewPostHandlers(svc *posts.Service, logger *zerolog.Logger) *PostHandlers {
	return &PostHandlers{posts: svc, log: logger}
}

// CommentRequest represents the add-comment request body.
type CommentRequest struct {
	Content string `json:"content" form:"content"`
}

// List returns the feed.
// GET /api/posts
func (h *PostHandlers) List(c *gin.Context) {
	entries, err := h.posts.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, lo.Map(entries, func(e posts.Entry, _ int) PostResponse {
		return postToResponse(e)
	}))
}

// Create publishes a post from a multipart form (caption, optional image).
// POST /api/posts
func (h *PostHandlers) Create(c *gin.Context) {
	uid, _ := currentUserID(c)

	image, release, err := formUpload(c, "image")
	defer release()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid image upload"})
		return
	}

	caption := c.PostForm("caption")
	if caption == "" && image == nil {
		var body struct {
			Caption string `json:"caption"`
		}
		if err := c.ShouldBindJSON(&body); err == nil {
			caption = body.Caption
		}
	}

	post, err := h.posts.Create(c.Request.Context(), uid, caption, image)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	detail, err := h.posts.Get(c.Request.Context(), post.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, postDetailToResponse(detail))
}

// Get returns a post with its comments.
// GET /api/posts/:id
func (h *PostHandlers) Get(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}
	detail, err := h.posts.Get(c.Request.Context(), postID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, postDetailToResponse(detail))
}

// Comment adds a comment to a post.
// POST /api/posts/:id/comments
func (h *PostHandlers) Comment(c *gin.Context) {
	uid, _ := currentUserID(c)
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req CommentRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if _, err := h.posts.Comment(c.Request.Context(), postID, uid, req.Content); err != nil {
		respondError(c, h.log, err)
		return
	}

	detail, err := h.posts.Get(c.Request.Context(), postID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, postDetailToResponse(detail))
}
