package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/sweatmarket-server/internal/service/profile"
)

// ProfileHandlers serves the signed-in user's profile.
type ProfileHandlers struct {
	profiles *profile.Service
	log      *zerolog.Logger
}

// NewProfileHandlers creates a new profile handlers instance.
func NewProfileHandlers(profiles *profile.Service, logger *zerolog.Logger) *ProfileHandlers {
	return &ProfileHandlers{profiles: profiles, log: logger}
}

// Get returns the profile.
// GET /api/profile
func (h *ProfileHandlers) Get(c *gin.Context) {
	uid, _ := currentUserID(c)
	user, err := h.profiles.Get(c.Request.Context(), uid)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(user))
}

// Update edits the profile from a JSON body or a multipart form with an optional avatar file.
// PUT /api/profile
func (h *ProfileHandlers) Update(c *gin.Context) {
	uid, _ := currentUserID(c)

	var in profile.Input
	if err := c.ShouldBind(&in); err != nil {
		h.log.Debug().Err(err).Msg("invalid profile request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	avatar, release, err := formUpload(c, "avatar")
	defer release()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid avatar upload"})
		return
	}

	user, err := h.profiles.Update(c.Request.Context(), uid, in, avatar)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(user))
}
