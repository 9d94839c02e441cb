package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/sweatmarket-server/internal/auth"
	"github.com/vovakirdan/sweatmarket-server/internal/core"
	"github.com/vovakirdan/sweatmarket-server/internal/media"
	"github.com/vovakirdan/sweatmarket-server/internal/service/posts"
	"github.com/vovakirdan/sweatmarket-server/internal/service/profile"
	"github.com/vovakirdan/sweatmarket-server/internal/service/wallet"
	"github.com/vovakirdan/sweatmarket-server/internal/validation"
)

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError maps a service error onto a status code and writes it.
// Unknown errors are logged and hidden behind a 500.
func respondError(c *gin.Context, logger *zerolog.Logger, err error) {
	status, msg := classify(err)
	if status == http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	}
	c.JSON(status, ErrorResponse{Error: msg})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, validation.ErrInvalid):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, core.ErrAuthRequired):
		return http.StatusUnauthorized, "authentication required"
	case errors.Is(err, auth.ErrUserExists):
		return http.StatusConflict, "user already exists"
	case errors.Is(err, auth.ErrEmailExists):
		return http.StatusConflict, "email already registered"
	case errors.Is(err, core.ErrSelfRoom):
		return http.StatusBadRequest, core.ErrSelfRoom.Error()
	case errors.Is(err, core.ErrNotParticipant):
		return http.StatusForbidden, core.ErrNotParticipant.Error()
	case errors.Is(err, core.ErrUserNotFound),
		errors.Is(err, profile.ErrUserNotFound),
		errors.Is(err, wallet.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, core.ErrRoomNotFound):
		return http.StatusNotFound, "room not found"
	case errors.Is(err, posts.ErrPostNotFound):
		return http.StatusNotFound, "post not found"
	case errors.Is(err, media.ErrEmptyFile),
		errors.Is(err, media.ErrUnsupportedType):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, media.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, err.Error()
	case errors.Is(err, core.ErrPersistence):
		return http.StatusInternalServerError, core.ErrPersistence.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
