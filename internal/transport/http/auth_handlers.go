package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/sweatmarket-server/internal/auth"
)

// AuthHandlers provides signup, login and session endpoints.
type AuthHandlers struct {
	authService *auth.Service
	cookieName  string
	cookieTTL   time.Duration
	log         *zerolog.Logger
}

// NewAuthHandlers creates a new auth handlers instance.
func NewAuthHandlers(authService *auth.Service, cookieName string, cookieTTL time.Duration, logger *zerolog.Logger) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		cookieName:  cookieName,
		cookieTTL:   cookieTTL,
		log:         logger,
	}
}

// LoginRequest represents the login request body.
// Identifier is a username or an email; Username is accepted as an alias.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Username   string `json:"username"`
	Password   string `json:"password" binding:"required"`
}

// Signup handles account creation.
// POST /api/signup
func (h *AuthHandlers) Signup(c *gin.Context) {
	var req auth.SignupInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid signup request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	sess, err := h.authService.Signup(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.setSessionCookie(c, sess.Token)
	c.JSON(http.StatusCreated, AuthResponse{Token: sess.Token, User: userToResponse(sess.User)})
}

// Login handles sign-in by username or email.
// POST /api/login
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid login request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	identifier := req.Identifier
	if identifier == "" {
		identifier = req.Username
	}

	sess, err := h.authService.Login(c.Request.Context(), identifier, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info().Int64("user_id", sess.User.ID).Msg("user logged in")
	h.setSessionCookie(c, sess.Token)
	c.JSON(http.StatusOK, AuthResponse{Token: sess.Token, User: userToResponse(sess.User)})
}

// Logout clears the session cookie.
// POST /api/logout
func (h *AuthHandlers) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Me returns the signed-in user.
// GET /api/me
func (h *AuthHandlers) Me(c *gin.Context) {
	uid, _ := currentUserID(c)
	user, err := h.authService.User(c.Request.Context(), uid)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(user))
}

func (h *AuthHandlers) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, token, int(h.cookieTTL.Seconds()), "/", "", false, true)
}
