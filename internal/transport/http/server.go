package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/sweatmarket-server/internal/auth"
	"github.com/vovakirdan/sweatmarket-server/internal/config"
	"github.com/vovakirdan/sweatmarket-server/internal/core"
	"github.com/vovakirdan/sweatmarket-server/internal/media"
	"github.com/vovakirdan/sweatmarket-server/internal/service/chat"
	"github.com/vovakirdan/sweatmarket-server/internal/service/posts"
	"github.com/vovakirdan/sweatmarket-server/internal/service/profile"
	"github.com/vovakirdan/sweatmarket-server/internal/service/wallet"
)

// Dependencies are the services the HTTP layer routes to.
type Dependencies struct {
	Config    config.Config
	Auth      *auth.Service
	Profiles  *profile.Service
	Posts     *posts.Service
	Chat      *chat.Service
	Wallet    *wallet.Service
	Registry  *core.Registry
	Publisher *core.Publisher
	Media     *media.Storage
	Logger    *zerolog.Logger
}

// NewServer builds an HTTP server with all routes.
func NewServer(deps Dependencies) *stdhttp.Server {
	return &stdhttp.Server{
		Addr:              deps.Config.Addr,
		Handler:           NewRouter(deps),
		ReadHeaderTimeout: deps.Config.ReadHeaderTimeout,
	}
}

// NewRouter builds the gin engine serving the REST API, the chat websocket and uploaded media.
func NewRouter(deps Dependencies) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	cfg := deps.Config
	logger := deps.Logger

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))
	router.Use(IdentityMiddleware(deps.Auth, cfg.SessionCookie, logger))
	router.MaxMultipartMemory = cfg.MaxUploadBytes

	authHandlers := NewAuthHandlers(deps.Auth, cfg.SessionCookie, cfg.TokenTTL, logger)
	profileHandlers := NewProfileHandlers(deps.Profiles, logger)
	postHandlers := NewPostHandlers(deps.Posts, logger)
	chatHandlers := NewChatHandlers(deps.Chat, logger)
	walletHandlers := NewWalletHandlers(deps.Wallet, cfg.DemoMode, logger)
	wsHandler := NewWSHandler(deps.Chat, deps.Registry, deps.Publisher, core.SessionConfig{
		IdleTimeout:   cfg.WSIdleTimeout,
		WriteTimeout:  cfg.WSWriteTimeout,
		RateLimit:     cfg.WSRateLimit,
		EnforceSender: cfg.EnforceSender,
	}, cfg.MaxMessageBytes, logger)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(stdhttp.StatusOK, gin.H{"ok": true})
	})
	if deps.Media != nil {
		router.Static(cfg.PublicPrefix, deps.Media.Dir())
	}

	api := router.Group("/api")
	{
		api.POST("/signup", authHandlers.Signup)
		api.POST("/login", authHandlers.Login)
		api.POST("/logout", authHandlers.Logout)

		api.GET("/posts", postHandlers.List)
		api.GET("/posts/:id", postHandlers.Get)
		api.GET("/dex", walletHandlers.Book)

		// wallet endpoints check auth themselves so demo mode works anonymously
		api.GET("/wallet", walletHandlers.Wallet)
		api.POST("/dex/orders", walletHandlers.PlaceOrder)

		protected := api.Group("")
		protected.Use(RequireAuth())
		{
			protected.GET("/me", authHandlers.Me)
			protected.GET("/profile", profileHandlers.Get)
			protected.PUT("/profile", profileHandlers.Update)

			protected.POST("/posts", postHandlers.Create)
			protected.POST("/posts/:id/comments", postHandlers.Comment)

			protected.GET("/chat", chatHandlers.List)
			protected.POST("/chat/start", chatHandlers.Start)
			protected.GET("/chat/:room_id", chatHandlers.Open)
			protected.POST("/chat/:room_id/image", chatHandlers.SendImage)
		}
	}

	router.GET("/ws/chat/:room_id", wsHandler.Serve)

	return router
}
