package main

import (
	"fmt"
	"strings"
	"time"

	"everlove/config"
	"everlove/handlers/api"
	"everlove/handlers/web"
	"everlove/middleware"
	"everlove/storage"
	"everlove/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/template/html/v2"
	"github.com/gofiber/websocket/v2"
)

func main() {
	utils.Log.Info("Initializing Everlove...")

	// Load configuration
	cfg, err := config.LoadConfig("config.toml")
	if err != nil {
		utils.Log.Error("Failed to load config: %v", err)
		return
	}

	// Initialize i18n system
	if err := utils.InitI18n(cfg.Server.LocalesDir); err != nil {
		utils.Log.Error("Failed to initialize i18n: %v", err)
	}

	// Open the database and seed the read-only collections
	db, err := storage.InitDB(cfg.Server.DataDir)
	if err != nil {
		utils.Log.Error("Failed to open database: %v", err)
		return
	}
	defer db.Close()

	if err := storage.Seed(db); err != nil {
		utils.Log.Error("Failed to seed database: %v", err)
		return
	}

	userStorage, err := storage.NewUserStorage(cfg.Server.DataDir)
	if err != nil {
		utils.Log.Error("Failed to initialize user storage: %v", err)
		return
	}

	letterStore := storage.NewLetterStore(db)
	templateStore := storage.NewTemplateStore(db)
	contentStore := storage.NewContentStore(db)
	forumStore := storage.NewForumStore(db)

	store := session.New(session.Config{
		Expiration:     cfg.SessionTTL(),
		CookieSecure:   cfg.SSL.Enabled,
		CookieHTTPOnly: true,
	})

	// Initialize template engine with custom functions
	engine := html.New(cfg.Server.TemplatesDir, ".html")

	engine.AddFunc("lower", strings.ToLower)
	engine.AddFunc("trim", strings.TrimSpace)

	engine.AddFunc("t", func(messageID string) string {
		return utils.T(utils.Localizer, messageID)
	})

	engine.AddFunc("formatDate", func(t time.Time) string {
		return t.Format("Jan 02, 2006 15:04")
	})

	// Initialize Fiber with template engine
	app := fiber.New(fiber.Config{
		Views:       engine,
		ViewsLayout: "layouts/main",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := err.Error()

			if appErr, ok := err.(*utils.AppError); ok {
				code = appErr.Code
				message = appErr.UserMessage()
				utils.Log.Error("Application error: %v", appErr)
			} else if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			if isAPIRequest(c) {
				return c.Status(code).JSON(fiber.Map{
					"error": message,
				})
			}

			return c.Status(code).Render("error", fiber.Map{
				"Error": message,
				"Code":  code,
			})
		},
	})

	// Global middleware
	app.Use(recover.New())  // Recover from panics
	app.Use(logger.New())   // Request logging
	app.Use(compress.New()) // Response compression
	app.Use(helmet.New(helmet.Config{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "SAMEORIGIN",
		ReferrerPolicy:        "no-referrer",
		ContentSecurityPolicy: "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline';",
	}))

	app.Use(middleware.LocaleMiddleware())
	app.Use(middleware.RateLimiter(cfg.RateLimit.Requests, time.Duration(cfg.RateLimit.Seconds)*time.Second))
	app.Use(middleware.CSRFProtection(csrfConfig()))

	// Static assets
	app.Static("/assets", "./assets", fiber.Static{
		Compress:      true,
		CacheDuration: 24 * time.Hour,
	})

	// Handlers
	hub := api.NewNotificationHub()
	letterHandler := api.NewLetterHandler(letterStore, hub)
	inboxHandler := api.NewInboxHandler(hub)
	templateHandler := api.NewTemplateHandler(templateStore)
	contentHandler := api.NewContentHandler(contentStore)
	forumHandler := api.NewForumHandler(forumStore)
	chatHandler := api.NewChatHandler(&cfg.Chat)
	i18nHandler := &api.I18nHandler{}

	authHandler := web.NewAuthHandler(store, cfg, userStorage)
	pageHandler := web.NewPageHandler()

	// Public routes
	app.Get("/login", authHandler.ShowLogin)
	app.Post("/login", authHandler.HandleLogin)
	app.Get("/register", authHandler.ShowRegister)
	app.Post("/register", authHandler.HandleRegister)
	app.Get("/logout", authHandler.HandleLogout)

	// Protected routes group
	protected := app.Group("", api.SessionMiddleware(store, cfg))

	// Main web routes
	protected.Get("/", pageHandler.HandleInbox)
	protected.Get("/inbox", pageHandler.HandleInbox)
	protected.Get("/compose", pageHandler.HandleCompose)

	// API routes
	apiRoutes := protected.Group("/api")
	writeLimit := middleware.WriteRateLimiter(cfg.RateLimit.Requests, time.Duration(cfg.RateLimit.Seconds)*time.Second)
	{
		// Letter routes
		apiRoutes.Get("/letters", letterHandler.ListLetters)
		apiRoutes.Post("/letters", writeLimit, letterHandler.CreateLetter)
		apiRoutes.Get("/letters/:id", letterHandler.GetLetter)
		apiRoutes.Put("/letters/:id", writeLimit, letterHandler.UpdateLetter)
		apiRoutes.Delete("/letters/:id", writeLimit, letterHandler.DeleteLetter)

		// Inbox routes
		apiRoutes.Get("/inbox", inboxHandler.GetInbox)
		apiRoutes.Get("/inbox/search", inboxHandler.Search)
		apiRoutes.Post("/inbox/refresh", inboxHandler.Refresh)
		apiRoutes.Post("/inbox/:id/read", inboxHandler.MarkRead)

		// Template routes
		apiRoutes.Get("/templates", templateHandler.GetTemplates)
		apiRoutes.Get("/templates/:id", templateHandler.GetTemplate)

		// Content library routes
		apiRoutes.Get("/quotes", contentHandler.GetQuotes)
		apiRoutes.Get("/books", contentHandler.GetBooks)
		apiRoutes.Get("/songs", contentHandler.GetSongs)

		// Forum routes
		apiRoutes.Get("/forum/posts", forumHandler.GetPosts)
		apiRoutes.Post("/forum/posts", forumHandler.CreatePost)
		apiRoutes.Get("/forum/posts/:id", forumHandler.GetPost)
		apiRoutes.Delete("/forum/posts/:id", forumHandler.DeletePost)
		apiRoutes.Post("/forum/posts/:id/like", forumHandler.LikePost)
		apiRoutes.Post("/forum/posts/:id/comments", forumHandler.AddComment)

		// Companion chat routes
		apiRoutes.Post("/chat", chatHandler.HandleChat)
		apiRoutes.Get("/chat/history", chatHandler.GetHistory)
		apiRoutes.Delete("/chat/history", chatHandler.ClearHistory)

		// Notification stream (SSE)
		apiRoutes.Get("/notifications/stream", hub.HandleSSE)

		// i18n routes
		apiRoutes.Get("/i18n/:lang", i18nHandler.GetTranslations)
	}

	// WebSocket notification stream
	protected.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	protected.Get("/ws/notifications", websocket.New(hub.HandleWebSocket))

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// 404 Handler for undefined routes
	app.Use(func(c *fiber.Ctx) error {
		if isAPIRequest(c) {
			return c.Status(404).JSON(fiber.Map{
				"error": "Not found",
			})
		}
		return c.Status(404).Render("error", fiber.Map{
			"Error": "Page not found",
			"Code":  404,
		})
	})

	// Start server
	if cfg.SSL.Enabled {
		utils.Log.Info("Starting HTTPS server on port %d...", cfg.SSL.Port)
		if err := app.ListenTLS(fmt.Sprintf(":%d", cfg.SSL.Port), cfg.SSL.CertFile, cfg.SSL.KeyFile); err != nil {
			utils.Log.Error("Error starting server: %v", err)
		}
		return
	}

	utils.Log.Info("Starting server on port %d...", cfg.Server.Port)
	if err := app.Listen(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
		utils.Log.Error("Error starting server: %v", err)
	}
}

// csrfConfig skips CSRF checks for bearer-token API calls and the
// websocket upgrade; the cookie-session form surface stays protected.
func csrfConfig() middleware.CSRFConfig {
	cfg := middleware.DefaultCSRFConfig()
	cfg.Skipper = func(c *fiber.Ctx) bool {
		if strings.HasPrefix(c.Get("Authorization"), "Bearer ") {
			return true
		}
		return strings.HasPrefix(c.Path(), "/ws")
	}
	return cfg
}

// Helper function to determine if request is an API request
func isAPIRequest(c *fiber.Ctx) bool {
	if c == nil {
		return false
	}

	path := c.Path()
	return len(path) >= 4 && path[:4] == "/api"
}
