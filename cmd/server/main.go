package main

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"

	"github.com/saksham310/CommunityNest-sub000/internal/cache"
	"github.com/saksham310/CommunityNest-sub000/internal/config"
	"github.com/saksham310/CommunityNest-sub000/internal/handlers"
	"github.com/saksham310/CommunityNest-sub000/internal/handlers/ws"
	"github.com/saksham310/CommunityNest-sub000/internal/middleware"
	"github.com/saksham310/CommunityNest-sub000/internal/repository"
	"github.com/saksham310/CommunityNest-sub000/internal/service"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration:", err)
	}

	app := fiber.New(fiber.Config{
		AppName: "CommunityNest Messaging",
	})

	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PATCH, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	db, err := repository.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	redisCache := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err := redisCache.Ping(); err != nil {
		log.Printf("WARNING: Redis connection failed: %v. Running without cache.", err)
		redisCache = nil
	} else {
		log.Println("Redis cache connected successfully")
	}

	presenceCache := cache.NewPresenceCache(redisCache)
	conversationCache := cache.NewConversationCache(redisCache)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	groupReadStateRepo := repository.NewGroupReadStateRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Services
	userService := service.NewUserService(userRepo, cfg.StoreTimeout)
	messageService := service.NewMessageService(messageRepo, groupRepo, groupReadStateRepo, cfg.StoreTimeout, cfg.MaxMessageLength)
	conversationService := service.NewConversationService(messageRepo, cfg.StoreTimeout)
	groupService := service.NewGroupService(groupRepo, groupReadStateRepo, cfg.StoreTimeout)
	notificationService := service.NewNotificationService(notificationRepo, cfg.StoreTimeout)

	// Hub and live delivery
	hub := ws.NewHub(presenceCache, cfg.PingInterval, cfg.PongTimeout)
	notificationService.SetPusher(hub)

	// Handlers
	wsHandler := handlers.NewWebSocketHandler(hub, cfg.JWTSecret, messageService, userService, groupService, conversationService, notificationService, conversationCache)
	messageHandler := handlers.NewMessageHandler(messageService, conversationService, groupService, notificationService, conversationCache, hub)
	groupHandler := handlers.NewGroupHandler(groupService, messageService, notificationService, conversationCache, hub)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	api := app.Group("/api", middleware.OriginAllowed(cfg.AllowedOrigins))
	protected := api.Group("/", middleware.AuthRequired(cfg.JWTSecret), limiter.New(limiter.Config{
		Max:        300,
		Expiration: time.Minute,
	}))

	protected.Get("/messages/:userId", messageHandler.GetMessages)
	protected.Post("/messages", messageHandler.SendMessage)
	protected.Get("/conversation-partners", messageHandler.GetConversationPartners)
	protected.Post("/conversation-partners/:targetId/read", messageHandler.MarkConversationRead)
	protected.Get("/search", messageHandler.Search)

	protected.Get("/group", groupHandler.GetMyGroups)
	protected.Post("/group", groupHandler.CreateGroup)
	protected.Get("/group/:id", groupHandler.GetGroup)
	protected.Get("/group/:id/messages", groupHandler.GetGroupMessages)
	protected.Post("/group/:id/messages", groupHandler.SendGroupMessage)
	protected.Get("/group/:id/members", groupHandler.GetGroupMembers)
	protected.Post("/group/:id/members", groupHandler.AddMember)
	protected.Delete("/group/:id/members/:userId", groupHandler.RemoveMember)
	protected.Post("/group/:id/read", groupHandler.MarkGroupRead)

	protected.Get("/notifications", notificationHandler.GetNotifications)
	protected.Get("/notifications/unread-count", notificationHandler.GetUnreadCount)
	protected.Patch("/notifications/:id/read", notificationHandler.MarkNotificationRead)
	protected.Post("/notifications", notificationHandler.CreateNotification)

	// WebSocket route; the handshake happens in-band as the first event, so
	// only the upgrade itself is gated here.
	app.Use("/ws", middleware.OriginAllowed(cfg.AllowedOrigins), func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(wsHandler.HandleWebSocket))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":      "ok",
			"connections": hub.Count(),
		})
	})

	log.Printf("Starting server on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal("Server failed to start:", err)
	}
}
