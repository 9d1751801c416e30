package router

import (
	"fmt"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/nano-comments/backend/internal/handlers"
	"github.com/anonto42/nano-comments/backend/internal/logger"
	"github.com/anonto42/nano-comments/backend/internal/middleware"
	"github.com/anonto42/nano-comments/backend/internal/realtime"
	"github.com/anonto42/nano-comments/backend/internal/repositories"
	"github.com/anonto42/nano-comments/backend/internal/services"
	"github.com/anonto42/nano-comments/backend/pkg/config"
	"github.com/anonto42/nano-comments/backend/pkg/relay"
	"github.com/labstack/echo/v4"
)

// Dependencies are the process-wide resources the routes are built on.
type Dependencies struct {
	Config *config.Config
	DB     *config.DB
	Relay  relay.Relay
	// FirebaseAuth is set when AUTH_PROVIDER=firebase.
	FirebaseAuth *auth.Client
}

// SetupRoutes migrates the schema, wires repositories, services and the realtime gateway, and
// registers every route. The returned gateway must be started by the caller.
func SetupRoutes(e *echo.Echo, deps Dependencies) (*realtime.Gateway, error) {
	cfg := deps.Config
	db := deps.DB.SQL

	if err := repositories.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	logger.Info("Auto-migrations completed")

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(db)
	commentRepo := repositories.NewPostgresCommentRepository(db)
	notificationRepo := repositories.NewPostgresNotificationRepository(db)
	var postRepo repositories.PostRepository = repositories.NewPostgresPostRepository(db)
	if cfg.PostStore == "mongo" {
		postRepo = repositories.NewMongoPostRepository(deps.DB.Mongo.Database(cfg.MongoDB))
	}

	// --- Initialize Services ---
	notificationService := services.NewNotificationService(notificationRepo)
	dispatcher := services.NewNotificationDispatcher(notificationRepo, commentRepo, userRepo, deps.Relay)
	commentService := services.NewCommentService(commentRepo, postRepo, dispatcher)
	gateway := realtime.NewGateway(notificationService, deps.Relay)

	// --- Authentication ---
	var (
		authMiddleware echo.MiddlewareFunc
		identify       realtime.IdentityResolver
	)
	switch cfg.AuthProvider {
	case "firebase":
		if deps.FirebaseAuth == nil {
			return nil, fmt.Errorf("firebase auth client is required when AUTH_PROVIDER=firebase")
		}
		authMiddleware = middleware.FirebaseAuthMiddleware(deps.FirebaseAuth, userRepo)
		identify = realtime.FirebaseIdentity(deps.FirebaseAuth, userRepo, cfg.WSAllowQueryUserID)
	default:
		authMiddleware = middleware.JWTAuthMiddleware(cfg.JWTSecret)
		identify = realtime.JWTIdentity(cfg.JWTSecret, cfg.WSAllowQueryUserID)
	}

	// Health checks - always accessible
	healthHandler := handlers.NewHealthHandler(map[string]handlers.Pinger{
		"database": deps.DB,
		"relay":    deps.Relay,
	})
	healthHandler.RegisterHealthRoutes(e)

	// Realtime gateway
	wsHandler := realtime.NewWebSocketHandler(gateway, identify, realtime.WebSocketOptions{
		AllowedOrigin:   cfg.CORSOrigin,
		RejectAnonymous: cfg.WSRejectAnonymous,
	})
	e.GET("/ws", wsHandler.Handle)

	commentHandler := handlers.NewCommentHandler(commentService)
	postHandler := handlers.NewPostHandler(postRepo)
	notificationHandler := handlers.NewNotificationHandler(notificationService, dispatcher)
	userHandler := handlers.NewUserHandler(userRepo)

	// --- Public routes ---
	public := e.Group("/api/v1")
	commentHandler.RegisterPublicRoutes(public)
	postHandler.RegisterPublicRoutes(public)

	// --- Protected routes ---
	api := e.Group("/api/v1", authMiddleware)
	logger.Info("Authentication middleware applied", "provider", cfg.AuthProvider)

	commentHandler.RegisterCommentRoutes(api)
	postHandler.RegisterPostRoutes(api)
	notificationHandler.RegisterNotificationRoutes(api)
	userHandler.RegisterProfileRoutes(api)
	if cfg.IsDevelopment() {
		notificationHandler.RegisterTestRoutes(api)
		logger.Info("Development test routes configured")
	}

	logger.Info("All routes configured")
	return gateway, nil
}
