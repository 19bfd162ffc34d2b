// Package server contains the HTTP, GraphQL and WebSocket surface of the
// application.
package server

import (
	"context"
	"fmt"

	"snapfeed/internal/auth"
	"snapfeed/internal/cache"
	"snapfeed/internal/config"
	"snapfeed/internal/database"
	appgraphql "snapfeed/internal/graphql"
	"snapfeed/internal/middleware"
	"snapfeed/internal/models"
	"snapfeed/internal/notifications"
	"snapfeed/internal/repository"
	"snapfeed/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/graphql-go/graphql"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers.
type Server struct {
	config      *config.Config
	db          *gorm.DB
	redis       *redis.Client
	app         *fiber.App
	shutdownCtx context.Context
	shutdownFn  context.CancelFunc
	tokens      *auth.TokenService
	userRepo    repository.UserRepository
	postRepo    repository.PostRepository
	images      *service.ImageStore
	hub         *notifications.Hub
	authService *service.AuthService
	feedService *service.FeedService
	schema      graphql.Schema
}

// NewServer creates a server instance with all dependencies.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized
// dependencies. Tests use this with an in-memory database and no Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	server := &Server{
		config:   cfg,
		db:       db,
		redis:    redisClient,
		tokens:   auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL),
		userRepo: repository.NewUserRepository(db),
		postRepo: repository.NewPostRepository(db),
		images:   service.NewImageStore(cfg),
		hub:      notifications.NewHub(),
	}

	server.authService = service.NewAuthService(server.userRepo, server.tokens)
	server.feedService = service.NewFeedService(server.postRepo, server.images, server.hub, cfg.PageSize)

	schema, err := appgraphql.NewResolver(server.authService, server.feedService).BuildSchema()
	if err != nil {
		return nil, fmt.Errorf("schema construction failed: %w", err)
	}
	server.schema = schema

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app.
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context middleware to propagate request ID downstream
	app.Use(middleware.ContextMiddleware())

	// Prometheus metrics
	prom := fiberprometheus.New("snapfeed")
	prom.RegisterAt(app, "/metrics")
	app.Use(prom.Middleware)

	// Structured logging (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))

	// Identity gate: attaches the verified identity or lets the request
	// proceed anonymously. Enforcement happens per handler.
	app.Use(middleware.AuthContext(s.tokens))
}

// SetupRoutes configures all routes for the application.
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health", s.HealthCheck)

	// Stored image artifacts
	app.Static("/images", s.images.Dir())

	authRoutes := app.Group("/auth")
	authRoutes.Put("/signup", s.Signup)
	authRoutes.Post("/login", s.Login)

	feed := app.Group("/feed")
	feed.Get("/posts", s.GetPosts)
	feed.Post("/posts", s.CreatePost)
	feed.Get("/post/:id", s.GetPost)
	feed.Put("/post/:id", s.UpdatePost)
	feed.Delete("/post/:id", s.DeletePost)
	feed.Get("/events", s.FeedEventsHandler())

	app.Put("/post-image", s.UploadPostImage)

	app.Post("/graphql", s.GraphQL)
}

// HealthCheck reports process and dependency health.
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(c.Context()); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(c.Context()).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
	})
}

// App builds (once) and returns the configured fiber application.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}

	app := fiber.New(fiber.Config{
		AppName:   "Snapfeed API",
		BodyLimit: (s.config.MaxUploadMB + 1) * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if models.StatusOf(err) == fiber.StatusInternalServerError {
				middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err)
			}
			return models.RespondWithError(c, err)
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Start runs the server until Shutdown is called.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := s.App()
	s.images.StartWorker(ctx)

	middleware.Logger.Info("server starting", "port", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Warn("error shutting down HTTP server", "error", err)
		}
	}

	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			middleware.Logger.Warn("error shutting down feed hub", "error", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Warn("error closing sql DB", "error", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Warn("error closing redis", "error", rerr)
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
