package server

import (
	"log"

	"ai-chat-be/internal/bootstrap"
	"ai-chat-be/internal/config"
	"ai-chat-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	// Initialize Fiber App
	app := fiber.New(fiber.Config{
		BodyLimit: 1 * 1024 * 1024, // 1MB; chat payloads are small
	})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type",
	}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware())

	// Routes
	registerRoutes(app, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("✅ Server is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	api := app.Group("/api")

	c.ChatController.RegisterRoutes(api)
	c.EventsHandler.RegisterRoutes(api)
}
