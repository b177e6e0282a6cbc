package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	swagger "github.com/go-swagno/swagno-fiber/swagger"
	"github.com/orbital-guard/sentinel/internal/alert"
	"github.com/orbital-guard/sentinel/internal/api/docs"
	"github.com/orbital-guard/sentinel/internal/api/handler"
	"github.com/orbital-guard/sentinel/internal/api/middleware"
	"github.com/orbital-guard/sentinel/internal/engine"
	"github.com/orbital-guard/sentinel/internal/monitor"
	"github.com/orbital-guard/sentinel/internal/registry"
	"github.com/orbital-guard/sentinel/internal/ws"
)

type Dependencies struct {
	Registry        *registry.Registry
	Engine          *engine.Engine
	Feed            monitor.Feed
	MonitorInterval time.Duration
}

type Router struct {
	app        *fiber.App
	logger     *slog.Logger
	deps       *Dependencies
	wsHub      *ws.Hub
	session    *monitor.Session
	loop       *monitor.Loop
	cancelHub  context.CancelFunc
	cancelLoop context.CancelFunc
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "Station Sentinel API",
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Swagger documentation
	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	// Health check endpoints
	healthHandler := handler.NewHealthHandler()
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	// Prometheus metrics
	r.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Only configure detection routes if dependencies were provided
	if r.deps != nil {
		r.session = monitor.NewSession()
		alerts := alert.NewGenerator(r.deps.Registry)

		// WebSocket hub, greets new clients with the monitored object list
		r.wsHub = ws.NewHub(r.deps.Registry.DisplayNames(), r.logger)
		hubCtx, hubCancel := context.WithCancel(context.Background())
		r.cancelHub = hubCancel
		go r.wsHub.Run(hubCtx)

		// Monitoring loop, broadcasts detection results while the session is active
		r.loop = monitor.NewLoop(r.session, r.deps.Feed, alerts, r.wsHub, r.deps.MonitorInterval, r.logger)
		loopCtx, loopCancel := context.WithCancel(context.Background())
		r.cancelLoop = loopCancel
		go r.loop.Run(loopCtx)

		// Detection handler
		detectionHandler := handler.NewDetectionHandler(r.deps.Engine, alerts, r.session, r.deps.Registry, r.logger)

		// API routes
		apiGroup := r.app.Group("/api")
		apiGroup.Get("/status", detectionHandler.Status)
		apiGroup.Post("/upload_detection", detectionHandler.Upload)

		// WebSocket endpoint
		r.app.Get("/ws", ws.UpgradeMiddleware(), ws.Handler(r.wsHub, r.session))
	}
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	// Stop monitoring loop
	if r.cancelLoop != nil {
		r.cancelLoop()
	}

	// Stop WebSocket hub
	if r.cancelHub != nil {
		r.cancelHub()
	}

	return r.app.Shutdown()
}
