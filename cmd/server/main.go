package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/AhmedShehab1/computational-wave-lab-sub001/internal/capability"
	"github.com/AhmedShehab1/computational-wave-lab-sub001/internal/config"
	"github.com/AhmedShehab1/computational-wave-lab-sub001/internal/handler"
	"github.com/AhmedShehab1/computational-wave-lab-sub001/internal/middleware"
	"github.com/AhmedShehab1/computational-wave-lab-sub001/internal/pool"
	"github.com/AhmedShehab1/computational-wave-lab-sub001/internal/service"
	"github.com/AhmedShehab1/computational-wave-lab-sub001/internal/spectral"
	"github.com/AhmedShehab1/computational-wave-lab-sub001/internal/store"
	"github.com/AhmedShehab1/computational-wave-lab-sub001/internal/worker"
	ws "github.com/AhmedShehab1/computational-wave-lab-sub001/internal/websocket"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Probe hardware once; the record is passed down explicitly.
	caps := capability.Detect()
	log.Printf("Detected %d logical CPUs, vector extension %s", caps.LogicalCPUs, caps.Vector)

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Job store: Redis when reachable, in-memory otherwise.
	var jobStore store.JobStore
	var rateLimiter *middleware.RateLimiter
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis not available, using in-memory job store: %v", err)
		jobStore = store.NewMemory()
		rateLimiter = middleware.NewRateLimiter(nil)
	} else {
		jobStore = store.NewRedis(redisClient)
		rateLimiter = middleware.NewRateLimiter(redisClient)
	}

	// Initialize validator
	validate := validator.New()

	// Initialize WebSocket hub
	hub := ws.NewHub()
	go hub.Run()

	// Compute engines and the job pool
	engine := spectral.NewEngine(caps, cfg.Compute.MaxNativeElements)
	jobRunner := worker.New(engine, validate, worker.Options{
		MaxImageDimension: cfg.Compute.MaxImageDimension,
		DefaultBackend:    cfg.Compute.DefaultBackend,
	})

	poolSize := cfg.Pool.Size
	if poolSize <= 0 {
		poolSize = caps.DefaultPoolSize()
	}
	jobPool := pool.New(pool.Config{
		PoolSize:      poolSize,
		MaxQueueDepth: cfg.Pool.MaxQueueDepth,
		IdleTimeout:   cfg.Pool.IdleTimeout,
		WarmupOnLoad:  cfg.Pool.WarmupOnLoad,
	}, jobRunner)
	log.Printf("Job pool ready: %d units, queue depth %d", poolSize, cfg.Pool.MaxQueueDepth)

	// Services and handlers
	jobService := service.NewJobService(jobStore, jobPool, hub)
	jobHandler := handler.NewJobHandler(jobService, validate)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    50 * 1024 * 1024, // 50MB: raw image payloads
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		queued, busy, units := jobPool.Stats()
		return c.JSON(fiber.Map{
			"status": "ok",
			"pool": fiber.Map{
				"queued": queued,
				"busy":   busy,
				"units":  units,
			},
		})
	})

	// API routes
	api := app.Group("/api", authMiddleware.Authenticate())

	jobs := api.Group("/jobs")
	perMin := cfg.RateLimit.SubmitPerMin
	jobs.Post("/decode", rateLimiter.SubmitLimit("decode", perMin), jobHandler.SubmitDecode)
	jobs.Post("/histogram", rateLimiter.SubmitLimit("histogram", perMin), jobHandler.SubmitHistogram)
	jobs.Post("/mix", rateLimiter.SubmitLimit("mix", perMin), jobHandler.SubmitMix)
	jobs.Post("/beam", rateLimiter.SubmitLimit("beam", perMin), jobHandler.SubmitBeam)
	jobs.Get("/status/:jobId", jobHandler.Status)
	jobs.Get("/result/:jobId", jobHandler.Result)
	jobs.Post("/cancel/:jobId", jobHandler.Cancel)

	// WebSocket routes
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/jobs/:jobId", websocket.New(func(c *websocket.Conn) {
		jobID := c.Params("jobId")
		hub.HandleConnection(c, jobID)
	}))

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")
		jobPool.Close()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// Start server
	addr := ":" + cfg.Server.Port
	log.Printf("Server starting on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "SERVICE_ERROR",
			"message": message,
		},
	})
}
