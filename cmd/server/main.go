package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron"

	config "github.com/crosspost-hq/crosspost/configs"
	"github.com/crosspost-hq/crosspost/internal/api/handlers"
	"github.com/crosspost-hq/crosspost/internal/api/middleware"
	job "github.com/crosspost-hq/crosspost/internal/jobs"
	"github.com/crosspost-hq/crosspost/internal/queue"
	"github.com/crosspost-hq/crosspost/internal/repository"
	"github.com/crosspost-hq/crosspost/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisURI})
	defer rdb.Close()

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return origin == cfg.FrontendURL
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	socialAccountRepo := repository.NewSocialAccountRepository(db)
	publicationRepo := repository.NewPublicationRepository(db)

	platforms := service.NewPlatformRegistry(*cfg)
	flowStore := service.NewRedisFlowStore(rdb)
	notifier := service.NewWebhookNotifier(cfg.WebhookURL)

	oauthService := service.NewOAuthService(platforms, flowStore)
	tokenService := service.NewTokenService(*cfg, socialAccountRepo, oauthService)
	accountService := service.NewAccountService(*cfg, platforms, oauthService, socialAccountRepo, notifier)
	publishService := service.NewPublishService(socialAccountRepo, publicationRepo, tokenService, service.NewAdapterRegistry(), notifier)
	mediaService := service.NewMediaService(*cfg)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)
	app.Use(authMiddleware.AuthMiddleware())

	platform := handlers.NewPlatformHandler(oauthService, accountService, *cfg)
	app.Get("/auth/:platform", platform.AddSocialAccount)
	app.Get("/auth/callback/:platform", platform.CallbackHandler)

	api := app.Group("/api")

	api.Get("/accounts", platform.ListSocialAccounts)
	api.Post("/accounts/remove", platform.DeleteSocialAccount)

	publish := handlers.NewPublishHandler(publishService, accountService, client)
	api.Post("/publish", publish.PublishNow)
	api.Post("/publish/schedule", publish.SchedulePublish)
	api.Get("/publications", publish.ListPublications)

	media := handlers.NewMediaHandler(mediaService)
	api.Post("/media/upload", media.Upload)

	// cron jobs
	refreshTokenJob := job.NewTokenRefreshJob(socialAccountRepo, tokenService)

	c := cron.New()
	c.AddFunc("@every 00h10m00s", refreshTokenJob.RefreshTokens)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		worker := queue.NewWorker(publishService)
		mux.HandleFunc(queue.TaskTypePublishPost, worker.HandlePublishPostTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
