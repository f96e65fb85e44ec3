package main

import (
	"context"
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
	config "github.com/greenlens/autoposter/configs"
	"github.com/greenlens/autoposter/internal/api/handlers"
	"github.com/greenlens/autoposter/internal/infographic"
	job "github.com/greenlens/autoposter/internal/jobs"
	"github.com/greenlens/autoposter/internal/repository"
	"github.com/greenlens/autoposter/internal/service"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron"
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
	if err := repository.InitSchema(context.Background(), db); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	postRepo := repository.NewPostRepository(db)
	logRepo := repository.NewPipelineLogRepository(db)
	tokenRepo := repository.NewTokenRepository(db)

	instagramService := service.NewInstagramService(*cfg, tokenRepo)
	if err := instagramService.EnsurePageToken(context.Background()); err != nil {
		log.Fatalf("Failed to obtain a page access token: %v", err)
	}

	researcherService := service.NewResearcherService(*cfg)
	generatorService := service.NewGeneratorService(*cfg)
	unsplashService := service.NewUnsplashService(*cfg)
	r2Service := service.NewR2Service(*cfg)
	renderer := infographic.NewRenderer(cfg.TmpDir)
	pipelineService := service.NewPipelineService(*cfg, postRepo, logRepo,
		researcherService, generatorService, unsplashService, renderer, r2Service, instagramService)

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
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	schedulerJob := job.NewSchedulerJob(postRepo, instagramService)
	autoPostJob := job.NewAutoPostJob(pipelineService)

	api := app.Group("/api")

	post := handlers.NewPostHandler(postRepo)
	api.Post("/posts", post.CreatePost)
	api.Get("/posts", post.ListPosts)
	api.Get("/posts/:id", post.GetPost)
	api.Delete("/posts/:id", post.DeletePost)

	pipeline := handlers.NewPipelineHandler(*cfg, autoPostJob, researcherService, generatorService, logRepo)
	api.Post("/pipeline/generate", pipeline.Generate)
	api.Get("/pipeline/logs", pipeline.ListLogs)
	api.Get("/pipeline/status", pipeline.Status)
	api.Get("/pipeline/topics", pipeline.ListTopics)

	platform := handlers.NewPlatformHandler(instagramService, r2Service, cfg.TmpDir)
	api.Get("/rate-limit", platform.RateLimit)
	api.Post("/upload", platform.Upload)
	api.Get("/health", platform.Health)

	location, err := time.LoadLocation(cfg.Pipeline.Timezone)
	if err != nil {
		log.Fatalf("Invalid timezone %q: %v", cfg.Pipeline.Timezone, err)
	}

	c := cron.NewWithLocation(location)
	c.AddFunc("@every 00h01m00s", schedulerJob.Tick)
	if cfg.OpenAIAPIKey != "" {
		c.AddFunc(fmt.Sprintf("0 0 %d * * *", cfg.Pipeline.MorningHour), func() { autoPostJob.Trigger(false) })
		c.AddFunc(fmt.Sprintf("0 0 %d * * *", cfg.Pipeline.EveningHour), func() { autoPostJob.Trigger(true) })
	} else {
		log.Println("OPENAI_API_KEY is not set, automatic content generation disabled")
	}
	c.Start()
	defer c.Stop()

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Printf("Server is running on http://localhost:%s", cfg.Port)

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
