package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"prepview/interview-evaluator/internal/config"
	"prepview/interview-evaluator/internal/handlers"
	"prepview/interview-evaluator/internal/repositories"
	"prepview/interview-evaluator/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Initialize repositories
	docRepo := repositories.NewDocumentRepository(db)
	setRepo := repositories.NewQuestionSetRepository(db)
	log.Println("✅ Repositories initialized successfully")

	// Initialize storage and parsing services
	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatalf("❌ Failed to create upload directory: %v", err)
	}

	pdfParser := services.NewPDFParserService()
	log.Println("✅ Services initialized successfully")

	// Initialize Gemini AI
	geminiService, err := services.NewGeminiService(cfg.Gemini.APIKey)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini AI: %v", err)
	}
	log.Println("✅ Gemini AI initialized successfully")

	// Initialize Qdrant
	qdrantService, err := services.NewQdrantService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}

	if err := qdrantService.InitCollection(); err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant collection: %v", err)
	}
	log.Println("✅ Qdrant initialized successfully")

	// Initialize the evaluation adapters. All model resources are
	// created once here and shared read-only across requests.
	transcriber, err := services.NewTranscriptionService(cfg.Whisper.APIKey, cfg.Whisper.Model)
	if err != nil {
		log.Fatalf("❌ Failed to initialize transcription service: %v", err)
	}

	emotionService, err := services.NewEmotionService(cfg.Emotion)
	if err != nil {
		log.Fatalf("❌ Failed to initialize emotion service: %v", err)
	}

	similarityService := services.NewSimilarityService(geminiService)
	detectionService := services.NewDetectionService(cfg.Detection.URL)

	evaluatorService := services.NewResponseEvaluatorService(
		transcriber,
		emotionService,
		similarityService,
		detectionService,
		cfg.Evaluation.AdapterTimeout,
		cfg.Detection.ConfidenceThreshold,
	)
	log.Println("✅ Response evaluator initialized")

	// Initialize question generator
	generatorService := services.NewQuestionGeneratorService(
		setRepo,
		docRepo,
		geminiService,
		qdrantService,
		pdfParser,
		cfg.Worker.RetryMaxAttempts,
	)
	log.Println("✅ Question generator initialized")

	// Initialize worker
	worker := services.NewWorker(
		setRepo,
		generatorService,
		cfg.Worker.Concurrency,
	)
	log.Println("✅ Worker initialized successfully")

	// Start worker
	ctx := context.Background()
	worker.Start(ctx)
	log.Println("✅ Worker started successfully")

	// Initialize handlers
	uploadHandler := handlers.NewUploadHandler(
		docRepo,
		storageService,
		cfg.Storage.MaxFileSize,
	)
	questionHandler := handlers.NewQuestionHandler(
		setRepo,
		docRepo,
		worker,
	)
	responseHandler := handlers.NewResponseHandler(
		evaluatorService,
		setRepo,
		storageService,
		cfg.Storage.MaxFileSize,
	)
	proctorHandler := handlers.NewProctorHandler(evaluatorService)
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "AI Interview Evaluator API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize),
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// API endpoints
	api.Post("/upload", uploadHandler.HandleUpload)
	api.Post("/questions", questionHandler.HandleGenerate)
	api.Get("/questions/:id", questionHandler.HandleGetQuestions)
	api.Post("/response", responseHandler.HandleEvaluateResponse)
	api.Post("/proctor", proctorHandler.HandleCheckFrame)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "AI Interview Evaluator API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/upload",
				"POST /api/v1/questions",
				"GET /api/v1/questions/:id",
				"POST /api/v1/response",
				"POST /api/v1/proctor",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		worker.Stop()
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
