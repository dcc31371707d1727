package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"mockexam-service/internal/db"
	"mockexam-service/internal/event"
	"mockexam-service/internal/handlers"
	"mockexam-service/internal/middleware"
	"mockexam-service/internal/repository"
	"mockexam-service/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system env")
	}
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		log.Fatal("MONGO_URI is required")
	}
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	db.InitMongo(mongoURI)
	database := db.Client.Database("mockexam")
	if err := db.EnsureIndexes(context.Background(), database); err != nil {
		log.Fatalf("Failed to ensure indexes: %v", err)
	}

	// Redis leaderboard cache is optional; without it every read hits Mongo.
	rdb := db.InitRedis(os.Getenv("REDIS_ADDR"), os.Getenv("REDIS_PASSWORD"))

	// RabbitMQ event publisher
	rabbitURL := os.Getenv("RABBITMQ_URI")
	eventExchange := os.Getenv("RABBITMQ_EXCHANGE")
	var publisher service.Publisher
	if rabbitURL != "" && eventExchange != "" {
		p, err := event.NewExamEventPublisher(rabbitURL, eventExchange)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer p.Close()
		publisher = p
	} else {
		log.Println("RabbitMQ not configured, exam events will not be published")
		publisher = event.NoopPublisher{}
	}

	r := gin.Default()

	allowOrigins := []string{"http://localhost:3000"}
	if extra := os.Getenv("CORS_ORIGINS"); extra != "" {
		allowOrigins = append(allowOrigins, strings.Split(extra, ",")...)
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Repositories
	testRepo := repository.NewTestRepository(database)
	attemptRepo := repository.NewAttemptRepository(database)
	resultRepo := repository.NewResultRepository(database)
	userRepo := repository.NewUserRepository(database)

	// Services
	userService := service.NewUserService(userRepo, jwtSecret)
	testService := service.NewTestService(testRepo, userRepo)
	resultService := service.NewResultService(resultRepo, testRepo)
	leaderboardService := service.NewLeaderboardService(resultRepo, userRepo, rdb)

	attemptService := service.NewAttemptService(attemptRepo, testRepo, resultRepo, userRepo)
	attemptService.Events = publisher
	attemptService.Leaderboard = leaderboardService

	paymentService := service.NewPaymentService(
		userRepo,
		os.Getenv("MIDTRANS_SERVER_KEY"),
		os.Getenv("MIDTRANS_ENV") == "production",
	)
	paymentService.Events = publisher

	// Handlers
	authHandler := handlers.NewAuthHandler(userService)
	testHandler := handlers.NewTestHandler(testService)
	attemptHandler := handlers.NewAttemptHandler(attemptService)
	resultHandler := handlers.NewResultHandler(resultService)
	leaderboardHandler := handlers.NewLeaderboardHandler(leaderboardService)
	adminHandler := handlers.NewAdminHandler(testService, userService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":   "mockexam-service",
			"status":    "healthy",
			"timestamp": time.Now(),
		})
	})

	protect := middleware.Protect(userService, jwtSecret)

	auth := r.Group("/api/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.GET("/profile", protect, authHandler.Profile)
	}

	tests := r.Group("/api/tests", protect)
	{
		tests.GET("/", testHandler.ListTests)
		tests.GET("/:id", testHandler.GetTest)
	}

	attempts := r.Group("/api/attempts", protect)
	{
		attempts.POST("/", attemptHandler.StartAttempt)
		attempts.GET("/:id", attemptHandler.GetAttempt)
		attempts.PUT("/:id/answer", attemptHandler.SaveAnswer)
		attempts.POST("/:id/submit", attemptHandler.SubmitAttempt)
	}

	results := r.Group("/api/results", protect)
	{
		results.GET("/", resultHandler.ListMyResults)
		results.GET("/:id", resultHandler.GetResult)
		results.GET("/:id/analysis", middleware.PremiumOnly(userService), resultHandler.AnalyzeResult)
	}

	leaderboard := r.Group("/api/leaderboard", protect)
	{
		leaderboard.GET("/test/:testId", leaderboardHandler.TestLeaderboard)
		leaderboard.GET("/global", leaderboardHandler.GlobalLeaderboard)
	}

	payments := r.Group("/api/payments")
	{
		payments.GET("/plans", paymentHandler.ListPlans)
		payments.POST("/order", protect, paymentHandler.CreateOrder)
		// Gateway webhook; authenticated by its payload signature.
		payments.POST("/notification", paymentHandler.Notification)
	}

	admin := r.Group("/api/admin", protect, middleware.AdminOnly())
	{
		admin.GET("/tests", adminHandler.ListTests)
		admin.POST("/tests", adminHandler.CreateTest)
		admin.PUT("/tests/:id", adminHandler.UpdateTest)
		admin.PATCH("/tests/:id/active", adminHandler.SetTestActive)
		admin.DELETE("/tests/:id", adminHandler.DeleteTest)
		admin.GET("/users", adminHandler.ListUsers)
		admin.POST("/upload-pdf", adminHandler.UploadPDF)
		admin.POST("/tests/from-pdf", adminHandler.CreateTestFromPDF)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
