package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/phani-001/FixMyTown/internal/config"
	"github.com/phani-001/FixMyTown/internal/delivery/http/handler"
	"github.com/phani-001/FixMyTown/internal/delivery/http/middleware"
	"github.com/phani-001/FixMyTown/internal/domain/entity"
	"github.com/phani-001/FixMyTown/internal/domain/repository"
	"github.com/phani-001/FixMyTown/internal/platform/database"
	"github.com/phani-001/FixMyTown/internal/platform/queue"
	"github.com/phani-001/FixMyTown/internal/platform/storage"
	"github.com/phani-001/FixMyTown/internal/repository/postgres"
	redisrepo "github.com/phani-001/FixMyTown/internal/repository/redis"
	"github.com/phani-001/FixMyTown/internal/service"
	"github.com/phani-001/FixMyTown/internal/worker"
)

func main() {
	cfg := config.Load()

	// Initialisation de la base de données
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Printf("Warning: Could not connect to database: %v. Running in degraded mode.", err)
	} else {
		defer db.Close()
	}

	// Initialisation Redis (codes OTP)
	var otpRepo repository.OTPRepository
	if repo, err := redisrepo.NewOTPRepository(cfg.RedisURL); err != nil {
		log.Printf("Warning: Could not connect to Redis: %v. OTP login disabled.", err)
	} else {
		otpRepo = repo
	}

	// Initialisation RabbitMQ
	publisher, err := queue.NewRabbitPublisher(cfg.RabbitURL)
	if err != nil {
		log.Printf("Warning: Could not connect to RabbitMQ: %v. Async features disabled.", err)
	} else {
		defer publisher.Close()
	}

	consumer, err := queue.NewRabbitConsumer(cfg.RabbitURL)
	if err != nil {
		log.Printf("Warning: Could not connect RabbitMQ Consumer: %v", err)
	} else {
		defer consumer.Close()
	}

	// Initialisation MinIO
	var storageService service.StorageService
	storagePlatform, err := storage.NewMinioStorage(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL)
	if err != nil {
		log.Printf("Warning: Could not connect to MinIO: %v. Photo uploads disabled.", err)
	} else {
		storageService = service.NewStorageService(storagePlatform, cfg.PhotoBucket)
		if err := storageService.Initialize(context.Background()); err != nil {
			log.Printf("Warning: Could not initialize storage bucket: %v", err)
		}
	}

	// Injection des dépendances
	userRepo := postgres.NewUserRepository(db)
	complaintRepo := postgres.NewComplaintRepository(db)

	authService := service.NewAuthService(userRepo, otpRepo, cfg.JWTSecret, cfg.OTPStaticCode, cfg.OTPTTL)
	complaintService := service.NewComplaintService(complaintRepo, publisher)
	analyticsService := service.NewAnalyticsService(complaintRepo, cfg.TrendsMode)

	authHandler := handler.NewAuthHandler(authService)
	complaintHandler := handler.NewComplaintHandler(complaintService, storageService)
	userHandler := handler.NewUserHandler(userRepo, authService)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService)

	// Démarrage du worker d'escalade
	if consumer != nil {
		escalationService := service.NewEscalationService(complaintRepo, complaintService)
		complaintConsumer := worker.NewComplaintConsumer(consumer, escalationService)
		go complaintConsumer.Start(context.Background())
	}

	// Configuration du routeur
	r := gin.Default()

	// Configuration CORS (Permissif pour le dev)
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"}, // À restreindre en prod ex: "http://localhost:5173"
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Middleware
	authMiddleware := middleware.AuthMiddleware(authService)

	// Routes API Versioning
	api := r.Group("/api/v1")
	{
		// Auth : public, mais rate-limité (force brute, spam OTP)
		auth := api.Group("/auth")
		auth.Use(middleware.RateLimitMiddleware(10, time.Minute))
		{
			auth.POST("/staff/login", authHandler.StaffLogin)
			auth.POST("/send-otp", authHandler.SendOTP)
			auth.POST("/verify-otp", authHandler.VerifyOTP)
		}

		// Signalements
		complaints := api.Group("/complaints")
		complaints.Use(authMiddleware)
		{
			complaints.POST("", complaintHandler.Create)
			complaints.GET("", complaintHandler.List)
			complaints.GET("/upload-url", complaintHandler.GetUploadURL)
			complaints.GET("/:id", complaintHandler.Get)
			complaints.PATCH("/:id", complaintHandler.Update)
			complaints.POST("/:id/assign", middleware.RequireCapability(entity.CapAssign), complaintHandler.Assign)
			complaints.POST("/:id/comments", middleware.RequireCapability(entity.CapComment), complaintHandler.AddComment)
			complaints.DELETE("/:id", middleware.RequireCapability(entity.CapDelete), complaintHandler.Delete)
		}

		// Utilisateurs. L'enregistrement citoyen par mobile reste public
		// (l'app mobile crée le compte avant le premier login OTP)
		api.POST("/users", middleware.RateLimitMiddleware(10, time.Minute), userHandler.Create)
		users := api.Group("/users")
		users.Use(authMiddleware)
		{
			users.GET("/staff", middleware.StaffOnly(), userHandler.ListStaff)
			users.GET("/mobile/:mobile", middleware.StaffOnly(), userHandler.GetByMobile)
			users.GET("/:id", userHandler.GetByID)
		}

		// Admin
		admin := api.Group("/admin")
		admin.Use(authMiddleware, middleware.AdminOnly())
		{
			admin.POST("/users", userHandler.RegisterStaff)
		}

		// Dashboards
		analytics := api.Group("/analytics")
		analytics.Use(authMiddleware, middleware.StaffOnly())
		{
			analytics.GET("/stats", analyticsHandler.Stats)
			analytics.GET("/categories", analyticsHandler.Categories)
			analytics.GET("/trends", analyticsHandler.Trends)
		}
	}

	// Santé
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	log.Printf("Server starting on port %s", cfg.Port)
	r.Run(":" + cfg.Port)
}
