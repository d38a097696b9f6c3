package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/medibook/booking-api/internal/config"
	"github.com/medibook/booking-api/internal/gateway"
	"github.com/medibook/booking-api/internal/handlers"
	"github.com/medibook/booking-api/internal/middleware"
	"github.com/medibook/booking-api/internal/repository"
	"github.com/medibook/booking-api/internal/services"
	"github.com/medibook/booking-api/internal/storage"
	"github.com/medibook/booking-api/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	// --- Database Connection ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer client.Disconnect(ctx)
	db := client.Database(cfg.MongoDatabase)
	logger.Info("Connected to MongoDB", zap.String("database", cfg.MongoDatabase))

	// --- Repositories ---
	userRepo := repository.NewUserRepository(db)
	doctorRepo := repository.NewDoctorRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)

	// --- External capabilities ---
	uploader, err := storage.NewCloudinary(cfg.CloudinaryURL)
	if err != nil {
		logger.Fatal("Failed to configure Cloudinary", zap.Error(err))
	}
	payments := gateway.NewRazorpay(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)

	tokens, err := utils.NewTokenIssuer(cfg.JWTSecret)
	if err != nil {
		logger.Fatal("Failed to configure token issuer", zap.Error(err))
	}

	// --- Services ---
	notifier := services.NewNotificationService(cfg.TextbeltAPIKey, logger)
	bookingSvc := services.NewBookingService(doctorRepo, userRepo, appointmentRepo, notifier, logger)
	cancellationSvc := services.NewCancellationService(doctorRepo, appointmentRepo, notifier, logger)
	paymentSvc := services.NewPaymentService(appointmentRepo, payments, cfg.Currency, logger)

	h := handlers.NewHandler(userRepo, doctorRepo, appointmentRepo,
		bookingSvc, cancellationSvc, paymentSvc,
		uploader, tokens, cfg, logger)

	// --- Gin Router ---
	r := gin.Default()
	r.Use(middleware.RequestID(logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	// --- Routes ---
	userRoutes := r.Group("/api/user")
	{
		userRoutes.POST("/register", h.RegisterUser)
		userRoutes.POST("/login", h.LoginUser)

		authed := userRoutes.Group("")
		authed.Use(middleware.RequireAuth(tokens))
		{
			authed.GET("/get-profile", h.GetProfile)
			authed.POST("/update-profile", h.UpdateProfile)
			authed.POST("/book-appointment", h.BookAppointment)
			authed.GET("/appointments", h.ListAppointments)
			authed.POST("/cancel-appointment", h.CancelAppointment)
			authed.POST("/payment-razorpay", h.CreatePaymentOrder)
			authed.POST("/verify-razorpay", h.VerifyPayment)
		}
	}

	adminRoutes := r.Group("/api/admin")
	{
		adminRoutes.POST("/login", h.LoginAdmin)

		authed := adminRoutes.Group("")
		authed.Use(middleware.RequireAdmin(tokens))
		{
			authed.POST("/add-doctor", h.AddDoctor)
			authed.GET("/all-doctors", h.AllDoctors)
			authed.GET("/appointments", h.AllAppointments)
			authed.POST("/cancel-appointment", h.AdminCancelAppointment)
			authed.POST("/change-availability", h.ChangeAvailability)
		}
	}

	r.GET("/api/doctor/list", h.DoctorList)

	logger.Info("Starting server", zap.String("port", cfg.APIPort))
	if err := r.Run(":" + cfg.APIPort); err != nil {
		logger.Fatal("Server stopped", zap.Error(err))
	}
}
