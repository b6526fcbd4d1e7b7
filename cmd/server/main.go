package main

import (
	"log"
	"os"
	"strings"
	"time"

	"eldercare/internal/database"
	"eldercare/internal/handlers"
	"eldercare/internal/realtime"
	"eldercare/internal/repository"
	"eldercare/internal/services"

	"eldercare/internal/auth"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	if err := database.InitDB(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	db := database.GetDB()

	userRepo := repository.NewUserRepository(db)
	caregiverRepo := repository.NewCaregiverRepository(db)
	reminderRepo := repository.NewReminderRepository(db)
	alertRepo := repository.NewAlertRepository(db)

	hub := realtime.NewHub()
	go hub.Run()

	// NewSMSService returns nil when Twilio is unconfigured; keep the
	// interface nil too so the dispatcher's nil check works.
	var sms services.SMSSender
	if s := services.NewSMSService(); s != nil {
		sms = s
	}
	email := services.NewEmailService()

	resolver := services.NewRecipientResolver(userRepo, caregiverRepo)
	dispatcher := services.NewAlertDispatcher(alertRepo, userRepo, caregiverRepo, resolver, hub, sms, email)
	engine := services.NewReminderEngine(reminderRepo, userRepo, hub, sms)
	engine.Start()
	defer engine.Stop()

	images, err := services.NewImageService()
	if err != nil {
		log.Printf("Warning: image uploads disabled: %v", err)
	}

	api := &handlers.API{
		Engine:     engine,
		Dispatcher: dispatcher,
		Hub:        hub,
		Users:      userRepo,
		Caregivers: caregiverRepo,
		Images:     images,
	}

	router := gin.Default()
	router.SetTrustedProxies([]string{"127.0.0.1"})

	origins := []string{"http://localhost:5173"}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		origins = strings.Split(env, ",")
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/", handlers.HomeHandler)
	router.GET("/health", handlers.HealthHandler)

	router.POST("/api/auth/register", api.Register)
	router.POST("/api/auth/login", api.Login)

	router.GET("/ws", api.ServeWS)

	protected := router.Group("/api")
	protected.Use(auth.AuthMiddleware())
	{
		protected.GET("/user/me", api.GetCurrentUser)
		protected.PUT("/user/emergency-contacts", api.UpdateEmergencyContacts)
		protected.POST("/user/caregivers/link", api.LinkCaregiver)
		protected.PUT("/user/assistant", api.UpdateAssistant)

		protected.POST("/caregivers", api.AddCaregiver)
		protected.GET("/caregivers", api.ListCaregivers)
		protected.PUT("/caregivers/:id", api.UpdateCaregiver)
		protected.DELETE("/caregivers/:id", api.DeleteCaregiver)

		protected.POST("/reminder", api.CreateReminder)
		protected.GET("/reminder/caregiver", api.ListRemindersForCaregiver)
		protected.GET("/reminder/elderly", api.ListRemindersForElderly)
		protected.POST("/reminder/ack/:id", api.AcknowledgeReminder)
		protected.POST("/reminder/trigger/:id", api.TriggerReminder)

		protected.POST("/emergency", api.RaiseAlert)
		protected.GET("/emergency", api.ListAlerts)
		protected.POST("/emergency/ack/:id", api.AcknowledgeAlert)
		protected.POST("/emergency/resolve/:id", api.ResolveAlert)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}
	log.Printf("Server starting on port %s...", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
