package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	"github.com/platewise/platewise-api/config"
	"github.com/platewise/platewise-api/controllers"
	"github.com/platewise/platewise-api/middleware"
	"github.com/platewise/platewise-api/models"
	"github.com/platewise/platewise-api/services"
)

func main() {
	log.Println("Starting Platewise API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	db := config.GetDB()
	if err := db.AutoMigrate(models.All()...); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Real-time dispatch. Redis being down is not fatal: events still reach
	// sockets on this process through the local dispatcher, and the
	// notification store keeps everything durable.
	hub := services.InitHub(services.NewHub())
	var bus services.Dispatcher
	if err := config.ConnectRedis(cfg.RedisURL); err != nil {
		log.Printf("Redis unavailable, falling back to in-process dispatch: %v", err)
		bus = services.NewLocalDispatcher(hub)
	} else {
		redisBus := services.NewRedisDispatcher(config.GetRedis(), hub)
		go redisBus.Run(context.Background())
		bus = redisBus
	}
	services.InitDispatcher(bus)

	// Domain services
	notifications := services.InitNotificationStore(db)
	services.InitOrderService(db, notifications, bus)
	services.InitCartService(db)
	services.InitOTPVerifier(services.NewDBOTPVerifier(db, cfg.IsProduction()))
	scanner := services.InitScannerService(db, notifications, bus, cfg.ReminderDays)
	if _, err := services.InitImageService(); err != nil {
		log.Printf("Image storage unavailable: %v", err)
	}

	// Background work: the queue carries scan jobs, the worker runs them,
	// and cron enqueues one every midnight.
	queue := services.NewKafkaQueue(cfg.KafkaBrokers, cfg.KafkaReminderTopic)
	defer queue.Close()
	worker := services.NewWorker(cfg.KafkaBrokers, cfg.KafkaReminderTopic, "platewise-api")
	worker.Handle(services.ReminderJobName, scanner.Handler())
	go worker.Run(context.Background())
	defer worker.Close()

	scheduler := cron.New()
	_, err = scheduler.AddFunc("0 0 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := queue.Enqueue(ctx, services.ReminderJobName, nil); err != nil {
			log.Printf("Failed to enqueue %s: %v", services.ReminderJobName, err)
		}
	})
	if err != nil {
		log.Fatalf("Failed to schedule reminder job: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	router := setupRouter()

	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter creates and configures the router with all routes and
// middleware. Tests drive the same router the server runs.
func setupRouter() *gin.Engine {
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)

		// Auth
		auth := v1.Group("/auth")
		{
			auth.POST("/otp", controllers.RequestOTP)
			auth.POST("/verify", controllers.VerifyOTP)
			auth.POST("/register-restaurant", controllers.RegisterRestaurant)
			auth.GET("/me", middleware.RequireAuth(), controllers.GetMe)
		}

		// Public browse
		v1.GET("/restaurants", controllers.GetRestaurants)
		v1.GET("/restaurants/:id", controllers.GetRestaurantByID)
		v1.GET("/restaurants/:id/menu", controllers.GetRestaurantMenu)
		v1.GET("/restaurants/:id/categories", controllers.GetRestaurantMenuCategories)
		v1.GET("/restaurants/:id/reviews", controllers.GetRestaurantReviews)

		// Authenticated user routes
		user := v1.Group("", middleware.RequireAuth())
		{
			user.GET("/ws", controllers.ConnectSocket)
			user.PUT("/users/profile", controllers.UpdateProfile)
			user.POST("/upload", controllers.UploadImage)

			user.GET("/cart", controllers.GetCart)
			user.POST("/cart/add", controllers.AddToCart)
			user.POST("/cart/remove", controllers.RemoveFromCart)
			user.POST("/cart/update-quantity", controllers.UpdateCartQuantity)
			user.DELETE("/cart", controllers.ClearCart)

			user.POST("/orders", controllers.CreateOrder)
			user.GET("/orders", controllers.GetMyOrders)
			user.GET("/orders/:id", controllers.GetOrderByID)
			user.GET("/orders/:id/review", controllers.GetReviewByOrder)
			user.POST("/reviews", controllers.CreateReview)

			user.GET("/notifications", controllers.GetMyNotifications)
			user.PUT("/notifications/:id/read", controllers.MarkNotificationRead)
			user.PUT("/notifications/read-all", controllers.MarkAllNotificationsRead)

			user.GET("/addresses", controllers.GetMyAddresses)
			user.POST("/addresses", controllers.CreateAddress)
			user.PUT("/addresses/:id", controllers.UpdateAddress)
			user.DELETE("/addresses/:id", controllers.DeleteAddress)
			user.PATCH("/addresses/:id/default", controllers.SetDefaultAddress)
		}

		// Restaurant routes
		restaurant := v1.Group("/restaurant",
			middleware.RequireAuth(), middleware.RequireRole(models.RoleRestaurant))
		{
			restaurant.GET("/products", controllers.GetMyProducts)
			restaurant.POST("/products", controllers.AddProduct)
			restaurant.PUT("/products/:id", controllers.UpdateProduct)
			restaurant.DELETE("/products/:id", controllers.DeleteProduct)

			restaurant.GET("/categories", controllers.GetMyCategories)
			restaurant.POST("/categories", controllers.CreateCategory)

			restaurant.GET("/orders", controllers.GetRestaurantOrders)
			restaurant.GET("/orders/:id", controllers.GetRestaurantOrderByID)
			restaurant.PATCH("/orders/:id/status", controllers.UpdateOrderStatus)

			restaurant.POST("/subscription", controllers.SubmitSubscription)
			restaurant.GET("/subscription", controllers.GetMySubscriptions)
			restaurant.PATCH("/open", controllers.ToggleOpenStatus)
			restaurant.PUT("/profile", controllers.UpdateRestaurantProfile)
		}

		// Admin routes
		admin := v1.Group("/admin",
			middleware.RequireAuth(), middleware.RequireRole(models.RoleAdmin))
		{
			admin.GET("/restaurants", controllers.AdminGetRestaurants)
			admin.POST("/restaurants", controllers.AdminAddRestaurant)
			admin.GET("/restaurants/:id", controllers.AdminGetRestaurantDetails)
			admin.PATCH("/restaurants/:id/verify", controllers.AdminVerifyRestaurant)
			admin.PATCH("/restaurants/:id/priority", controllers.AdminUpdateRestaurantPriority)
			admin.PATCH("/restaurants/:id/subscription-block", controllers.AdminToggleSubscriptionBlock)
			admin.GET("/restaurants/:id/subscriptions", controllers.AdminGetSubscriptionHistory)

			admin.GET("/subscriptions", controllers.AdminGetSubscriptions)
			admin.PATCH("/subscriptions/:id", controllers.AdminUpdateSubscriptionStatus)
			admin.POST("/subscriptions/expiry-alerts", controllers.AdminSendSubscriptionExpiryAlerts)

			admin.GET("/users", controllers.AdminGetUsers)
			admin.PATCH("/users/:id/block", controllers.AdminToggleUserStatus)

			admin.GET("/notifications", controllers.AdminGetSentNotifications)
			admin.POST("/notifications", controllers.AdminSendNotification)
		}
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Platewise API is running",
	})
}
