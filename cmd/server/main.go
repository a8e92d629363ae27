package main

import (
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/JoaoZanelato/galeria-web/internal/access"
	"github.com/JoaoZanelato/galeria-web/internal/blobstore"
	"github.com/JoaoZanelato/galeria-web/internal/database"
	"github.com/JoaoZanelato/galeria-web/internal/friends"
	"github.com/JoaoZanelato/galeria-web/internal/gallery"
	"github.com/JoaoZanelato/galeria-web/internal/handlers"
	"github.com/JoaoZanelato/galeria-web/internal/kafka"
	"github.com/JoaoZanelato/galeria-web/internal/middleware"
	"github.com/JoaoZanelato/galeria-web/internal/notify"
	"github.com/JoaoZanelato/galeria-web/internal/redis"
	"github.com/JoaoZanelato/galeria-web/internal/router"
	"github.com/JoaoZanelato/galeria-web/internal/sharing"
	"github.com/JoaoZanelato/galeria-web/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	logger.Init()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "host=localhost user=postgres password=postgres dbname=galeria port=5432 sslmode=disable"
	}
	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Redis cache (optional; nil degrades to database-only lookups)
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	cache := redis.NewService(redisAddr, os.Getenv("REDIS_PASSWORD"), 0)

	// Kafka producer (optional)
	var producer *kafka.Producer
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		producer = kafka.NewProducer(strings.Split(brokers, ","))
		defer producer.Close()
	}

	// Blob store (optional; images keep their rows-only lifecycle without it)
	var blobs blobstore.Store
	if cloudName := os.Getenv("CLOUDINARY_CLOUD_NAME"); cloudName != "" {
		blobs = blobstore.NewCloudinary(
			cloudName,
			os.Getenv("CLOUDINARY_API_KEY"),
			os.Getenv("CLOUDINARY_API_SECRET"),
		)
	}

	hub := notify.NewHub()

	// A typed nil inside the interface would defeat the resolver's nil check.
	var aclCache access.ACLCache
	if cache != nil {
		aclCache = cache
	}
	resolver := access.NewResolver(db, aclCache)
	galleryService := gallery.NewService(db, resolver, blobs, producer, cache, logger.Log)
	shareManager := sharing.NewManager(db, hub, producer, cache)
	friendService := friends.NewService(db, hub, producer, cache, friends.Options{
		AllowRetryAfterDecline: true,
	})

	// Setup Gin router
	r := gin.Default()

	middleware.SetupPrometheus(r)
	r.Use(middleware.LoggerMiddleware())

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	router.SetupRouter(r, db, hub, router.Handlers{
		Auth:   handlers.NewAuthHandler(db),
		Album:  handlers.NewAlbumHandler(galleryService, shareManager),
		Image:  handlers.NewImageHandler(galleryService, shareManager),
		Friend: handlers.NewFriendHandler(friendService),
		Site:   handlers.NewSiteHandler(galleryService),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, r))
}
