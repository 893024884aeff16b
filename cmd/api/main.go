package main

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/atelierhaus/backend/internal/config"
	"github.com/atelierhaus/backend/internal/handlers"
	"github.com/atelierhaus/backend/internal/middleware"
	"github.com/atelierhaus/backend/internal/models"
	"github.com/atelierhaus/backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.New()

	// Initialize database
	db, err := models.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Run migrations
	if err := models.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize Redis
	redisClient := models.InitRedis(cfg)
	defer redisClient.Close()

	// Initialize services
	authService := services.NewAuthService(db, redisClient, cfg)
	userService := services.NewUserService(db, cfg)
	storageService := services.NewStorageService(cfg)
	s3Service, err := services.NewS3Service(cfg)
	if err != nil {
		log.Fatalf("Failed to init S3 service: %v", err)
	}
	mediaStore := services.NewMediaStore(cfg, s3Service, storageService, "media")
	galleryService := services.NewGalleryService(db, cfg, mediaStore)
	projectService := services.NewProjectService(db, cfg, mediaStore)
	pageService := services.NewPageService(db)
	teamService := services.NewTeamService(db, cfg, mediaStore)
	partnerService := services.NewPartnerService(db, cfg, mediaStore)
	qrService := services.NewQRService(cfg)
	auditService := services.NewAuditService(db)

	// Optional: warm the local media cache from object storage on start
	if cfg.MediaSyncOnStart {
		go func() {
			log.Println("MediaSyncOnStart enabled: syncing missing media...")
			keys, err := s3Service.ListMediaKeys(context.Background(), cfg.MediaBucket, "media/", 1000)
			if err != nil {
				log.Printf("Media sync list error: %v", err)
				return
			}
			for _, k := range keys {
				abs := filepath.Join(cfg.LocalAssetsPath, filepath.FromSlash(k))
				if _, err := os.Stat(abs); err == nil {
					continue
				}
				buf, derr := s3Service.DownloadMedia(context.Background(), cfg.MediaBucket, k)
				if derr != nil {
					continue
				}
				if _, _, _, err := storageService.SaveStream(context.Background(), k, bytes.NewReader(buf.Bytes())); err != nil {
					continue
				}
			}
			log.Println("MediaSyncOnStart: media sync complete")
		}()
	}

	// Periodically remove expired refresh tokens
	go func() {
		for {
			if err := authService.CleanupExpiredTokens(); err != nil {
				log.Printf("Refresh token cleanup error: %v", err)
			}
			time.Sleep(1 * time.Hour)
		}
	}()

	// Create admin user if not exists
	if err := userService.CreateDefaultAdmin(); err != nil {
		log.Printf("Failed to create default admin: %v", err)
	}

	// Setup Gin router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg))
	router.Use(middleware.RateLimiter(redisClient, cfg))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, userService)
	galleryHandler := handlers.NewGalleryHandler(galleryService, mediaStore, storageService, qrService, auditService, cfg)
	projectHandler := handlers.NewProjectHandler(projectService, mediaStore, storageService, qrService, auditService, cfg)
	contentHandler := handlers.NewContentHandler(pageService, teamService, partnerService, auditService)
	publicHandler := handlers.NewPublicHandler(galleryService, projectService, pageService, teamService, partnerService, mediaStore, storageService)
	adminHandler := handlers.NewAdminHandler(userService, auditService)

	// Health check outside API group (no /api/v1 prefix)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// Setup routes
	api := router.Group("/api/v1")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "healthy"})
		})

		// Catch-all OPTIONS handler for CORS preflight requests
		api.OPTIONS("/*path", func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})

		// Public routes
		public := api.Group("/public")
		{
			public.GET("/gallery", publicHandler.ListGallery)
			public.GET("/gallery/:slug", publicHandler.GetGalleryItem)
			public.GET("/projects", publicHandler.ListProjects)
			public.GET("/projects/:slug", publicHandler.GetProject)
			public.GET("/pages/:slug", publicHandler.GetPage)
			public.GET("/team", publicHandler.ListTeam)
			public.GET("/partners", publicHandler.ListPartners)
			public.GET("/media/gallery/:mediaId/file", publicHandler.ServeGalleryMedia)
			public.GET("/media/projects/:mediaId/file", publicHandler.ServeProjectMedia)
		}

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/logout", middleware.Auth(authService), authHandler.Logout)
			auth.GET("/me", middleware.Auth(authService), authHandler.Me)
		}

		// Admin routes
		admin := api.Group("/admin")
		admin.Use(middleware.Auth(authService))
		admin.Use(middleware.AdminOnly())
		admin.Use(middleware.UploadRateLimit(redisClient, cfg))
		{
			// Gallery
			admin.GET("/gallery", galleryHandler.ListItems)
			admin.POST("/gallery", galleryHandler.CreateItem)
			admin.GET("/gallery/:id", galleryHandler.GetItem)
			admin.PUT("/gallery/:id", galleryHandler.UpdateItem)
			admin.DELETE("/gallery/:id", galleryHandler.DeleteItem)
			admin.POST("/gallery/:id/media", galleryHandler.AttachMedia)
			admin.DELETE("/gallery/:id/media", galleryHandler.PurgeMedia)
			admin.PUT("/gallery/:id/media/order", galleryHandler.ReorderMedia)
			admin.DELETE("/gallery/:id/media/:mediaId", galleryHandler.RemoveMedia)
			admin.PUT("/gallery/:id/media/:mediaId/primary", galleryHandler.SetPrimaryMedia)
			admin.GET("/gallery/:id/qr.pdf", galleryHandler.ShareQRPDF)

			// Projects
			admin.GET("/projects", projectHandler.ListProjects)
			admin.POST("/projects", projectHandler.CreateProject)
			admin.GET("/projects/:id", projectHandler.GetProject)
			admin.PUT("/projects/:id", projectHandler.UpdateProject)
			admin.DELETE("/projects/:id", projectHandler.DeleteProject)
			admin.POST("/projects/:id/media", projectHandler.AttachMedia)
			admin.POST("/projects/:id/partner-logos", projectHandler.AttachPartnerLogos)
			admin.DELETE("/projects/:id/media", projectHandler.PurgeMedia)
			admin.PUT("/projects/:id/media/order", projectHandler.ReorderMedia)
			admin.DELETE("/projects/:id/media/:mediaId", projectHandler.RemoveMedia)
			admin.PUT("/projects/:id/media/:mediaId/primary", projectHandler.SetPrimaryMedia)
			admin.GET("/projects/:id/qr.pdf", projectHandler.ShareQRPDF)

			// Media file serving (local cache backed)
			admin.GET("/media/gallery/:mediaId/file", galleryHandler.ServeMedia)
			admin.GET("/media/projects/:mediaId/file", projectHandler.ServeMedia)

			// Pages
			admin.GET("/pages", contentHandler.ListPages)
			admin.POST("/pages", contentHandler.CreatePage)
			admin.GET("/pages/:id", contentHandler.GetPage)
			admin.PUT("/pages/:id", contentHandler.UpdatePage)
			admin.DELETE("/pages/:id", contentHandler.DeletePage)

			// Team
			admin.GET("/team", contentHandler.ListTeamMembers)
			admin.POST("/team", contentHandler.CreateTeamMember)
			admin.PUT("/team/:id", contentHandler.UpdateTeamMember)
			admin.POST("/team/:id/photo", contentHandler.SetTeamPhoto)
			admin.DELETE("/team/:id", contentHandler.DeleteTeamMember)

			// Partners
			admin.GET("/partners", contentHandler.ListPartners)
			admin.POST("/partners", contentHandler.CreatePartner)
			admin.PUT("/partners/:id", contentHandler.UpdatePartner)
			admin.POST("/partners/:id/logo", contentHandler.SetPartnerLogo)
			admin.DELETE("/partners/:id", contentHandler.DeletePartner)

			// Accounts and audit log
			admin.GET("/users", adminHandler.ListUsers)
			admin.PUT("/users/:id/active", adminHandler.SetUserActive)
			admin.GET("/audit-logs", adminHandler.ListAuditLogs)
		}
	}

	// Start server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  120 * time.Second, // 2 min for large video uploads
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
