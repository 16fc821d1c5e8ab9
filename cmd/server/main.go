package main

import (
	"context"
	"log"

	"licensetracker/auth"
	"licensetracker/config"
	"licensetracker/handlers"
	"licensetracker/repository"
	"licensetracker/service"
	"licensetracker/storage"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := initPostgres(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to initialize Postgres", zap.Error(err))
	}
	defer db.Close()
	logger.Info("Postgres connection established")

	blobs, err := storage.New(cfg.Storage)
	if err != nil {
		logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	logger.Info("Storage initialized", zap.String("type", string(cfg.Storage.Type)))

	// Repositories
	companyRepo := repository.NewCompanyRepository(db)
	licenseRepo := repository.NewLicenseRepository(db)
	fileRepo := repository.NewLicenseFileRepository(db)
	docRepo := repository.NewRenewalDocumentRepository(db)
	urlRepo := repository.NewRenewalURLRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Services
	attachmentService := service.NewAttachmentService(licenseRepo, fileRepo, blobs,
		service.WithAttachmentCap(cfg.MaxFilesPerLicense),
		service.WithAttachmentLogger(logger),
	)
	licenseService := service.NewLicenseService(licenseRepo, fileRepo, companyRepo, attachmentService,
		service.WithLicenseLogger(logger),
	)
	companyService := service.NewCompanyService(companyRepo, licenseRepo, attachmentService,
		service.WithCompanyLogger(logger),
	)

	// Handlers
	tokens := auth.NewTokens(cfg.JWTSecret)
	authHandler := handlers.NewAuthHandler(userRepo, tokens)
	companyHandler := handlers.NewCompanyHandler(companyService)
	licenseHandler := handlers.NewLicenseHandler(licenseService, attachmentService, cfg.MaxUploadSize)
	docHandler := handlers.NewRenewalDocumentHandler(docRepo, blobs, logger, cfg.MaxUploadSize)
	urlHandler := handlers.NewRenewalURLHandler(urlRepo)

	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	authed := auth.Middleware(tokens, userRepo)
	admin := auth.AdminOnly()

	api := r.Group("/api")
	{
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/register", authed, admin, authHandler.Register)
		api.GET("/auth/me", authed, authHandler.Me)

		companies := api.Group("/companies", authed)
		{
			companies.GET("", companyHandler.ListCompanies)
			companies.POST("", admin, companyHandler.CreateCompany)
			companies.PUT("/:id", admin, companyHandler.UpdateCompany)
			companies.DELETE("/:id", admin, companyHandler.DeleteCompany)
		}

		licenses := api.Group("/licenses", authed)
		{
			licenses.GET("", licenseHandler.ListLicenses)
			licenses.GET("/stats", licenseHandler.GetLicenseStats)
			licenses.POST("", admin, licenseHandler.CreateLicense)
			licenses.PUT("/:id", admin, licenseHandler.UpdateLicense)
			licenses.DELETE("/:id", admin, licenseHandler.DeleteLicense)

			licenses.POST("/:id/files", admin, licenseHandler.UploadFiles)
			licenses.DELETE("/:id/files/:fileId", admin, licenseHandler.DeleteFile)
			licenses.GET("/:id/files/:fileId/download", licenseHandler.DownloadFile)
		}

		docs := api.Group("/renewal-documents", authed)
		{
			docs.GET("", docHandler.ListDocuments)
			docs.POST("", admin, docHandler.CreateDocument)
			docs.DELETE("/:id", admin, docHandler.DeleteDocument)
		}

		urls := api.Group("/renewal-urls", authed)
		{
			urls.GET("", urlHandler.ListURLs)
			urls.POST("", admin, urlHandler.CreateURL)
			urls.PUT("/:id", admin, urlHandler.UpdateURL)
			urls.DELETE("/:id", admin, urlHandler.DeleteURL)
		}
	}

	logger.Info("Server starting", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

func initPostgres(connString string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(context.Background(), connString)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(context.Background()); err != nil {
		return nil, err
	}
	return pool, nil
}
