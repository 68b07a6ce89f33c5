package main

import (
	"os"
	"os/signal"
	"syscall"

	"hospital-directory/internal/config"
	"hospital-directory/internal/database"
	"hospital-directory/internal/handler"
	"hospital-directory/internal/middleware"
	"hospital-directory/internal/repository"
	"hospital-directory/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg := config.LoadConfig()

	// 2. Initialize logger
	logger := newLogger(cfg)
	defer logger.Sync()
	logger.Info("Configuration loaded successfully")

	// 3. Initialize the store: MySQL by default, in-memory when the
	// database is disabled (local development without an instance)
	var store service.HospitalStore
	if cfg.Database.Disabled {
		logger.Info("Database disabled, using in-memory store")
		store = repository.NewMemoryHospitalStore()
	} else {
		db := database.Connect(cfg, logger)
		store = repository.NewHospitalRepo(db)
	}

	// 4. Run CSV ingestion before the listener starts accepting traffic
	loader := service.NewCsvLoaderService(store, cfg.CSV.FilePath, logger)
	loader.Load()

	// 5. Initialize service and handler
	hospitalService := service.NewHospitalService(store, logger)
	hospitalHandler := handler.NewHospitalHandler(hospitalService)

	// 6. Setup Gin router
	gin.SetMode(cfg.Server.GinMode)
	r := gin.Default()
	r.Use(middleware.CORS())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "hospital-directory",
		})
	})

	// 7. Define routes
	hospitals := r.Group("/api/hospitals")
	{
		hospitals.POST("", hospitalHandler.CreateHospital)
		hospitals.GET("", hospitalHandler.GetAllHospitals)
		hospitals.GET("/:id", hospitalHandler.GetHospital)
		hospitals.PUT("/:id", hospitalHandler.UpdateHospital)
		hospitals.DELETE("/:id", hospitalHandler.DeleteHospital)

		hospitals.GET("/ville/:ville", hospitalHandler.GetHospitalsByVille)
		hospitals.GET("/urgence/ouvert", hospitalHandler.GetEmergencyHospitals)
		hospitals.GET("/lits/disponibles", hospitalHandler.GetHospitalsWithAvailableBeds)
		hospitals.GET("/specialite/:specialite", hospitalHandler.GetHospitalsBySpecialite)
		hospitals.GET("/surcharge/:niveau", hospitalHandler.GetHospitalsBySurchargeLevel)

		hospitals.PUT("/:id/lits", hospitalHandler.UpdateBedStatus)
		hospitals.PUT("/:id/ressources", hospitalHandler.UpdateResources)
		hospitals.GET("/proximite", hospitalHandler.FindNearbyHospitals)
		hospitals.GET("/recommandation", hospitalHandler.GetRecommendedHospitals)
		hospitals.GET("/recherche", hospitalHandler.SearchHospitals)
	}

	// 8. Start server with graceful shutdown
	go func() {
		logger.Info("Server starting", zap.String("port", cfg.Server.Port))
		if err := r.Run(":" + cfg.Server.Port); err != nil {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Server exited")
}

func newLogger(cfg *config.Config) *zap.Logger {
	var logger *zap.Logger
	var err error
	if cfg.Server.GinMode == "release" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	return logger
}
