package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/franciscosanchezn/fitbit-gateway/docs" // Import generated docs
	"github.com/franciscosanchezn/fitbit-gateway/internal/auth"
	"github.com/franciscosanchezn/fitbit-gateway/internal/config"
	"github.com/franciscosanchezn/fitbit-gateway/internal/controllers"
	"github.com/franciscosanchezn/fitbit-gateway/internal/database"
	"github.com/franciscosanchezn/fitbit-gateway/internal/middleware"
	"github.com/franciscosanchezn/fitbit-gateway/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

const serviceName = "fitbit-gateway"

var (
	db                   *gorm.DB
	configuration        *config.Config
	authController       *controllers.AuthController
	biometricsController *controllers.BiometricsController
)

// @title Fitbit Gateway API
// @version 1.0
// @description OAuth2 gateway to the Fitbit Web API with intraday caching and charts
// @host localhost:8000
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load environment variables
	loadDotenvFile()

	// Initialize logger
	setUpLogger()

	// Load configuration
	configuration = loadConfig()
	applyLogLevel(configuration.LogLevel)

	// Initialize database connection
	setupDatabase(configuration)

	// Wire the Fitbit client, token lifecycle and controllers
	setupControllers(configuration)

	router := setupRouter()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%v:%d", configuration.Host, configuration.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Infof("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Graceful shutdown failed: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// checkPanicErr checks if an error occurred and panics if it did
func checkPanicErr(err error) {
	if err != nil {
		panic(err)
	}
}

// loadDotenvFile loads environment variables from a .env file
// If the file is not found, it will log a warning and use system environment variables
func loadDotenvFile() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}
}

// setUpLogger initializes the logger with a JSON formatter and sets the log level based on the environment
func setUpLogger() {
	log.SetFormatter(&log.JSONFormatter{})
	environment := config.GetEnvWithDefault("APP_ENV", "development")
	switch environment {
	case "development":
		log.SetLevel(log.DebugLevel)
		gin.SetMode(gin.DebugMode)
	case "production":
		log.SetLevel(log.ErrorLevel)
		gin.SetMode(gin.ReleaseMode)
	default:
		log.SetLevel(log.InfoLevel)
		gin.SetMode(gin.ReleaseMode)
	}
}

// applyLogLevel lets LOG_LEVEL override the environment default in every package logger
func applyLogLevel(level string) {
	parsed, err := log.ParseLevel(level)
	if err != nil {
		log.Warnf("Ignoring invalid LOG_LEVEL %q", level)
		return
	}
	log.SetLevel(parsed)
	for _, set := range []func(log.Level){
		config.SetLogLevel,
		database.SetLogLevel,
		auth.SetLogLevel,
		services.SetLogLevel,
		controllers.SetLogLevel,
		middleware.SetLogLevel,
	} {
		set(parsed)
	}
}

// loadConfig loads the application configuration from environment variables
// It returns a Config struct or panics if there is an error
func loadConfig() *config.Config {
	conf, err := config.LoadConfig()
	checkPanicErr(err)
	return conf
}

// setupDatabase opens the configured database and migrates the schema
func setupDatabase(conf *config.Config) *gorm.DB {
	var err error
	db, err = database.InitDatabase(database.FromAppConfig(conf))
	checkPanicErr(err)
	return db
}

// setupControllers builds the service graph on top of the database
func setupControllers(conf *config.Config) {
	fitbit := services.NewFitbitClient(conf.FitbitAPIBase, conf.UpstreamTimeout)
	store := auth.NewGormTokenStore(db)
	manager := auth.NewTokenManager(auth.ManagerConfigFrom(conf), store, fitbit)

	biometricsService := services.NewBiometricsService(fitbit, manager)
	timeSeriesService := services.NewTimeSeriesService(db, fitbit, manager)

	authController = controllers.NewAuthController(manager)
	biometricsController = controllers.NewBiometricsController(manager, biometricsService, timeSeriesService)
}

// setupRouter initializes the Gin router and sets up the routes
// It returns the configured router
func setupRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())

	setupRoutes(router)

	return router
}

// setupRoutes defines the routes for the Gin router
func setupRoutes(router *gin.Engine) {
	router.GET("/health", healthCheckHandler)
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/swagger/index.html")
	})

	authController.RegisterRoutes(router.Group("/auth"))

	v1 := router.Group("/api/v1")
	{
		biometrics := v1.Group("/biometrics")
		if configuration.APIJWTSecret != "" {
			biometrics.Use(middleware.APIAuth([]byte(configuration.APIJWTSecret)))
		} else {
			log.Warn("API_JWT_SECRET not set, biometrics endpoints are unauthenticated")
		}
		biometricsController.RegisterRoutes(biometrics)
	}

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// healthCheckHandler handles the health check endpoint
// @Summary Health check
// @Description Check if the service is running
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   serviceName,
	})
}
