package api

import (
	"github.com/Conceptual-Machines/counterpoint-api/internal/api/handlers"
	apimiddleware "github.com/Conceptual-Machines/counterpoint-api/internal/api/middleware"
	"github.com/Conceptual-Machines/counterpoint-api/internal/config"
	"github.com/Conceptual-Machines/counterpoint-api/internal/metrics"
	"github.com/Conceptual-Machines/counterpoint-api/internal/models"
	"github.com/Conceptual-Machines/counterpoint-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Deps are the long-lived collaborators the router hands to its handlers
type Deps struct {
	Generation *services.GenerationService
	History    *services.HistoryService
	Recorder   *metrics.Recorder
	Prometheus *metrics.Prometheus
}

// RegisterValidators installs the pitch/duration/mode/finalis binding tags on gin's validator
func RegisterValidators() error {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		return models.RegisterValidators(v)
	}
	return nil
}

func SetupRouter(cfg *config.Config, deps Deps, version string) *gin.Engine {
	router := gin.New()

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(apimiddleware.SentryMiddleware())

	// Request tracking and structured logging
	router.Use(apimiddleware.RequestTracking(deps.Recorder))

	// CORS middleware
	router.Use(apimiddleware.CORS(cfg.CORSAllowedOrigins))

	// Health check
	healthHandler := handlers.NewHealthHandler(deps.History)
	router.GET("/health", healthHandler.HealthCheck)

	// Metrics endpoints
	metricsHandler := handlers.NewMetricsHandler(version, cfg.MaxSearchNodes, deps.History.Enabled())
	router.GET("/api/metrics", metricsHandler.GetMetrics)
	if deps.Prometheus != nil {
		router.GET("/metrics", gin.WrapH(deps.Prometheus.Handler()))
	}

	v1 := router.Group("/api/v1")
	if cfg.IsGatewayMode() {
		v1.Use(apimiddleware.GatewayAuth())
	} else {
		v1.Use(apimiddleware.NoAuth())
	}
	{
		counterpointHandler := handlers.NewCounterpointHandler(deps.Generation)
		v1.GET("/modes", counterpointHandler.ListModes)
		v1.POST("/cantus-firmus", counterpointHandler.GenerateCantus)
		v1.GET("/species/:species/rules", counterpointHandler.ListRules)
		v1.POST("/species/:species/generate", counterpointHandler.Generate)
		v1.POST("/species/:species/analyze", counterpointHandler.Analyze)

		midiHandler := handlers.NewMIDIHandler(cfg.DefaultBPM)
		v1.POST("/midi/export", midiHandler.Export)
		v1.POST("/midi/import", midiHandler.Import)

		historyHandler := handlers.NewHistoryHandler(deps.History)
		v1.GET("/history", historyHandler.List)
		v1.GET("/history/stats", historyHandler.Stats)
	}

	return router
}
