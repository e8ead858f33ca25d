package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"function-gateway/internal/faas"
	"function-gateway/internal/middleware"
	"function-gateway/internal/telemetry"
)

// HealthPath is served by the gateway itself, never by the function
const HealthPath = "/_/health"

// RouterConfig holds configuration for setting up routes
type RouterConfig struct {
	Function *FunctionHandler
	Health   *HealthHandler
	// Routes are extra fixed-path routes supplied by the function
	Routes []faas.Route
	// CatchAll sends every unmatched path to the function; otherwise only
	// "/" reaches it.
	CatchAll bool
	// AuthService guards the function when set
	AuthService *middleware.AuthService
	Swagger     bool
}

// MiddlewareConfig holds configuration for the global middleware chain
type MiddlewareConfig struct {
	Reporter       telemetry.Reporter
	Telemetry      bool
	CORS           bool
	MaxBodyBytes   int64
	RateLimitRPS   float64
	RateLimitBurst int
}

var functionMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPut,
	http.MethodPost,
	http.MethodPatch,
	http.MethodDelete,
}

// SetupRoutes configures the gateway and function routes
func SetupRoutes(router *gin.Engine, config *RouterConfig) {
	router.GET(HealthPath, config.Health.Health)

	if config.Swagger {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	var guard []gin.HandlerFunc
	if config.AuthService != nil {
		guard = append(guard, middleware.Authentication(config.AuthService))
	}

	for _, route := range config.Routes {
		router.Handle(route.Method, route.Path, chain(guard, config.Function.Route(route.Handler))...)
	}

	invoke := chain(guard, config.Function.Invoke)
	if config.CatchAll {
		// A root wildcard cannot coexist with static routes in gin's tree, so
		// the catch-all lives in NoRoute.
		router.NoRoute(invoke...)
		return
	}

	for _, method := range functionMethods {
		router.Handle(method, "/", invoke...)
	}
}

func chain(guard []gin.HandlerFunc, handler gin.HandlerFunc) []gin.HandlerFunc {
	handlers := make([]gin.HandlerFunc, 0, len(guard)+1)
	handlers = append(handlers, guard...)
	return append(handlers, handler)
}

// SetupMiddleware configures global middleware. Order matters: errors are
// normalized outside everything that can fail a request, and panics are
// recovered inside the telemetry hub so each one is reported once.
func SetupMiddleware(router *gin.Engine, config *MiddlewareConfig) {
	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogger())
	router.Use(middleware.ErrorNormalizer(config.Reporter))

	if config.Telemetry {
		router.Use(telemetry.Middleware())
	}
	router.Use(middleware.Recovery())

	if config.CORS {
		router.Use(middleware.CORS())
	}
	router.Use(middleware.SecurityHeaders())

	if config.RateLimitRPS > 0 {
		router.Use(middleware.RateLimiter(config.RateLimitRPS, config.RateLimitBurst))
	}
	router.Use(middleware.RequestSizeLimit(config.MaxBodyBytes))
}
