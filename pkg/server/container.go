package server

import (
	"context"
	"io/fs"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	_ "function-gateway/docs"
	"function-gateway/internal/adapters/storage"
	"function-gateway/internal/config"
	"function-gateway/internal/dispatch"
	"function-gateway/internal/faas"
	"function-gateway/internal/handlers"
	"function-gateway/internal/middleware"
	"function-gateway/internal/schema"
	"function-gateway/internal/telemetry"
)

// flushTimeout bounds how long Close waits for queued telemetry events
const flushTimeout = 2 * time.Second

// Function is the user-supplied part served by the gateway
type Function struct {
	// Handle is the main handler
	Handle faas.Handler
	// Register adds named handlers; optional
	Register func(*dispatch.Registry) error
	// Routes are extra fixed-path routes; optional
	Routes []faas.Route
	// Schemas holds "<name>.json" schema documents for the embedded source
	Schemas fs.FS
}

// Option customizes container construction
type Option func(*Container)

// WithReporter replaces the telemetry reporter built from config
func WithReporter(reporter telemetry.Reporter) Option {
	return func(c *Container) {
		c.Reporter = reporter
	}
}

// Container holds all application dependencies. Everything in it is built
// once at startup and only read while serving requests.
type Container struct {
	Config     *config.Config
	Schemas    *schema.Registry
	Handlers   *dispatch.Registry
	Dispatcher *dispatch.Dispatcher
	Reporter   telemetry.Reporter
	Router     *gin.Engine

	source storage.SchemaSource
}

// NewContainer creates a new dependency injection container
func NewContainer(ctx context.Context, cfg *config.Config, fn Function, opts ...Option) (*Container, error) {
	if fn.Handle == nil {
		return nil, errors.New("function main handler is required")
	}

	c := &Container{Config: cfg}
	for _, opt := range opts {
		opt(c)
	}

	if c.Reporter == nil {
		reporter, err := newReporter(cfg)
		if err != nil {
			return nil, errors.Wrap(err, "failed to initialize telemetry")
		}
		c.Reporter = reporter
	}

	if err := c.loadSchemas(ctx, fn.Schemas); err != nil {
		return nil, err
	}

	c.Handlers = dispatch.NewRegistry(fn.Handle)
	if fn.Register != nil {
		if err := fn.Register(c.Handlers); err != nil {
			return nil, errors.Wrap(err, "failed to register function handlers")
		}
	}
	c.Dispatcher = dispatch.New(c.Handlers, c.Schemas)

	router, err := c.newRouter(fn.Routes)
	if err != nil {
		return nil, err
	}
	c.Router = router

	logrus.WithFields(logrus.Fields{
		"handlers":  c.Handlers.Names(),
		"schemas":   c.Schemas.Names(),
		"catch_all": cfg.Function.CatchAll,
		"telemetry": cfg.TelemetryActive(),
	}).Info("Function gateway initialized")

	return c, nil
}

func newReporter(cfg *config.Config) (telemetry.Reporter, error) {
	if !cfg.TelemetryActive() {
		return telemetry.NopReporter{}, nil
	}

	return telemetry.New(telemetry.Options{
		DSN:         cfg.Telemetry.DSN,
		Environment: cfg.Environment,
		ServerName:  cfg.Hostname,
		SampleRate:  cfg.Telemetry.SampleRate,
		Debug:       cfg.IsDevelopment(),
		Tags:        map[string]string{"function": cfg.FunctionName},
	})
}

func (c *Container) loadSchemas(ctx context.Context, embedded fs.FS) error {
	sourceType := c.Config.Schema.Source
	if sourceType == string(storage.SourceTypeEmbedded) && embedded == nil {
		registry, err := schema.NewRegistry(c.Config.Schema.Draft)
		if err != nil {
			return errors.Wrap(err, "failed to create schema registry")
		}
		c.Schemas = registry
		return nil
	}

	sourceConfig := &storage.SourceConfig{Type: sourceType}
	if sourceType == string(storage.SourceTypeLocal) {
		sourceConfig.BasePath = c.Config.Schema.Dir
	}

	source, err := storage.NewFactory(storage.DefaultRetryConfig(), embedded).Create(sourceConfig)
	if err != nil {
		return errors.Wrap(err, "failed to open schema source")
	}
	c.source = source

	registry, err := schema.Load(ctx, source, c.Config.Schema.Draft)
	if err != nil {
		return errors.Wrap(err, "failed to load schemas")
	}
	c.Schemas = registry
	return nil
}

func (c *Container) newRouter(routes []faas.Route) (*gin.Engine, error) {
	cfg := c.Config

	bodyMode, err := faas.ParseBodyMode(cfg.Function.BodyParseMode)
	if err != nil {
		return nil, errors.Wrap(err, "invalid body parse mode")
	}

	var authService *middleware.AuthService
	if cfg.JWT.Secret != "" {
		authService = middleware.NewAuthService(&middleware.AuthConfig{
			JWTSecret:     cfg.JWT.Secret,
			TokenDuration: time.Duration(cfg.JWT.ExpiryHours) * time.Hour,
			Issuer:        cfg.JWT.Issuer,
		})
	}

	contexts := faas.ContextFactory{
		Hostname:     cfg.Hostname,
		Environment:  cfg.Environment,
		FunctionName: cfg.FunctionName,
	}

	router := gin.New()
	// Every sub-path belongs to the function, trailing slash included.
	router.RedirectTrailingSlash = false
	handlers.SetupMiddleware(router, &handlers.MiddlewareConfig{
		Reporter:       c.Reporter,
		Telemetry:      cfg.TelemetryActive(),
		CORS:           cfg.IsDevelopment(),
		MaxBodyBytes:   cfg.Limits.MaxBodyBytes,
		RateLimitRPS:   cfg.Limits.RateLimitRPS,
		RateLimitBurst: cfg.Limits.RateLimitBurst,
	})
	handlers.SetupRoutes(router, &handlers.RouterConfig{
		Function:    handlers.NewFunctionHandler(c.Dispatcher, contexts, bodyMode),
		Health:      handlers.NewHealthHandler(contexts.New("").Hostname, cfg.FunctionName, c.Handlers.Names(), c.Schemas.Names(), cfg.TelemetryActive()),
		Routes:      routes,
		CatchAll:    cfg.Function.CatchAll,
		AuthService: authService,
		Swagger:     !strings.EqualFold(cfg.Environment, "production"),
	})

	return router, nil
}

// Close cleans up all resources
func (c *Container) Close() error {
	if c.Reporter != nil && !c.Reporter.Flush(flushTimeout) {
		logrus.Warn("Timed out flushing telemetry events")
	}

	if c.source != nil {
		if err := c.source.Close(); err != nil {
			return errors.Wrap(err, "failed to close schema source")
		}
	}

	return nil
}
