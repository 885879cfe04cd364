package routes

import (
	"io"

	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"smart_tracker/internal/controllers"
	"smart_tracker/internal/middleware"
	"smart_tracker/internal/store"
)

// Options carries everything the router needs.
type Options struct {
	Store          store.Store
	Hub            *controllers.ActivityHub // nil disables the realtime feed
	AccessLog      io.Writer                // nil disables access logging
	BodyLimitBytes int64
	RateLimit      string
	JWTSecret      string
}

func SetupRouter(opts Options) (*gin.Engine, error) {
	r := gin.New()

	r.Use(gin.CustomRecovery(controllers.RecoverJSON))
	r.Use(middleware.RequestID())
	if opts.AccessLog != nil {
		r.Use(ginlog.SetLogger(
			ginlog.WithWriter(opts.AccessLog),
			ginlog.WithUTC(true),
			ginlog.WithSkipPath([]string{"/api/health", "/metrics"}),
			ginlog.WithLogger(func(c *gin.Context, l zerolog.Logger) zerolog.Logger {
				return l.With().Str(middleware.RequestIDKey, c.GetString(middleware.RequestIDKey)).Logger()
			}),
		))
	}
	r.Use(middleware.CORSMiddleware())
	if opts.RateLimit != "" {
		limit, err := middleware.RateLimiter(opts.RateLimit)
		if err != nil {
			return nil, err
		}
		r.Use(limit)
	}

	r.NoRoute(controllers.RouteNotFound)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	var publisher controllers.Publisher
	if opts.Hub != nil {
		publisher = opts.Hub
		WebSocketRoutes(r, opts.Hub)
	}
	activities := controllers.NewActivityController(opts.Store, publisher)

	api := r.Group("/api")
	api.Use(middleware.BodyLimit(opts.BodyLimitBytes))
	{
		api.GET("/health", activities.Health)
		ActivityRoutes(api, activities, middleware.RequireAuth(opts.JWTSecret))
	}

	return r, nil
}
