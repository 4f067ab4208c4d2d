package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/nextera/workforce-api/internal/auth"
	"github.com/nextera/workforce-api/internal/config"
	"github.com/nextera/workforce-api/internal/http/handlers"
	"github.com/nextera/workforce-api/internal/http/middlewares"
	"github.com/nextera/workforce-api/internal/observability"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const serviceName = "workforce-api"

const maxBodyBytes = 1 << 20 // 1 MiB is plenty for these payloads

// NewRouter wires the HTTP surface. The user store and the JWT manager are
// injected so tests can run the full router against the in-memory repo.
func NewRouter(log *slog.Logger, store handlers.UserStore, jwtManager *auth.Manager, ping func() error, prom *observability.Prom, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))

	if len(cfg.CORSOrigins) > 0 {
		r.Use(middlewares.CORSMiddleware(cfg.CORSOrigins))
	}

	if prom != nil {
		r.Use(prom.GinHandleMiddleware())
	}

	if cfg.OTELEndpoint != "" {
		r.Use(otelgin.Middleware(serviceName))
	}

	// health
	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if prom != nil {
		r.GET("/metrics", gin.WrapH(prom.Handler()))
	}

	// wire up handlers
	authHandler := handlers.NewAuthHandler(store, jwtManager)
	profileHandler := handlers.NewProfileHandler(store)

	r.GET("/", handlers.Root)

	authRoutes := r.Group("/auth")
	authRoutes.POST("/register", middlewares.RequireJSON(), authHandler.Register)
	// login is form-encoded, so no JSON guard here
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.GET("/profile", profileHandler.GetProfile)
	authRoutes.PUT("/profile", middlewares.RequireJSON(), profileHandler.UpdateProfile)
	authRoutes.DELETE("/profile", profileHandler.DeleteProfile)

	return r
}
