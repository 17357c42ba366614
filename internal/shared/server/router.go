package server

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"recruit-backend/internal/documents"
	"recruit-backend/internal/shared/config"
	"recruit-backend/internal/shared/metrics"
	"recruit-backend/internal/shared/server/middleware"
	"recruit-backend/internal/shared/server/respond"
	"recruit-backend/internal/shared/storage/object"
)

// RouterDeps carries the wired dependencies the router needs.
type RouterDeps struct {
	Config          config.Config
	DB              *sql.DB
	Remote          object.ObjectStore
	DocumentHandler *documents.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", healthHandler(deps))

	authed := api.Group("")
	authed.Use(
		middleware.Auth(deps.Config.Env, deps.Config.JWTSecret),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				"PARSE":  {Rate: 0.2, Burst: 3},
				"UPLOAD": {Rate: 1, Burst: 10},
			},
			GroupFor: rateLimitGroup,
		}),
	)
	deps.DocumentHandler.RegisterRoutes(authed)

	return r
}

// rateLimitGroup buckets the expensive endpoints; everything else is unmetered.
func rateLimitGroup(c *gin.Context) string {
	switch {
	case c.Request.Method == http.MethodPost && c.FullPath() == "/api/v1/documents/:id/parse":
		return "PARSE"
	case c.Request.Method == http.MethodPost && c.FullPath() == "/api/v1/documents":
		return "UPLOAD"
	default:
		return ""
	}
}

// healthHandler reports process liveness and the state of each backend.
func healthHandler(deps RouterDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := gin.H{
			"ok":           true,
			"database":     "memory",
			"object_store": "local-only",
		}
		if deps.DB != nil {
			if err := deps.DB.PingContext(c.Request.Context()); err != nil {
				status["database"] = "down"
				status["ok"] = false
			} else {
				status["database"] = "up"
			}
		}
		if deps.Remote != nil {
			status["object_store"] = "s3"
		}
		respond.JSON(c, http.StatusOK, status)
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
