package server

import (
	"github.com/gin-gonic/gin"

	"resume-assistant/internal/assistant"
	"resume-assistant/internal/documents"
	"resume-assistant/internal/services/health"
	"resume-assistant/internal/shared/config"
	"resume-assistant/internal/shared/metrics"
	"resume-assistant/internal/shared/server/middleware"
	"resume-assistant/internal/web"
)

// RouterDeps carries the handlers the router mounts.
type RouterDeps struct {
	Config           config.Config
	Tokens           middleware.TokenIssuer
	HealthHandler    *health.Handler
	DocumentHandler  *documents.Handler
	AssistantHandler *assistant.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) (*gin.Engine, error) {
	if !deps.Config.IsDevLike() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())
	if err := web.Register(r); err != nil {
		return nil, err
	}

	api := r.Group("/api/v1")
	if deps.HealthHandler != nil {
		deps.HealthHandler.RegisterRoutes(api)
	}

	sessions := api.Group("")
	sessions.Use(middleware.Session(deps.Tokens, middleware.SessionOptions{
		MaxAgeSeconds: int(deps.Config.SessionTTL.Seconds()),
		Secure:        !deps.Config.IsDevLike(),
	}))
	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(sessions)
	}
	if deps.AssistantHandler != nil {
		deps.AssistantHandler.RegisterRoutes(sessions)
	}

	return r, nil
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
