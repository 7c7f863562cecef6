package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/probook/probook-api/internal/middleware"
)

// Handler is anything that can mount its routes onto a group.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Config struct {
	RateLimitRPS   float64
	RateLimitBurst int
	CORS           middleware.CORSConfig
}

type Router struct {
	engine        *gin.Engine
	auth          *middleware.AuthMiddleware
	authH         Handler
	healthH       Handler
	clientH       Handler
	appointmentH  Handler
	invoiceH      Handler
	notificationH Handler
}

func NewRouter(
	cfg Config,
	logger zerolog.Logger,
	auth *middleware.AuthMiddleware,
	authH Handler,
	healthH Handler,
	clientH Handler,
	appointmentH Handler,
	invoiceH Handler,
	notificationH Handler,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.ErrorHandler(logger),
		middleware.CORS(cfg.CORS),
	)

	if cfg.RateLimitRPS > 0 {
		engine.Use(middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).RateLimit())
	}

	return &Router{
		engine:        engine,
		auth:          auth,
		authH:         authH,
		healthH:       healthH,
		clientH:       clientH,
		appointmentH:  appointmentH,
		invoiceH:      invoiceH,
		notificationH: notificationH,
	}
}

func (r *Router) Setup() {
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.engine.Group("/api/v1")

	r.healthH.RegisterRoutes(api)
	r.authH.RegisterRoutes(api)

	protected := api.Group("")
	protected.Use(r.auth.Authenticate())

	r.clientH.RegisterRoutes(protected)
	r.appointmentH.RegisterRoutes(protected)
	r.invoiceH.RegisterRoutes(protected)
	r.notificationH.RegisterRoutes(protected)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
