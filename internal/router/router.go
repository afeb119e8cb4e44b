package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/brightpath/scheduler-api/internal/middleware"
	"github.com/brightpath/scheduler-api/internal/model"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Config struct {
	RateLimit rate.Limit
	RateBurst int
	Timeout   time.Duration
	CORS      middleware.CORSConfig
}

type Router struct {
	engine   *gin.Engine
	cfg      Config
	handlers []Handler
	metrics  *routerMetrics
}

type routerMetrics struct {
	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func New(cfg Config, handlers ...Handler) *Router {
	gin.SetMode(gin.ReleaseMode)
	registerValidations()

	return &Router{
		engine:   gin.New(),
		cfg:      cfg,
		handlers: handlers,
		metrics: &routerMetrics{
			requestTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			}, []string{"method", "path", "status"}),
			requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			}, []string{"method", "path"}),
		},
	}
}

// registerValidations adds the timeofday rule used on appointment_time
// fields: "HH:MM" within a single day.
func registerValidations() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterValidation("timeofday", func(fl validator.FieldLevel) bool {
		_, err := model.ParseTimeOfDay(fl.Field().String())
		return err == nil
	})
}

func (r *Router) Setup() {
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.Logger())
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.CORS(r.cfg.CORS))
	if r.cfg.Timeout > 0 {
		r.engine.Use(middleware.Timeout(r.cfg.Timeout))
	}
	if r.cfg.RateLimit > 0 {
		r.engine.Use(middleware.NewRateLimiter(r.cfg.RateLimit, r.cfg.RateBurst).Middleware())
	}
	r.engine.Use(r.observe())

	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.engine.Group("/api/v1")
	for _, h := range r.handlers {
		h.RegisterRoutes(api)
	}
}

func (r *Router) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, statusLabel(c.Writer.Status())).Inc()
		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

func statusLabel(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
